package server

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strconv"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"pricestream/internal/service"
)

// The PNG export uses the dashboard palette so saved charts look like the
// live page.
var (
	chartBackground = color.NRGBA{R: 0x0c, G: 0x0c, B: 0x0f, A: 0xff}
	chartGrid       = color.NRGBA{R: 0x1c, G: 0x1f, B: 0x25, A: 0xff}
	chartLine       = color.NRGBA{R: 0x93, G: 0xc5, B: 0xfd, A: 0xff}
	chartText       = color.NRGBA{R: 0xea, G: 0xea, B: 0xea, A: 0xff}
	chartMuted      = color.NRGBA{R: 0x8a, G: 0x8f, B: 0x98, A: 0xff}
)

// RenderPNG draws the snapshot as a line chart and encodes it to w.
func RenderPNG(w io.Writer, snap service.Snapshot, width, height int) error {
	if width <= 0 {
		width = 1000
	}
	if height <= 0 {
		height = 500
	}

	// The bottom and left margins fit the 45°-tilted timestamp labels,
	// whose rotated box is ~110px square for a full datetime.
	const (
		marginLeft   = 120
		marginRight  = 24
		marginTop    = 40
		marginBottom = 132
	)

	plotW := width - marginLeft - marginRight
	plotH := height - marginTop - marginBottom
	if plotW < 20 || plotH < 20 {
		return fmt.Errorf("chart too small: %dx%d", width, height)
	}

	img := imaging.New(width, height, chartBackground)

	pts := snap.Points
	if len(pts) == 0 {
		// Snapshots always carry at least the placeholder, but stay safe.
		drawText(img, marginLeft, marginTop, "no data", chartMuted)
		return png.Encode(w, img)
	}

	t0 := pts[0].Time
	span := pts[len(pts)-1].Time - t0
	if span < 1 {
		span = 1
	}

	lo, hi := pts[0].Price, pts[0].Price
	for _, p := range pts {
		if p.Price < lo {
			lo = p.Price
		}
		if p.Price > hi {
			hi = p.Price
		}
	}
	if lo == hi {
		lo--
		hi++
	}
	pad := (hi - lo) * 0.05
	lo -= pad
	hi += pad

	xAt := func(t int64) int {
		return marginLeft + int(float64(t-t0)/float64(span)*float64(plotW))
	}
	yAt := func(v float64) int {
		return marginTop + int((hi-v)/(hi-lo)*float64(plotH))
	}

	// Horizontal grid with price labels.
	for i := 0; i <= 4; i++ {
		v := hi - (hi-lo)*float64(i)/4
		gy := yAt(v)
		drawLine(img, marginLeft, gy, marginLeft+plotW, gy, chartGrid)
		label := strconv.FormatFloat(v, 'f', 2, 64)
		drawText(img, marginLeft-8-textWidth(label), gy+4, label, chartMuted)
	}

	// Time ticks, tilted the same way as the live chart.
	nticks := 6
	if len(pts) < nticks {
		nticks = len(pts)
	}
	for i := 0; i < nticks; i++ {
		idx := 0
		if nticks > 1 {
			idx = i * (len(pts) - 1) / (nticks - 1)
		}
		p := pts[idx]
		px := xAt(p.Time)
		drawLine(img, px, marginTop+plotH, px, marginTop+plotH+5, chartGrid)

		rot := tiltedLabel(p.DisplayTime, chartMuted)
		img = imaging.Overlay(img, rot, image.Pt(px-rot.Bounds().Dx(), marginTop+plotH+8), 1.0)
	}

	// Price series.
	for i := 1; i < len(pts); i++ {
		drawLine(img,
			xAt(pts[i-1].Time), yAt(pts[i-1].Price),
			xAt(pts[i].Time), yAt(pts[i].Price),
			chartLine)
	}
	if len(pts) == 1 {
		px, py := xAt(pts[0].Time), yAt(pts[0].Price)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				img.SetNRGBA(px+dx, py+dy, chartLine)
			}
		}
	}

	drawText(img, marginLeft, 24, snap.Title, chartText)
	drawText(img, marginLeft+(plotW-textWidth("Time"))/2, height-12, "Time", chartMuted)

	yLabel := verticalLabel("IEX Real-Time Price", chartMuted)
	img = imaging.Overlay(img, yLabel, image.Pt(8, marginTop+(plotH-yLabel.Bounds().Dy())/2), 1.0)

	return png.Encode(w, img)
}

func drawText(dst *image.NRGBA, x, y int, s string, c color.NRGBA) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func textWidth(s string) int {
	d := &font.Drawer{Face: basicfont.Face7x13}
	return d.MeasureString(s).Ceil()
}

// tiltedLabel renders s on a transparent strip and rotates it 45° so long
// timestamps stay readable under the axis.
func tiltedLabel(s string, c color.NRGBA) *image.NRGBA {
	strip := imaging.New(textWidth(s)+4, 16, color.NRGBA{})
	drawText(strip, 2, 12, s, c)
	return imaging.Rotate(strip, 45, color.NRGBA{})
}

func verticalLabel(s string, c color.NRGBA) *image.NRGBA {
	strip := imaging.New(textWidth(s)+4, 16, color.NRGBA{})
	drawText(strip, 2, 12, s, c)
	return imaging.Rotate90(strip)
}

// drawLine rasterizes a straight segment with Bresenham stepping.
func drawLine(img *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		img.SetNRGBA(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
