package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"pricestream/internal/domain"
	"pricestream/internal/infra"
)

const (
	// displayTimeLayout matches the axis and tooltip labels on the chart.
	displayTimeLayout = "2006-01-02 15:04:05"

	// subscriberBuffer sizes each client channel. Points arrive once per
	// second, so a slow browser has a full minute before frames drop.
	subscriberBuffer = 64
)

// Update frame kinds pushed to subscribers.
const (
	UpdateSnapshot = "snapshot"
	UpdatePoint    = "point"
)

// Point is one chart sample on the wire. Time is epoch milliseconds;
// DisplayTime is the same instant as a wall-clock label in the exchange's
// timezone so every viewer sees the market's own clock.
type Point struct {
	Time        int64   `json:"time"`
	DisplayTime string  `json:"display_time"`
	Price       float64 `json:"price"`
}

// Snapshot is the full chart state sent when a client attaches or the
// watched symbol changes. Capacity lets clients bound their own buffers
// to the server's window.
type Snapshot struct {
	Symbol   string  `json:"symbol"`
	Title    string  `json:"title"`
	Capacity int     `json:"capacity"`
	Points   []Point `json:"points"`
}

// Update is one frame pushed to dashboard subscribers.
type Update struct {
	Type     string    `json:"type"`
	Snapshot *Snapshot `json:"snapshot,omitempty"`
	Point    *Point    `json:"point,omitempty"`
}

// FeedConfig carries the tunables for a Feed.
type FeedConfig struct {
	WindowSize   int
	PollInterval time.Duration
	Location     *time.Location
}

// Feed polls the quote vendor once per interval and maintains the bounded
// chart window. While no symbol is watched it plots a zero-price
// placeholder every tick, so the chart always moves.
type Feed struct {
	mu          sync.RWMutex
	symbol      string
	window      *domain.Series
	subscribers map[chan Update]struct{}

	source   domain.QuoteSource
	store    domain.SymbolRepository
	interval time.Duration
	loc      *time.Location

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFeed creates a feed reading quotes from source. store may be nil when
// nothing should be persisted.
func NewFeed(source domain.QuoteSource, store domain.SymbolRepository, cfg FeedConfig) *Feed {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 3600
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	return &Feed{
		window:      domain.NewSeries(cfg.WindowSize),
		subscribers: make(map[chan Update]struct{}),
		source:      source,
		store:       store,
		interval:    cfg.PollInterval,
		loc:         cfg.Location,
	}
}

// RestoreSymbol seeds the watched symbol at startup without touching
// persistence or subscriber streams.
func (f *Feed) RestoreSymbol(raw string) {
	f.mu.Lock()
	f.symbol = Normalize(raw)
	f.mu.Unlock()
}

// Start begins the polling loop
func (f *Feed) Start(ctx context.Context) error {
	ctx, f.cancel = context.WithCancel(ctx)

	// First sample without waiting a full interval.
	f.poll(ctx)

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Feed polling panic recovered", slog.Any("panic", r))
			}
		}()

		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("Feed polling stopped")
				return
			case <-ticker.C:
				f.poll(ctx)
			}
		}
	}()

	return nil
}

// Stop stops the polling loop and waits for it to exit.
func (f *Feed) Stop() {
	if f.cancel != nil {
		f.cancel()
		f.wg.Wait()
	}
}

// poll performs one tick. A failed fetch is logged and dropped; the next
// tick starts fresh, so one bad response never stalls the chart.
func (f *Feed) poll(ctx context.Context) {
	f.mu.RLock()
	symbol := f.symbol
	f.mu.RUnlock()

	if symbol == "" {
		f.ingest(symbol, domain.Placeholder(time.Now().UTC()))
		return
	}

	start := time.Now()
	quote, err := f.source.LastTrade(ctx, symbol)
	infra.GlobalMetrics.RecordPoll(time.Since(start).Nanoseconds())

	if err != nil {
		if errors.Is(err, domain.ErrNoQuote) {
			// Unknown tickers plot nothing; the chart just sits still.
			infra.GlobalMetrics.RecordSkip()
			slog.Debug("No quote data", slog.String("symbol", symbol))
			return
		}
		if ctx.Err() != nil {
			return
		}
		infra.GlobalMetrics.RecordError()
		slog.Warn("Quote fetch failed", slog.String("symbol", symbol), slog.Any("error", err))
		return
	}

	sample := quote.Sample()
	if !f.ingest(symbol, sample) {
		infra.GlobalMetrics.RecordSkip()
		slog.Debug("Quote skipped", slog.String("symbol", symbol), slog.Time("trade_time", sample.Time))
		return
	}

	infra.GlobalMetrics.RecordIngest()
}

// ingest appends sample to the window and pushes the point frame to
// subscribers in the same critical section, so a window reset can never
// land between a sample and its frame. The sample must still belong
// here: the watched symbol must be unchanged since the fetch began and
// the trade must not predate the newest plotted sample. Equal trade
// times pass; between trades the vendor repeats the last one and the
// chart plots it again, keeping the window a fixed span of polls.
func (f *Feed) ingest(symbol string, sample domain.Sample) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.symbol != symbol {
		return false
	}
	if last, ok := f.window.Last(); ok && sample.Time.Before(last.Time) {
		return false
	}
	f.window.Append(sample)

	p := f.point(sample)
	f.emit(Update{Type: UpdatePoint, Point: &p})
	return true
}

// SetSymbol switches the watched ticker and clears the window, even when
// the symbol is unchanged: every update press starts a fresh chart. An
// empty symbol means watch nothing and plot placeholders. The normalized
// symbol is returned.
func (f *Feed) SetSymbol(raw string) string {
	symbol := Normalize(raw)

	f.mu.Lock()
	f.symbol = symbol
	f.window.Reset()
	snap := f.buildSnapshot()
	f.emit(Update{Type: UpdateSnapshot, Snapshot: &snap})
	f.mu.Unlock()

	infra.GlobalMetrics.RecordSymbolChange()
	slog.Info("Watching symbol", slog.String("symbol", symbol))

	if f.store != nil {
		if err := f.store.SaveSetting(domain.SettingLastSymbol, symbol); err != nil {
			slog.Warn("Persist symbol failed", slog.Any("error", err))
		}
		if symbol != "" {
			if err := f.store.TouchSymbol(symbol); err != nil {
				slog.Warn("Record watched symbol failed", slog.Any("error", err))
			}
		}
	}

	return symbol
}

// Symbol returns the currently watched ticker, empty when none.
func (f *Feed) Symbol() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.symbol
}

// Fill reports how much of the window is occupied.
func (f *Feed) Fill() (length, capacity int) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.window.Len(), f.window.Capacity()
}

// Snapshot returns the full current chart state.
func (f *Feed) Snapshot() Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.buildSnapshot()
}

// Subscribe registers a dashboard client. The returned channel carries a
// full snapshot first, then one frame per plotted point. The cancel func
// must be called when the client goes away; the channel is closed then.
func (f *Feed) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, subscriberBuffer)

	f.mu.Lock()
	snap := f.buildSnapshot()
	ch <- Update{Type: UpdateSnapshot, Snapshot: &snap}
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// emit fans one frame out to every subscriber. Callers hold f.mu, so
// frames leave in exactly the order the window changes.
func (f *Feed) emit(u Update) {
	for ch := range f.subscribers {
		select {
		case ch <- u:
		default:
			// Slow consumer: drop the frame rather than stall the feed.
		}
	}
}

// buildSnapshot assembles the wire snapshot. Callers hold f.mu. An empty
// idle window yields a single zero placeholder so the chart has a point
// to draw; a watched symbol's chart stays empty until its first trade
// arrives.
func (f *Feed) buildSnapshot() Snapshot {
	samples := f.window.Samples()
	points := make([]Point, 0, len(samples))
	for _, s := range samples {
		points = append(points, f.point(s))
	}
	if len(points) == 0 && f.symbol == "" {
		points = append(points, f.point(domain.Placeholder(time.Now().UTC())))
	}

	return Snapshot{
		Symbol:   f.symbol,
		Title:    titleFor(f.symbol),
		Capacity: f.window.Capacity(),
		Points:   points,
	}
}

func (f *Feed) point(s domain.Sample) Point {
	return Point{
		Time:        s.Time.UnixMilli(),
		DisplayTime: s.Time.In(f.loc).Format(displayTimeLayout),
		Price:       s.Price,
	}
}

// titleFor mirrors the chart heading for a symbol.
func titleFor(symbol string) string {
	return "IEX Real-Time Price: " + symbol
}

// Normalize canonicalizes user ticker input: surrounding whitespace is
// stripped and the symbol uppercased.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
