package domain

import "time"

// Sample is one plotted point: when it was observed and the price.
type Sample struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// Placeholder returns the sample rendered before any real trade exists:
// a zero price stamped with the current time.
func Placeholder(now time.Time) Sample {
	return Sample{Time: now, Price: 0}
}

// Series is a fixed-capacity chronological window of samples. Once the
// window is full every append evicts the oldest sample, so memory stays
// bounded no matter how long the process runs. Series is not safe for
// concurrent use; the feed loop serializes all access.
type Series struct {
	buf  []Sample
	head int // index of the oldest sample
	size int
}

// NewSeries returns an empty series holding at most capacity samples.
// Capacities below one are clamped to one.
func NewSeries(capacity int) *Series {
	if capacity < 1 {
		capacity = 1
	}
	return &Series{buf: make([]Sample, capacity)}
}

// Append adds s as the newest sample. When the window is already full the
// oldest sample is evicted and returned with dropped set.
func (w *Series) Append(s Sample) (evicted Sample, dropped bool) {
	if w.size == len(w.buf) {
		evicted = w.buf[w.head]
		w.buf[w.head] = s
		w.head = (w.head + 1) % len(w.buf)
		return evicted, true
	}
	w.buf[(w.head+w.size)%len(w.buf)] = s
	w.size++
	return Sample{}, false
}

// Len returns the number of samples currently held.
func (w *Series) Len() int { return w.size }

// Capacity returns the fixed maximum number of samples.
func (w *Series) Capacity() int { return len(w.buf) }

// Last returns the newest sample and true, or false when empty.
func (w *Series) Last() (Sample, bool) {
	if w.size == 0 {
		return Sample{}, false
	}
	return w.buf[(w.head+w.size-1)%len(w.buf)], true
}

// Samples copies the held samples out in chronological order.
func (w *Series) Samples() []Sample {
	out := make([]Sample, w.size)
	for i := 0; i < w.size; i++ {
		out[i] = w.buf[(w.head+i)%len(w.buf)]
	}
	return out
}

// Reset drops every sample but keeps the capacity.
func (w *Series) Reset() {
	w.head = 0
	w.size = 0
}
