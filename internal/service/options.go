package service

import "time"

type options struct {
	now     func() time.Time
	loc     *time.Location
	summary SummaryOptions
}

// Option customizes the order and shift services.
type Option func(*options)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLocation sets the time zone calendar days are computed in.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// WithSummaryOptions bounds the top-product and recent-order lists.
func WithSummaryOptions(so SummaryOptions) Option {
	return func(o *options) { o.summary = so.withDefaults() }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, loc: time.Local, summary: DefaultSummaryOptions()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// dayBounds returns [start of t's day, start of the next day) in loc.
func dayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := t.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
