package app

import "time"

// DefaultRetryDelay is the pause before retrying the second step of a commit.
const DefaultRetryDelay = 50 * time.Millisecond

type options struct {
	now        func() time.Time
	loc        *time.Location
	retryDelay time.Duration
}

func newOptions(opts []Option) options {
	o := options{
		now:        time.Now,
		loc:        time.Local,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// today returns the current instant in the configured location.
func (o options) today() time.Time {
	return o.now().In(o.loc)
}

// Option configures a service.
type Option func(*options)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLocation sets the location in which calendar dates are interpreted.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// WithRetryDelay sets the pause before the single retry of a second commit step.
func WithRetryDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.retryDelay = d
		}
	}
}
