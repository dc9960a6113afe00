package celerybridge

import "time"

type options struct {
	id     string
	queue  string
	origin string

	waitTimeout  time.Duration
	waitInterval time.Duration
}

// Option configures dispatch or wait behavior.
type Option func(*options)

// TaskID sets a custom ID for the task, letting callers retry a dispatch
// idempotently. If not provided, a random UUID is generated.
func TaskID(id string) Option {
	return func(o *options) {
		o.id = id
	}
}

// Queue routes the task to a queue other than the default ("celery").
// The queue name is also stamped into the envelope's routing key.
func Queue(name string) Option {
	return func(o *options) {
		o.queue = name
	}
}

// Origin overrides the provenance string recorded in the envelope.
// The default is "go@<hostname>".
func Origin(origin string) Option {
	return func(o *options) {
		o.origin = origin
	}
}

// WaitTimeout bounds how long WaitForCompletion polls before giving up.
// The default is 10 minutes.
func WaitTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.waitTimeout = d
		}
	}
}

// WaitInterval sets the delay between result polls. The default is 2 seconds.
func WaitInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.waitInterval = d
		}
	}
}
