package envi

// DebugLogger receives per-key parse traces and session events. It is
// satisfied by *slog.Logger.
type DebugLogger interface {
	Debug(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

// Option configures a reader or writer.
type Option func(*options)

type options struct {
	log  DebugLogger
	mmap bool
}

// WithLogger sets the logger used for debug traces.
func WithLogger(l DebugLogger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMmap toggles memory mapping of data files opened by Open. It is on by
// default where the platform supports it.
func WithMmap(enabled bool) Option {
	return func(o *options) {
		o.mmap = enabled
	}
}

func applyOptions(opts []Option) *options {
	o := &options{log: nopLogger{}, mmap: true}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}
