package idcodec

import "sync"

var (
	defaultOnce  sync.Once
	defaultCodec *Codec
	defaultErr   error
)

// Default returns the process-wide Codec, creating it and deriving its key on
// the first call. Later calls ignore cfg and opts and return the same codec
// and error; a configuration failure is permanent for the process.
func Default(cfg Config, opts ...Option) (*Codec, error) {
	defaultOnce.Do(func() {
		defaultCodec, defaultErr = New(cfg, opts...)
		if defaultErr != nil {
			return
		}
		if _, err := defaultCodec.DeriveKey(); err != nil {
			defaultCodec, defaultErr = nil, err
		}
	})
	return defaultCodec, defaultErr
}

// MustDefault is like Default but panics on configuration failure. It is meant
// for program start-up, where a missing codec key is fatal.
func MustDefault(cfg Config, opts ...Option) *Codec {
	c, err := Default(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return c
}
