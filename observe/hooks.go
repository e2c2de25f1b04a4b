package observe

import (
	"context"

	"github.com/jonwraymond/resumekit/cache"
	"github.com/jonwraymond/resumekit/idcodec"
)

// EvictHook returns a cache.WithEvictHook callback that counts removals by
// reason.
func EvictHook(m Metrics) func(cache.Key, cache.EvictReason) {
	return func(_ cache.Key, reason cache.EvictReason) {
		m.RecordEviction(context.Background(), reason.String())
	}
}

// DecodeObserver returns an idcodec.WithObserver callback that counts decode
// outcomes. Fallbacks are also logged at debug level, without the token.
func DecodeObserver(m Metrics, logger Logger) func(idcodec.Outcome) {
	return func(o idcodec.Outcome) {
		ctx := context.Background()
		m.RecordDecode(ctx, o.String())
		if o == idcodec.OutcomeFallback && logger != nil {
			logger.Debug(ctx, "identifier decode fell back to input")
		}
	}
}
