// Package health reports whether the resumekit components can serve.
//
// A Checker reports a Status: Healthy, Degraded, or Unhealthy. The built-in
// checkers cover the identifier codec (a round-trip self test), the result
// cache (occupancy and the advisory remote quota) and the analysis circuit
// breaker. Aggregator runs them together:
//
//	agg := health.NewAggregator()
//	agg.Register(
//	    health.NewCodecChecker(codec),
//	    health.NewCacheChecker(results, 0),
//	    health.NewBreakerChecker("analysis", client.Breaker()),
//	)
//	report := agg.CheckAll(ctx)
//	_ = report.WriteText(os.Stdout)
package health
