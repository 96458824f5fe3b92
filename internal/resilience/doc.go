// Package resilience groups the fault tolerance building blocks used by the
// outgoing calls of the refresher.
//
// The subpackages provide:
//   - circuitbreaker: gobreaker wrappers for the summarizer APIs and webhooks
//   - retry: exponential backoff with jitter and HTTP status classification
//   - ratelimit: token bucket throttling for webhooks and summarizer calls
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.SummarizerAPIConfig("openai-api"))
//	summary, err := cb.ExecuteString(func() (string, error) {
//	    return callProvider(ctx)
//	})
//
//	err := retry.WithBackoff(ctx, retry.AIAPIConfig(), func() error {
//	    return performOperation()
//	})
package resilience
