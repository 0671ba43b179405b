// Package retry repeats failed Pixiv requests a fixed number of times with a
// constant pause between attempts.
//
// Basic usage:
//
//	err := retry.Do(func() error {
//		return fetchPage(ctx, page)
//	}, &retry.Config{
//		MaxAttempts: 3,
//		Backoff:     &retry.ConstantBackoff{Delay: 3 * time.Second},
//		Context:     ctx,
//		Logger:      log,
//	})
//
// Every failed attempt is logged as a warning; exhausting all attempts is
// logged as an error and returned wrapped. Context cancellation and errors of
// type api are returned immediately without further attempts.
package retry
