// Package ratelimit provides rate limiting for Plex catalog requests.
//
// A photo library walk can issue one metadata request per album on top of
// the section listings; this package keeps that traffic polite so a large
// mirror does not hammer the server. Binary downloads are paced separately
// by the mirror's fixed inter-download delay and do not go through these
// limiters.
//
// Available Implementations:
//
// Token Bucket:
//   - Fixed capacity bucket that refills after a specified period
//   - Suitable for burst traffic followed by quiet periods
//   - Default implementation used by the catalog client
//
// Sliding Window:
//   - Tracks requests within a moving time window
//   - More accurate rate limiting over time
//   - Better for consistent request patterns
//
// Interface:
//
// All rate limiters implement the Limiter interface:
//   - Allow() bool - Check if a request is allowed
//   - Wait() - Block until a request is allowed
//   - Reset() - Reset the limiter state
//
// Usage:
//
//	// Token bucket: 60 catalog requests per minute
//	limiter := ratelimit.NewTokenBucket(60, time.Minute)
//
//	if limiter.Allow() {
//	    // Proceed with request
//	} else {
//	    // Wait for rate limit to reset
//	    limiter.Wait()
//	}
//
//	// Sliding window: 100 requests per 15 minutes
//	limiter := ratelimit.NewSlidingWindow(100, 15*time.Minute)
//
//	// Block until allowed
//	limiter.Wait()
//	// Proceed with request
package ratelimit
