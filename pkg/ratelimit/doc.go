// Package ratelimit paces requests against the Discord API.
//
// Two limiters are provided behind a shared Limiter interface:
//
// FixedInterval:
//   - Enforces a constant delay between consecutive requests
//   - Shared across channel workers so pacing holds globally
//
// Token Bucket:
//   - Caps total requests per refill period, on top of the pacing delay
//   - Used as a coarse requests-per-minute ceiling
package ratelimit
