package throttle

import "time"

// Resource defines a tracked endpoint with its admission budget.
type Resource struct {
	Name     string        // unique identifier, e.g. "stripe-api"
	Pattern  string        // URL match pattern, e.g. "api.stripe.com/*"
	TPS      uint          // max admissions allowed per window
	Window   time.Duration // rolling window; zero means DefaultWindow
	Strategy Strategy      // Reject, Hold, LogOnly
}
