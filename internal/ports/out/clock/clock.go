package clock

import "time"

// Clock provides time to the application.
// Form drafts take "today" from it, so tests can pin the date.
type Clock interface {
	Now() time.Time
}
