// Package clock provides the production clock that stamps drafts and resolves
// the default contract dates of a new form.
package clock

import (
	"time"

	clockport "github.com/iskrendev/insurance-portal/internal/ports/out/clock"
)

var _ clockport.Clock = SystemClock{}

// SystemClock reads the host clock in UTC.
type SystemClock struct{}

func NewSystemClock() SystemClock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now().UTC() }
