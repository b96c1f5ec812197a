// Package occupancy implements the seat state machine. It is pure logic:
// no I/O, no clock, no database. The repositories feed it facts (does an
// active ticket exist, does an unexpired hold exist, is the seat disabled)
// and it answers which transitions are legal.
//
// A seat has two independent axes of state:
//
//   - configuration state, per seat: AVAILABLE or DISABLED. Set by room
//     administration and shared by every showtime in the room.
//   - occupancy, per (seat, showtime): FREE -> HELD -> SOLD, with
//     HELD -> FREE (release/expiry) and SOLD -> FREE (cancellation) as the
//     reverse edges. FREE is the initial state; there is no terminal state.
//
// Occupancy is never stored directly. A live ticket means SOLD, an
// unexpired hold means HELD, anything else is FREE.
package occupancy

import "errors"

// ConfigState is the administrative state of a seat, independent of any
// showtime.
type ConfigState string

const (
	ConfigAvailable ConfigState = "AVAILABLE"
	ConfigDisabled  ConfigState = "DISABLED"
)

// State is the occupancy of one seat for one specific showtime.
type State string

const (
	Free State = "FREE"
	Held State = "HELD"
	Sold State = "SOLD"
)

// Disabled is not a true occupancy state; it is reported by seat-map
// projections when the configuration axis overrides the sale axis.
const Disabled State = "DISABLED"

var (
	// ErrSeatDisabled is returned when a transition is attempted on a seat
	// whose configuration state is DISABLED. Maps to HTTP 409.
	ErrSeatDisabled = errors.New("seat is disabled")

	// ErrSeatTaken is returned when a hold or purchase loses to an existing
	// hold or live ticket for the same (seat, showtime). Maps to HTTP 409.
	ErrSeatTaken = errors.New("seat already held or sold")

	// ErrNotReleasable is returned when a release is attempted on a seat
	// that is already FREE for the showtime. Maps to HTTP 400.
	ErrNotReleasable = errors.New("seat is not held or sold")
)

// Resolve derives the occupancy of a (seat, showtime) pair from stored
// facts. A live ticket wins over a hold; a disabled configuration wins
// over both for display purposes.
func Resolve(cfg ConfigState, hasLiveTicket, hasActiveHold bool) State {
	if cfg == ConfigDisabled {
		return Disabled
	}
	if hasLiveTicket {
		return Sold
	}
	if hasActiveHold {
		return Held
	}
	return Free
}

// Sellable reports whether a seat in the given occupancy counts as
// available for sale. Only FREE qualifies; HELD, SOLD and DISABLED are all
// unavailable to a new buyer.
func Sellable(s State) bool { return s == Free }

// CheckHold validates the FREE -> HELD transition. The seat must be
// configured AVAILABLE and must not carry a live ticket or a foreign hold.
// A hold already owned by the same holder is idempotent and allowed.
func CheckHold(cfg ConfigState, cur State, heldBySame bool) error {
	if cfg == ConfigDisabled {
		return ErrSeatDisabled
	}
	switch cur {
	case Free:
		return nil
	case Held:
		if heldBySame {
			return nil
		}
		return ErrSeatTaken
	default:
		return ErrSeatTaken
	}
}

// CheckPurchase validates the transition into SOLD. The legal prior state
// is HELD by the buyer; FREE is also accepted so a sale does not require a
// preceding hold (point-of-sale purchases skip seat selection). A live
// ticket or a hold owned by someone else is a conflict: purchase is
// at-most-once per (seat, showtime).
func CheckPurchase(cfg ConfigState, cur State, heldByBuyer bool) error {
	if cfg == ConfigDisabled {
		return ErrSeatDisabled
	}
	switch cur {
	case Free:
		return nil
	case Held:
		if heldByBuyer {
			return nil
		}
		return ErrSeatTaken
	default:
		return ErrSeatTaken
	}
}

// CheckRelease validates HELD -> FREE and SOLD -> FREE. Releasing an
// already free seat is an input error, not a conflict.
func CheckRelease(cur State) error {
	if cur != Held && cur != Sold {
		return ErrNotReleasable
	}
	return nil
}

// CheckConfigure validates an administrative flip of the configuration
// axis. The flip is orthogonal to occupancy but is refused while the seat
// participates in a pending sale flow for any future showtime.
func CheckConfigure(cur State) error {
	if cur == Held || cur == Sold {
		return ErrSeatTaken
	}
	return nil
}
