package model

// Status is the lifecycle state of a Registration.
type Status string

const (
	// StatusConfirmed means the registration holds a seat.
	StatusConfirmed Status = "confirmed"
	// StatusCancelled means the seat has been released; the record is
	// kept so a later registration reactivates it.
	StatusCancelled Status = "cancelled"
	// StatusAttended is terminal. It is set by post-event
	// reconciliation outside this service, never by the ledger.
	StatusAttended Status = "attended"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusConfirmed, StatusCancelled, StatusAttended:
		return true
	}
	return false
}

// CanReserve reports whether a registration in this state may
// transition to confirmed. Only cancelled records reactivate; a
// confirmed record is already holding a seat and attended is terminal.
func (s Status) CanReserve() bool {
	return s == StatusCancelled
}

// CanRelease reports whether a registration in this state may
// transition to cancelled.
func (s Status) CanRelease() bool {
	return s == StatusConfirmed
}

func (s Status) String() string {
	return string(s)
}
