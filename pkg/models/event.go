package models

// EventKind is the closed set of broker postback kinds. It is decided
// once at the HTTP boundary by the route that received the event.
type EventKind int

const (
	EventRegistration EventKind = iota
	EventDeposit
	EventWithdraw
)

func (k EventKind) String() string {
	switch k {
	case EventRegistration:
		return "registration"
	case EventDeposit:
		return "deposit"
	case EventWithdraw:
		return "withdraw"
	}
	return "unknown"
}
