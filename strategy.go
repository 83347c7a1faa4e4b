package throttle

// Strategy defines the behavior when a resource is at capacity.
type Strategy int

const (
	// Reject fails the check immediately with a *LimitError.
	Reject Strategy = iota
	// Hold blocks the check until an admission is recorded or the
	// context is done.
	Hold
	// LogOnly lets the check pass and relies on the OnBlocked callback.
	LogOnly
)

func (s Strategy) String() string {
	switch s {
	case Reject:
		return "Reject"
	case Hold:
		return "Hold"
	case LogOnly:
		return "LogOnly"
	default:
		return "Unknown"
	}
}
