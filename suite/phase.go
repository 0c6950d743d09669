package suite

// Phase is a state of the Driver.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseSetup
	PhaseRunning
	PhaseTeardown
	PhaseDone
	// PhaseError is entered on any failure the driver cannot recover from. It is final.
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "INIT"
	case PhaseSetup:
		return "SETUP"
	case PhaseRunning:
		return "RUNNING"
	case PhaseTeardown:
		return "TEARDOWN"
	case PhaseDone:
		return "DONE"
	case PhaseError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
