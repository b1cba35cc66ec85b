package domain

// PollState is where a command stands between login and exit.
type PollState int

const (
	PollStart PollState = iota
	PollAuthenticating
	PollAuthFailed
	PollAuthenticated
	// PollCycle covers one call, parse and render pass.
	PollCycle
	PollSleeping
	PollExit
)

func (s PollState) String() string {
	switch s {
	case PollStart:
		return "start"
	case PollAuthenticating:
		return "authenticating"
	case PollAuthFailed:
		return "auth-failed"
	case PollAuthenticated:
		return "authenticated"
	case PollCycle:
		return "cycle"
	case PollSleeping:
		return "sleep"
	case PollExit:
		return "exit"
	default:
		return "unknown"
	}
}
