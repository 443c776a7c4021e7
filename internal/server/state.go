package server

// State — фаза жизненного цикла сервера.
//
//	Starting → Listening → (Accepting ⇄ Handling)* → ShuttingDown → Stopped
type State int32

const (
	StateStarting State = iota
	StateListening
	StateAccepting
	StateHandling
	StateShuttingDown
	StateStopped
)

func (st State) String() string {
	switch st {
	case StateStarting:
		return "starting"
	case StateListening:
		return "listening"
	case StateAccepting:
		return "accepting"
	case StateHandling:
		return "handling"
	case StateShuttingDown:
		return "shutting_down"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// State возвращает текущую фазу.
func (s *Server) State() State {
	return State(s.state.Load())
}

func (s *Server) setState(st State) {
	s.state.Store(int32(st))
}
