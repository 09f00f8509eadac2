package view

// Mode selects which chart the controller produces.
type Mode int

const (
	TickView Mode = iota
	HistoryView
)

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == TickView {
		return HistoryView
	}
	return TickView
}

func (m Mode) String() string {
	switch m {
	case TickView:
		return "tick"
	case HistoryView:
		return "history"
	default:
		return "unknown"
	}
}
