package game

// State is a screen of the application.
type State uint8

const (
	StateMenu    State = iota // fresh run: first map selected, counters reset
	StatePreview              // map preview with Next and Play
	StateRunning              // one generation per driver step
	StateStopped              // the driver loop returns
)

func (s State) String() string {
	switch s {
	case StateMenu:
		return "menu"
	case StatePreview:
		return "preview"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Command is what a state handler asks the driver loop to do next.
type Command uint8

const (
	CmdNone        Command = iota // stay
	CmdShowPreview                // menu is ready, show the preview
	CmdNextMap                    // preview: advance to the next map
	CmdPlay                       // start evolving on the selected map
	CmdReturn                     // back to the menu after the generation
	CmdQuit                       // stop the driver loop
)

func (c Command) String() string {
	switch c {
	case CmdNone:
		return "none"
	case CmdShowPreview:
		return "show_preview"
	case CmdNextMap:
		return "next_map"
	case CmdPlay:
		return "play"
	case CmdReturn:
		return "return"
	case CmdQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// transitions lists the commands each state accepts. Commands missing here
// leave the state unchanged.
var transitions = map[State]map[Command]State{
	StateMenu: {
		CmdShowPreview: StatePreview,
		CmdPlay:        StateRunning,
	},
	StatePreview: {
		CmdNextMap: StatePreview,
		CmdPlay:    StateRunning,
	},
	StateRunning: {
		CmdReturn: StateMenu,
	},
}

// Next returns the state after cmd. CmdQuit stops from any state.
func (s State) Next(cmd Command) State {
	if cmd == CmdQuit {
		return StateStopped
	}
	if next, ok := transitions[s][cmd]; ok {
		return next
	}
	return s
}
