package viewstate

// State is the lifecycle stage of the coordinator
type State int

const (
	Uninitialized State = iota
	ConnectionsLoading
	NoConnections
	ConnectionsReady
	SessionOpening
	InitialLoad
	Ready
	Teardown
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case ConnectionsLoading:
		return "connections-loading"
	case NoConnections:
		return "no-connections"
	case ConnectionsReady:
		return "connections-ready"
	case SessionOpening:
		return "session-opening"
	case InitialLoad:
		return "initial-load"
	case Ready:
		return "ready"
	case Teardown:
		return "teardown"
	default:
		return "unknown"
	}
}

// View is the visible tab
type View int

const (
	ContentView View = iota
	StructureView
	QueryView
	LogsView
)

// Views lists the tabs in display order
var Views = []View{ContentView, StructureView, QueryView, LogsView}

func (v View) String() string {
	switch v {
	case ContentView:
		return "Content"
	case StructureView:
		return "Structure"
	case QueryView:
		return "Query"
	case LogsView:
		return "Logs"
	default:
		return "?"
	}
}
