package engine

// State is a stage of a single Gen call.
type State int

const (
	StateCreated State = iota
	StateValidated
	StateInputsGenerated
	StateExpanded
	StateOutputsResolved
	StateDone
	// StateErrored is reached only from validation, on a structural error.
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateValidated:
		return "validated"
	case StateInputsGenerated:
		return "inputs_generated"
	case StateExpanded:
		return "expanded"
	case StateOutputsResolved:
		return "outputs_resolved"
	case StateDone:
		return "done"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}
