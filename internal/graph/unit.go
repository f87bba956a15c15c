package graph

// Status represents a unit's state relative to the learner.
type Status int

const (
	StatusLocked    Status = iota // One or more dependencies not yet completed
	StatusAvailable               // All dependencies completed; unit not yet studied
	StatusActive                  // Currently open in the UI (caller-assigned overlay)
	StatusCompleted               // Learner finished this unit
)

// String returns the wire/display name for a status.
func (s Status) String() string {
	switch s {
	case StatusLocked:
		return "locked"
	case StatusAvailable:
		return "available"
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Icon returns the display icon for a status.
func (s Status) Icon() string {
	switch s {
	case StatusLocked:
		return "🔒"
	case StatusAvailable:
		return "🔓"
	case StatusActive:
		return "📖"
	case StatusCompleted:
		return "✅"
	default:
		return "?"
	}
}

// Label returns the display label for a status.
func (s Status) Label() string {
	switch s {
	case StatusLocked:
		return "Locked"
	case StatusAvailable:
		return "Available"
	case StatusActive:
		return "Active"
	case StatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// ParseStatus maps a wire name back to a Status. Unknown names parse as
// StatusLocked, the safe floor; loaded sessions re-derive statuses anyway.
func ParseStatus(s string) Status {
	switch s {
	case "available":
		return StatusAvailable
	case "active":
		return StatusActive
	case "completed":
		return StatusCompleted
	default:
		return StatusLocked
	}
}

// Unit is a single learning module node in a graph.
type Unit struct {
	// ID is unique within its graph and never contains '/'; that
	// character is reserved for scoping persisted completion records.
	ID          string
	Title       string
	Description string

	// Dependencies lists the ids of units that must be completed before
	// this one unlocks. Order carries no meaning. Every id must exist in
	// the same graph.
	Dependencies []string

	// Status always equals what Resolve would compute from the current
	// completed-set. It is never set by hand outside the resolver.
	Status Status

	// SubGraph is the nested curriculum for this unit, present only once
	// deep study has materialized one. The unit exclusively owns it.
	SubGraph *Graph
}

// Link is one materialized dependency edge: Source must be completed
// before Target unlocks. Links are derived from Dependencies and kept in
// sync whenever units are added; they are never the ground truth.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Term is a glossary entry attached to a graph.
type Term struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}
