package curriculum

// Config holds curriculum generation settings.
type Config struct {
	// OutlineMaxTokens bounds initial and deep-study outline responses.
	OutlineMaxTokens int

	// FollowOnMaxTokens bounds follow-on suggestion responses.
	FollowOnMaxTokens int

	Temperature float64

	// OutlineUnits is the unit count requested for a fresh outline.
	OutlineUnits int

	// SubOutlineUnits is the unit count requested for a deep-study
	// sub-graph. Smaller: a sub-graph drills one unit, not a subject.
	SubOutlineUnits int

	// FollowOnCount is the number of follow-on suggestions requested
	// when a learner finishes a graph leaf.
	FollowOnCount int
}

// DefaultConfig returns sensible defaults for curriculum generation.
func DefaultConfig() Config {
	return Config{
		OutlineMaxTokens:  4096,
		FollowOnMaxTokens: 1024,
		Temperature:       0.4,
		OutlineUnits:      8,
		SubOutlineUnits:   4,
		FollowOnCount:     3,
	}
}
