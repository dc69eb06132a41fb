package problem

import "context"

// Problem is a single practice problem ready for display.
type Problem struct {
	// Text is the prompt shown to the learner.
	Text string `json:"problem_text"`

	// CorrectAnswer is the canonical answer, e.g. "104.5" or "sp3".
	CorrectAnswer string `json:"correct_answer"`

	// Hint1 and Hint2 are progressively more specific hints. Either may be
	// empty when the generator did not produce one.
	Hint1 string `json:"hint1,omitempty"`
	Hint2 string `json:"hint2,omitempty"`

	// WorkedSolution is a full explanation shown after an incorrect answer.
	WorkedSolution string `json:"worked_solution,omitempty"`

	// ChemistryConnection explains why the problem matters in chemistry.
	// Optional; only remote problems carry it.
	ChemistryConnection string `json:"chemistry_connection,omitempty"`

	// Origin records where the problem came from.
	Origin Origin `json:"-"`
}

// Origin identifies the source of a Problem.
type Origin string

const (
	OriginRemote Origin = "remote"
	OriginSeed   Origin = "seed"

	// OriginGenerated marks a problem produced directly by an LLM.
	OriginGenerated Origin = "generated"
)

// Request holds everything a Source needs to produce a problem.
type Request struct {
	Primitive string
	Topic     string

	// Difficulty is 1 (basic) to 3 (advanced).
	Difficulty int

	// PreviousProblem is the text of the problem shown before this one, or
	// nil on the first request of a session. Sources use it to avoid repeats.
	PreviousProblem *string
}

// Source produces practice problems.
type Source interface {
	Problem(ctx context.Context, req Request) (*Problem, error)
}

// MaxDifficulty is the highest difficulty level a Request may carry.
const MaxDifficulty = 3

// Difficulty maps a correct-answer streak to a difficulty level: one level
// per two consecutive correct answers, capped at MaxDifficulty.
func Difficulty(streak int) int {
	if streak < 0 {
		streak = 0
	}
	return min(MaxDifficulty, 1+streak/2)
}

// ClampDifficulty forces d into the 1..MaxDifficulty range.
func ClampDifficulty(d int) int {
	return max(1, min(MaxDifficulty, d))
}
