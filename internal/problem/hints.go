package problem

import "fmt"

// GenericHint is shown when the selected hint slot is empty.
const GenericHint = "Think about the underlying pattern here."

// Hint returns the n-th hint (1-based) for p. The third slot reveals the
// answer and is repeated for every n beyond it.
func (p *Problem) Hint(n int) string {
	slots := [...]string{
		p.Hint1,
		p.Hint2,
		fmt.Sprintf("The answer is close to: %s", p.CorrectAnswer),
	}
	i := min(max(n-1, 0), len(slots)-1)
	if slots[i] == "" {
		return GenericHint
	}
	return slots[i]
}
