package tutor

import (
	"fmt"
	"strings"

	"github.com/chemthink/chemthink/internal/grading"
	"github.com/chemthink/chemthink/internal/problem"
)

const gradingSystemPrompt = `You are a chemistry-math tutor using the "Chemical Thinking" approach.

Rules:
- Decide whether the student's answer is correct. Be flexible with formatting and units.
- If it is wrong, explain why without giving the answer away.
- If it is wrong, show a worked example of a similar problem and give a hint for the original one.
- Be encouraging but direct. No coddling.`

var problemSystemPrompt = `You are generating practice problems for a chemistry-math course.
The course uses 9 primitives: ` + primitiveList() + `.

Rules:
- Start the problem with a real chemical phenomenon (the hook).
- Test understanding of the specified primitive.
- The problem must have a clear numerical or short answer.
- Match the difficulty level: 1 = basic, 2 = intermediate, 3 = advanced.
- Give two hints, the second more direct than the first, a full worked solution, and say why the problem matters in chemistry.`

func primitiveList() string {
	ps := problem.Primitives()
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// buildGenerateMessage constructs the user message for a new problem.
func buildGenerateMessage(req problem.Request) string {
	var b strings.Builder

	b.WriteString("Generate a chemistry-math problem:\n")
	fmt.Fprintf(&b, "Primitive: %s\n", req.Primitive)
	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	fmt.Fprintf(&b, "Difficulty: %d\n", problem.ClampDifficulty(req.Difficulty))

	if req.PreviousProblem != nil && *req.PreviousProblem != "" {
		fmt.Fprintf(&b, "\nMake it different from: %s", *req.PreviousProblem)
	}

	return b.String()
}

// buildSimilarMessage asks for an easier variant of a problem the student
// just missed.
func buildSimilarMessage(sub grading.Submission) string {
	var b strings.Builder

	b.WriteString("Generate a problem similar to this one but with different numbers/molecules:\n\n")
	fmt.Fprintf(&b, "Original problem: %s\n", sub.Problem.Text)
	fmt.Fprintf(&b, "Primitive: %s\n", sub.Primitive)
	fmt.Fprintf(&b, "Topic: %s\n", sub.Topic)
	b.WriteString("Difficulty: 1 (keep it accessible since student struggled)\n\n")
	b.WriteString("Make it test the same concept but look different.")

	return b.String()
}

// buildGradeMessage constructs the user message for grading a submission.
func buildGradeMessage(sub grading.Submission) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Problem: %s\n", sub.Problem.Text)
	fmt.Fprintf(&b, "Correct Answer: %s\n", sub.Problem.CorrectAnswer)
	fmt.Fprintf(&b, "Student Answer: %s\n", sub.Answer)
	fmt.Fprintf(&b, "Primitive: %s\n", sub.Primitive)
	fmt.Fprintf(&b, "Topic: %s\n", sub.Topic)
	fmt.Fprintf(&b, "Hints already given: %d\n", sub.HintsGiven)
	b.WriteString("\nGrade this answer and provide feedback.")

	return b.String()
}
