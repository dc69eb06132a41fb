package llm

// The tutor package owns the real schemas and prompts and imports this
// package, so the tests here keep copies of the same shapes.

const (
	problemSystem = "You are generating practice problems for a chemistry-math course.\n" +
		"The course uses 9 primitives: COLLECTION, ARRANGEMENT, DIRECTION, PROXIMITY, SAMENESS, CHANGE, RATE, ACCUMULATION, SPREAD."
	gradeSystem = `You are a chemistry-math tutor using the "Chemical Thinking" approach.`

	problemPrompt = "Generate a chemistry-math problem:\nPrimitive: DIRECTION\nTopic: bond_angles\nDifficulty: 2"
	gradePrompt   = "Problem: What is the bond angle in water?\nCorrect Answer: 104.5\nStudent Answer: 109.5\n" +
		"Primitive: DIRECTION\nTopic: bond_angles\nHints already given: 1\n\nGrade this answer and provide feedback."
)

const problemReply = `{"problem_text":"Water has two lone pairs on oxygen. What is its H-O-H bond angle?",` +
	`"correct_answer":"104.5","hint1":"Start from the tetrahedral angle.",` +
	`"hint2":"Each lone pair squeezes the bonds by about 2.5 degrees.",` +
	`"worked_solution":"109.5 - 2 x 2.5 = 104.5 degrees.","chemistry_connection":"The bent shape makes water polar."}`

const gradeReply = `{"correct":false,"feedback":"That is the tetrahedral angle; lone pairs compress it.",` +
	`"worked_example":"NH3 has one lone pair: 109.5 - 2.5 = 107 degrees.","hint":"Count the lone pairs on oxygen."}`

func stringProps(names ...string) map[string]any {
	props := make(map[string]any, len(names))
	for _, n := range names {
		props[n] = map[string]any{"type": "string"}
	}
	return props
}

func requiredList(names ...string) []any {
	out := make([]any, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}

func problemSchema() *Schema {
	fields := []string{"problem_text", "correct_answer", "hint1", "hint2", "worked_solution", "chemistry_connection"}
	return &Schema{
		Name:        "chem-problem",
		Description: "A single chemistry-math practice problem with hints and a worked solution",
		Definition: map[string]any{
			"type":                 "object",
			"properties":           stringProps(fields...),
			"required":             requiredList(fields...),
			"additionalProperties": false,
		},
	}
}

func gradeSchema() *Schema {
	props := stringProps("feedback", "worked_example", "hint")
	props["correct"] = map[string]any{"type": "boolean"}
	return &Schema{
		Name:        "chem-grade",
		Description: "The verdict on a student's answer with feedback",
		Definition: map[string]any{
			"type":                 "object",
			"properties":           props,
			"required":             requiredList("correct", "feedback", "worked_example", "hint"),
			"additionalProperties": false,
		},
	}
}

func problemRequest() Request {
	return Request{System: problemSystem, Prompt: problemPrompt, Schema: problemSchema(), MaxTokens: 1024, Temperature: 0.7}
}

func gradeRequest() Request {
	return Request{System: gradeSystem, Prompt: gradePrompt, Schema: gradeSchema(), MaxTokens: 1024}
}
