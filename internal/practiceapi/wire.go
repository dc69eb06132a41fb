// Package practiceapi defines the practice service wire contract and a
// client for it. The same types are decoded by the client and encoded by
// the server in internal/server.
package practiceapi

import "github.com/chemthink/chemthink/internal/problem"

// Endpoint paths relative to the service base URL.
const (
	PathGenerateProblem = "/generate-problem"
	PathGrade           = "/grade"
	PathHealth          = "/health"
	PathPrimitives      = "/primitives"
)

// GenerateProblemRequest is the body of POST /generate-problem.
type GenerateProblemRequest struct {
	Primitive  string `json:"primitive"`
	Topic      string `json:"topic"`
	Difficulty int    `json:"difficulty"`

	// PreviousProblem is encoded as null when absent.
	PreviousProblem *string `json:"previous_problem"`
}

// ProblemPayload is a generated problem as it travels over the wire. It is
// the response of POST /generate-problem and the optional next_problem of a
// grade response.
type ProblemPayload struct {
	ProblemText         string `json:"problem_text"`
	CorrectAnswer       string `json:"correct_answer"`
	Hint1               string `json:"hint1,omitempty"`
	Hint2               string `json:"hint2,omitempty"`
	WorkedSolution      string `json:"worked_solution,omitempty"`
	ChemistryConnection string `json:"chemistry_connection,omitempty"`
}

// GradeRequest is the body of POST /grade.
type GradeRequest struct {
	ProblemID     string `json:"problem_id"`
	ProblemText   string `json:"problem_text"`
	CorrectAnswer string `json:"correct_answer"`
	StudentAnswer string `json:"student_answer"`
	Primitive     string `json:"primitive"`
	Topic         string `json:"topic"`
	HintsGiven    int    `json:"hints_given"`
}

// GradeResponse is the response of POST /grade.
type GradeResponse struct {
	Correct         bool            `json:"correct"`
	Feedback        string          `json:"feedback"`
	WorkedExample   *string         `json:"worked_example"`
	MasteryProgress float64         `json:"mastery_progress"`
	NextProblem     *ProblemPayload `json:"next_problem,omitempty"`
}

// HealthResponse is the response of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	LLM    string `json:"llm"`
	Model  string `json:"model,omitempty"`
}

// ErrorResponse is the body of every non-2xx service response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Problem converts the payload into a remote-origin problem.
func (p ProblemPayload) Problem() *problem.Problem {
	return &problem.Problem{
		Text:                p.ProblemText,
		CorrectAnswer:       p.CorrectAnswer,
		Hint1:               p.Hint1,
		Hint2:               p.Hint2,
		WorkedSolution:      p.WorkedSolution,
		ChemistryConnection: p.ChemistryConnection,
		Origin:              problem.OriginRemote,
	}
}

// PayloadFromProblem is the inverse of ProblemPayload.Problem.
func PayloadFromProblem(p *problem.Problem) ProblemPayload {
	return ProblemPayload{
		ProblemText:         p.Text,
		CorrectAnswer:       p.CorrectAnswer,
		Hint1:               p.Hint1,
		Hint2:               p.Hint2,
		WorkedSolution:      p.WorkedSolution,
		ChemistryConnection: p.ChemistryConnection,
	}
}
