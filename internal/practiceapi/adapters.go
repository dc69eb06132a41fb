package practiceapi

import (
	"context"

	"github.com/chemthink/chemthink/internal/grading"
	"github.com/chemthink/chemthink/internal/problem"
)

// Source adapts a Client to problem.Source.
type Source struct {
	Client *Client
}

var _ problem.Source = (*Source)(nil)

// Problem requests a generated problem from the service.
func (s *Source) Problem(ctx context.Context, req problem.Request) (*problem.Problem, error) {
	payload, err := s.Client.GenerateProblem(ctx, GenerateProblemRequest{
		Primitive:       req.Primitive,
		Topic:           req.Topic,
		Difficulty:      req.Difficulty,
		PreviousProblem: req.PreviousProblem,
	})
	if err != nil {
		return nil, err
	}
	return payload.Problem(), nil
}

// Grader adapts a Client to grading.Strategy.
type Grader struct {
	Client *Client
}

var _ grading.Strategy = (*Grader)(nil)

func (g *Grader) Kind() grading.Kind { return grading.KindRemote }

// Grade submits the answer to the service. The response's next_problem is
// not used; the session asks for its own next problem.
func (g *Grader) Grade(ctx context.Context, sub grading.Submission) (grading.Result, error) {
	resp, err := g.Client.Grade(ctx, GradeRequest{
		ProblemID:     sub.ProblemID,
		ProblemText:   sub.Problem.Text,
		CorrectAnswer: sub.Problem.CorrectAnswer,
		StudentAnswer: sub.Answer,
		Primitive:     sub.Primitive,
		Topic:         sub.Topic,
		HintsGiven:    sub.HintsGiven,
	})
	if err != nil {
		return grading.Result{}, err
	}

	res := grading.Result{
		Correct:         resp.Correct,
		Feedback:        resp.Feedback,
		MasteryProgress: resp.MasteryProgress,
		Strategy:        grading.KindRemote,
	}
	if resp.WorkedExample != nil {
		res.WorkedExample = *resp.WorkedExample
	}
	return res, nil
}
