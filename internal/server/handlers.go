package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/chemthink/chemthink/internal/grading"
	"github.com/chemthink/chemthink/internal/llm"
	"github.com/chemthink/chemthink/internal/practiceapi"
	"github.com/chemthink/chemthink/internal/problem"
	"github.com/chemthink/chemthink/internal/tutor"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleGenerateProblem(w http.ResponseWriter, r *http.Request) {
	var req practiceapi.GenerateProblemRequest
	if !decodeRequest(w, r, practiceapi.SchemaGenerateProblemRequest, &req) {
		return
	}

	p, err := s.deps.Generator.Problem(r.Context(), problem.Request{
		Primitive:       req.Primitive,
		Topic:           req.Topic,
		Difficulty:      problem.ClampDifficulty(req.Difficulty),
		PreviousProblem: req.PreviousProblem,
	})
	if err != nil {
		s.log.Warn("problem generation failed",
			zap.String("primitive", req.Primitive),
			zap.String("topic", req.Topic),
			zap.Error(err))
		if tutor.IsUnavailable(err) {
			s.metrics.LLMFailures.WithLabelValues("generate", failureReason(err)).Inc()
			writeError(w, http.StatusServiceUnavailable, "LLM unavailable: "+err.Error())
			return
		}
		s.metrics.LLMFailures.WithLabelValues("generate", failureReason(err)).Inc()
		writeError(w, http.StatusInternalServerError, "Failed to generate problem")
		return
	}

	writeJSON(w, http.StatusOK, practiceapi.PayloadFromProblem(p))
}

func (s *Server) handleGrade(w http.ResponseWriter, r *http.Request) {
	var req practiceapi.GradeRequest
	if !decodeRequest(w, r, practiceapi.SchemaGradeRequest, &req) {
		return
	}

	sub := grading.Submission{
		ProblemID: req.ProblemID,
		Problem: problem.Problem{
			Text:          req.ProblemText,
			CorrectAnswer: req.CorrectAnswer,
		},
		Answer:     req.StudentAnswer,
		Primitive:  req.Primitive,
		Topic:      req.Topic,
		HintsGiven: req.HintsGiven,
	}

	res, err := s.deps.Grader.Grade(r.Context(), sub)
	if err != nil {
		s.log.Warn("grading failed", zap.String("problem_id", req.ProblemID), zap.Error(err))
		s.metrics.LLMFailures.WithLabelValues("grade", failureReason(err)).Inc()
		writeError(w, http.StatusServiceUnavailable, "LLM unavailable: "+err.Error())
		return
	}
	s.metrics.Grades.WithLabelValues(strconv.FormatBool(res.Correct)).Inc()

	resp := practiceapi.GradeResponse{
		Correct:         res.Correct,
		Feedback:        res.Feedback,
		MasteryProgress: tutor.MasteryProgress(res.Correct, req.HintsGiven),
	}
	if res.WorkedExample != "" {
		resp.WorkedExample = &res.WorkedExample
	}
	if !res.Correct && s.opts.SimilarOnMiss {
		next := s.deps.Generator.Similar(r.Context(), sub)
		payload := practiceapi.PayloadFromProblem(&next)
		resp.NextProblem = &payload
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := practiceapi.HealthResponse{Status: "healthy", LLM: "connected", Model: s.opts.Model}
	if s.deps.Ping != nil {
		if err := s.deps.Ping(r.Context()); err != nil {
			s.log.Debug("llm ping failed", zap.Error(err))
			resp.Status = "degraded"
			resp.LLM = "disconnected"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePrimitives(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, problem.Catalog())
}

// decodeRequest validates the body against the named schema and decodes it
// into v. On failure it writes a 4xx response and returns false.
func decodeRequest(w http.ResponseWriter, r *http.Request, schema string, v any) bool {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "read request body: "+err.Error())
		return false
	}
	if err := practiceapi.Validate(schema, raw); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "decode request: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// failureReason labels an LLM failure. Generated problems that parse but
// fail validation have no llm error in their chain.
func failureReason(err error) string {
	if errors.Is(err, tutor.ErrGenerationFailed) && llm.Reason(err) == llm.ReasonOther {
		return "invalid_problem"
	}
	return llm.Reason(err)
}
