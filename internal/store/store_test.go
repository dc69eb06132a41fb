package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemthink/chemthink/internal/grading"
	"github.com/chemthink/chemthink/internal/tracker"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range Tables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table.Name,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table.Name, err)
		}
	}
}

func TestOpen_MigrationIsIdempotent(t *testing.T) {
	path := t.TempDir() + "/chemthink.db"
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.StudentRepo().Touch(context.Background(), "abc", time.Now()))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	st, err := s.StudentRepo().Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.NotNil(t, st)
}

func TestSequenceCounter_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chemthink.db")
	ctx := context.Background()

	next := func(s *Store) int64 {
		t.Helper()
		seq, err := s.seq.Next(ctx)
		require.NoError(t, err)
		return seq
	}

	s, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1), next(s))
	assert.Equal(t, int64(2), next(s))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	assert.Equal(t, int64(3), next(s), "reopening must not reseed the counter")
}

func TestSequenceSharedAcrossTables(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	practice := s.PracticeRepo()
	events := s.EventRepo()

	require.NoError(t, practice.AppendAttempt(ctx, AttemptData{SessionID: "s1", StudentID: "u", Primitive: "RATE", Topic: "kinetics"}))
	require.NoError(t, events.AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: "mock", Purpose: "grade", Success: true}))
	require.NoError(t, practice.AppendAttempt(ctx, AttemptData{SessionID: "s1", StudentID: "u", Primitive: "RATE", Topic: "kinetics"}))

	attempts, err := practice.QueryAttempts(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, int64(3), attempts[0].Sequence)
	assert.Equal(t, int64(1), attempts[1].Sequence)

	llmEvents, err := events.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, llmEvents, 1)
	assert.Equal(t, int64(2), llmEvents[0].Sequence)
}

func TestAttempts_RoundTripAndFilters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.PracticeRepo()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := []AttemptData{
		{SessionID: "s1", StudentID: "alice", Primitive: "DIRECTION", Topic: "bond_angles", ProblemText: "Water?", StudentAnswer: "104.5", CorrectAnswer: "104.5", Correct: true, Feedback: "Correct! Great work.", Strategy: "local", Timestamp: base},
		{SessionID: "s1", StudentID: "alice", Primitive: "DIRECTION", Topic: "bond_angles", ProblemText: "CO2?", StudentAnswer: "90", CorrectAnswer: "180", Correct: false, Feedback: "Not quite.", Strategy: "remote", HintsGiven: 2, Timestamp: base.Add(time.Minute)},
		{SessionID: "s2", StudentID: "alice", Primitive: "RATE", Topic: "half_life", ProblemText: "Half?", StudentAnswer: "0.25", CorrectAnswer: "0.25", Correct: true, Strategy: "local", Timestamp: base.Add(2 * time.Minute)},
		{SessionID: "s3", StudentID: "bob", Primitive: "DIRECTION", Topic: "bond_angles", ProblemText: "Water?", StudentAnswer: "1", CorrectAnswer: "104.5", Correct: true, Strategy: "local", Timestamp: base.Add(3 * time.Minute)},
	}
	for _, r := range rows {
		require.NoError(t, repo.AppendAttempt(ctx, r))
	}

	all, err := repo.QueryAttempts(ctx, QueryOpts{StudentID: "alice"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Half?", all[0].ProblemText, "newest first")

	got := all[1]
	assert.Equal(t, "s1", got.SessionID)
	assert.Equal(t, "90", got.StudentAnswer)
	assert.Equal(t, "180", got.CorrectAnswer)
	assert.False(t, got.Correct)
	assert.Equal(t, "remote", got.Strategy)
	assert.Equal(t, 2, got.HintsGiven)
	assert.True(t, got.Timestamp.Equal(base.Add(time.Minute)), "timestamp = %v", got.Timestamp)

	dir, err := repo.QueryAttempts(ctx, QueryOpts{StudentID: "alice", Primitive: "DIRECTION", Topic: "bond_angles"})
	require.NoError(t, err)
	assert.Len(t, dir, 2)

	limited, err := repo.QueryAttempts(ctx, QueryOpts{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "bob", limited[0].StudentID)
}

func TestHintsAndMastery(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.PracticeRepo()

	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.AppendHint(ctx, HintEventData{
			SessionID: "s1", StudentID: "u", Primitive: "DIRECTION", Topic: "dipoles",
			ProblemText: "p", HintNumber: i, HintText: fmt.Sprintf("hint %d", i),
		}))
	}
	n, err := repo.CountHints(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = repo.CountHints(ctx, "other")
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, repo.AppendMastery(ctx, MasteryEventData{
		SessionID: "s1", StudentID: "u", Primitive: "DIRECTION", Topic: "dipoles", Attempts: 4, Streak: 3,
	}))
	ms, err := repo.QueryMastery(ctx, QueryOpts{StudentID: "u"})
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, 4, ms[0].Attempts)
	assert.Equal(t, 3, ms[0].Streak)
}

func TestUpdateProgress(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.PracticeRepo()
	now := time.Now()

	steps := []struct {
		correct  bool
		streak   int
		attempts int
		mastered bool
	}{
		{true, 1, 1, false},
		{false, 0, 2, false},
		{true, 1, 3, false},
		{true, 2, 4, false},
		{true, 3, 5, true},
		{false, 0, 6, true}, // mastery is sticky
	}
	for i, st := range steps {
		p, err := repo.UpdateProgress(ctx, "u", "RATE", "kinetics", st.correct, 3, now)
		require.NoError(t, err)
		assert.Equal(t, st.streak, p.Streak, "step %d streak", i)
		assert.Equal(t, st.attempts, p.Attempts, "step %d attempts", i)
		assert.Equal(t, st.mastered, p.MasteryAchieved, "step %d mastery", i)
	}

	_, err := repo.UpdateProgress(ctx, "u", "DIRECTION", "bond_angles", true, 3, now)
	require.NoError(t, err)

	list, err := repo.ListProgress(ctx, "u")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "DIRECTION", list[0].Primitive)
	assert.Equal(t, "RATE", list[1].Primitive)
	assert.True(t, list[1].MasteryAchieved)
	assert.Equal(t, 6, list[1].Attempts)

	n, err := repo.ResetProgress(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	list, err = repo.ListProgress(ctx, "u")
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, p := range list {
		assert.Zero(t, p.Streak, "%s streak", p.Topic)
		assert.False(t, p.MasteryAchieved, "%s mastery", p.Topic)
	}
	assert.Equal(t, 1, list[0].Attempts)
	assert.Equal(t, 6, list[1].Attempts)

	// Counting carries on from the kept attempts.
	p, err := repo.UpdateProgress(ctx, "u", "RATE", "kinetics", true, 3, now)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Streak)
	assert.Equal(t, 7, p.Attempts)
	assert.False(t, p.MasteryAchieved)
}

func TestStudentTouch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.StudentRepo()

	missing, err := repo.Get(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	first := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)
	require.NoError(t, repo.Touch(ctx, "u1", first))
	require.NoError(t, repo.Touch(ctx, "u1", later))

	st, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.True(t, st.CreatedAt.Equal(first), "created_at = %v", st.CreatedAt)
	assert.True(t, st.LastActive.Equal(later), "last_active = %v", st.LastActive)
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.EventRepo()

	events := []LLMRequestEventData{
		{Provider: "ollama", Model: "qwen3:latest", Purpose: "problem-gen", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true, RequestBody: "[user]\nGenerate", ResponseBody: `{"problem_text":"x"}`},
		{Provider: "ollama", Model: "qwen3:latest", Purpose: "grade", InputTokens: 80, OutputTokens: 20, LatencyMs: 100, Success: true},
		{Provider: "ollama", Model: "qwen3:latest", Purpose: "grade", InputTokens: 20, OutputTokens: 0, LatencyMs: 300, Success: false, ErrorMessage: "boom"},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	list, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "boom", list[0].ErrorMessage)

	grades, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1, Purpose: "grade"})
	require.NoError(t, err)
	require.Len(t, grades, 1, "limit applies after the purpose filter")
	assert.Equal(t, 3, grades[0].ID)

	gens, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2, Purpose: "problem-gen"})
	require.NoError(t, err)
	require.Len(t, gens, 1)
	assert.Equal(t, "problem-gen", gens[0].Purpose)

	first, err := repo.GetLLMEvent(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, `{"problem_text":"x"}`, first.ResponseBody)
	assert.True(t, first.Success)

	none, err := repo.GetLLMEvent(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, none)

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, LLMUsage{Purpose: "grade", Calls: 2, InputTokens: 100, OutputTokens: 20, AvgLatencyMs: 200}, byPurpose[0])
	assert.Equal(t, "problem-gen", byPurpose[1].Purpose)

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 1)
	assert.Equal(t, 3, byModel[0].Calls)
}

func TestPracticeRecorder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rec := NewPracticeRecorder(s.PracticeRepo(), "student-1")
	now := time.Now()

	for i := 0; i < 3; i++ {
		require.NoError(t, rec.RecordAttempt(ctx, tracker.AttemptRecord{
			SessionID: "sess", Primitive: "DIRECTION", Topic: "bond_angles",
			ProblemText: "Water?", StudentAnswer: "104.5", CorrectAnswer: "104.5",
			Correct: true, Feedback: "ok", Strategy: grading.KindLocal,
			MasteryTarget: 3, Timestamp: now,
		}))
	}
	require.NoError(t, rec.RecordHint(ctx, tracker.HintRecord{
		SessionID: "sess", Primitive: "DIRECTION", Topic: "bond_angles", HintNumber: 1, HintText: "h",
	}))
	require.NoError(t, rec.RecordMastery(ctx, tracker.MasteryRecord{
		SessionID:    "sess",
		MasteryEvent: tracker.MasteryEvent{Primitive: "DIRECTION", Topic: "bond_angles", Attempts: 3, Streak: 3},
		Timestamp:    now,
	}))

	repo := s.PracticeRepo()
	attempts, err := repo.QueryAttempts(ctx, QueryOpts{StudentID: "student-1"})
	require.NoError(t, err)
	assert.Len(t, attempts, 3)
	assert.Equal(t, "local", attempts[0].Strategy)

	progress, err := repo.ListProgress(ctx, "student-1")
	require.NoError(t, err)
	require.Len(t, progress, 1)
	assert.Equal(t, 3, progress[0].Streak)
	assert.True(t, progress[0].MasteryAchieved)

	hints, err := repo.CountHints(ctx, "sess")
	require.NoError(t, err)
	assert.Equal(t, 1, hints)

	ms, err := repo.QueryMastery(ctx, QueryOpts{StudentID: "student-1"})
	require.NoError(t, err)
	assert.Len(t, ms, 1)
}
