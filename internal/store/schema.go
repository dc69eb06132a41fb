package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	tableStudents         = "students"
	tablePracticeAttempts = "practice_attempts"
	tableHintEvents       = "hint_events"
	tableMasteryEvents    = "mastery_events"
	tableProgress         = "progress"
	tableLLMRequestEvents = "llm_request_events"
	tableSequence         = "global_sequence"
)

// eventColumns are shared by every event table: a row ID, the global
// sequence number and the UTC wall-clock time of the event.
func eventColumns(cols ...*schema.Column) []*schema.Column {
	base := []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
	}
	return append(base, cols...)
}

func eventIndexes(table string, cols []*schema.Column, extra ...*schema.Index) []*schema.Index {
	idx := []*schema.Index{
		{Name: table + "_sequence", Columns: []*schema.Column{cols[1]}},
		{Name: table + "_timestamp", Columns: []*schema.Column{cols[2]}},
	}
	return append(idx, extra...)
}

var (
	// StudentsColumns holds the columns for the "students" table.
	StudentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "student_id", Type: field.TypeString, Unique: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "last_active", Type: field.TypeTime},
	}
	StudentsTable = &schema.Table{
		Name:       tableStudents,
		Columns:    StudentsColumns,
		PrimaryKey: []*schema.Column{StudentsColumns[0]},
	}

	// PracticeAttemptsColumns holds the columns for the "practice_attempts" table.
	PracticeAttemptsColumns = eventColumns(
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "student_id", Type: field.TypeString},
		&schema.Column{Name: "primitive", Type: field.TypeString},
		&schema.Column{Name: "topic", Type: field.TypeString},
		&schema.Column{Name: "problem_text", Type: field.TypeString, Size: 2147483647},
		&schema.Column{Name: "student_answer", Type: field.TypeString},
		&schema.Column{Name: "correct_answer", Type: field.TypeString},
		&schema.Column{Name: "is_correct", Type: field.TypeBool},
		&schema.Column{Name: "feedback", Type: field.TypeString, Size: 2147483647, Default: ""},
		&schema.Column{Name: "strategy", Type: field.TypeString},
		&schema.Column{Name: "hints_given", Type: field.TypeInt, Default: 0},
	)
	PracticeAttemptsTable = &schema.Table{
		Name:       tablePracticeAttempts,
		Columns:    PracticeAttemptsColumns,
		PrimaryKey: []*schema.Column{PracticeAttemptsColumns[0]},
		Indexes: eventIndexes(tablePracticeAttempts, PracticeAttemptsColumns,
			&schema.Index{
				Name:    "practice_attempts_student_topic",
				Columns: []*schema.Column{PracticeAttemptsColumns[4], PracticeAttemptsColumns[5], PracticeAttemptsColumns[6]},
			},
			&schema.Index{
				Name:    "practice_attempts_session_id",
				Columns: []*schema.Column{PracticeAttemptsColumns[3]},
			},
		),
	}

	// HintEventsColumns holds the columns for the "hint_events" table.
	HintEventsColumns = eventColumns(
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "student_id", Type: field.TypeString},
		&schema.Column{Name: "primitive", Type: field.TypeString},
		&schema.Column{Name: "topic", Type: field.TypeString},
		&schema.Column{Name: "problem_text", Type: field.TypeString, Size: 2147483647},
		&schema.Column{Name: "hint_number", Type: field.TypeInt},
		&schema.Column{Name: "hint_text", Type: field.TypeString, Size: 2147483647},
	)
	HintEventsTable = &schema.Table{
		Name:       tableHintEvents,
		Columns:    HintEventsColumns,
		PrimaryKey: []*schema.Column{HintEventsColumns[0]},
		Indexes: eventIndexes(tableHintEvents, HintEventsColumns,
			&schema.Index{
				Name:    "hint_events_session_id",
				Columns: []*schema.Column{HintEventsColumns[3]},
			},
		),
	}

	// MasteryEventsColumns holds the columns for the "mastery_events" table.
	MasteryEventsColumns = eventColumns(
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "student_id", Type: field.TypeString},
		&schema.Column{Name: "primitive", Type: field.TypeString},
		&schema.Column{Name: "topic", Type: field.TypeString},
		&schema.Column{Name: "attempts", Type: field.TypeInt},
		&schema.Column{Name: "streak", Type: field.TypeInt},
	)
	MasteryEventsTable = &schema.Table{
		Name:       tableMasteryEvents,
		Columns:    MasteryEventsColumns,
		PrimaryKey: []*schema.Column{MasteryEventsColumns[0]},
		Indexes:    eventIndexes(tableMasteryEvents, MasteryEventsColumns),
	}

	// ProgressColumns holds the columns for the "progress" table.
	ProgressColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "student_id", Type: field.TypeString},
		{Name: "primitive", Type: field.TypeString},
		{Name: "topic", Type: field.TypeString},
		{Name: "streak", Type: field.TypeInt, Default: 0},
		{Name: "mastery_achieved", Type: field.TypeBool, Default: false},
		{Name: "attempts", Type: field.TypeInt, Default: 0},
		{Name: "last_attempt", Type: field.TypeTime},
	}
	ProgressTable = &schema.Table{
		Name:       tableProgress,
		Columns:    ProgressColumns,
		PrimaryKey: []*schema.Column{ProgressColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "progress_student_primitive_topic",
				Unique:  true,
				Columns: []*schema.Column{ProgressColumns[1], ProgressColumns[2], ProgressColumns[3]},
			},
		},
	}

	// LLMRequestEventsColumns holds the columns for the "llm_request_events" table.
	LLMRequestEventsColumns = eventColumns(
		&schema.Column{Name: "provider", Type: field.TypeString},
		&schema.Column{Name: "model", Type: field.TypeString},
		&schema.Column{Name: "purpose", Type: field.TypeString},
		&schema.Column{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		&schema.Column{Name: "success", Type: field.TypeBool},
		&schema.Column{Name: "error_message", Type: field.TypeString, Size: 2147483647, Default: ""},
		&schema.Column{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		&schema.Column{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	)
	LLMRequestEventsTable = &schema.Table{
		Name:       tableLLMRequestEvents,
		Columns:    LLMRequestEventsColumns,
		PrimaryKey: []*schema.Column{LLMRequestEventsColumns[0]},
		Indexes: eventIndexes(tableLLMRequestEvents, LLMRequestEventsColumns,
			&schema.Index{
				Name:    "llm_request_events_purpose",
				Columns: []*schema.Column{LLMRequestEventsColumns[5]},
			},
		),
	}

	// SequenceColumns holds the single-row counter behind every event's
	// sequence number.
	SequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	SequenceTable = &schema.Table{
		Name:       tableSequence,
		Columns:    SequenceColumns,
		PrimaryKey: []*schema.Column{SequenceColumns[0]},
	}

	// Tables holds every table migrated by Open.
	Tables = []*schema.Table{
		StudentsTable,
		PracticeAttemptsTable,
		HintEventsTable,
		MasteryEventsTable,
		ProgressTable,
		LLMRequestEventsTable,
		SequenceTable,
	}
)
