package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	tableProgress = "learner_progress"
	tableHearts   = "heart_states"
	tableProfiles = "learner_profiles"
	tableEvents   = "events"
	tableOps      = "operations"
	tableLLM      = "llm_requests"
	tableSequence = "global_sequence"
)

func str(name string) *schema.Column { return &schema.Column{Name: name, Type: field.TypeString} }
func integer(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeInt, Default: 0}
}
func timestamp(name string) *schema.Column { return &schema.Column{Name: name, Type: field.TypeTime} }
func nullTime(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeTime, Nullable: true}
}

// tables returns the schema applied by Open. Learner rows are keyed by the
// caller's opaque user ID.
func tables() []*schema.Table {
	progress := schema.NewTable(tableProgress).
		AddPrimary(str("user_id")).
		AddPrimary(str("node_id")).
		AddColumn(str("status")).
		AddColumn(integer("stars")).
		AddColumn(integer("attempts")).
		AddColumn(integer("best_score")).
		AddColumn(nullTime("completed_at")).
		AddColumn(timestamp("updated_at"))

	hearts := schema.NewTable(tableHearts).
		AddPrimary(str("user_id")).
		AddColumn(integer("current")).
		AddColumn(integer("max")).
		AddColumn(nullTime("refill_at")).
		AddColumn(timestamp("updated_at"))

	profiles := schema.NewTable(tableProfiles).
		AddPrimary(str("user_id")).
		AddColumn(integer("xp")).
		AddColumn(integer("streak_days")).
		AddColumn(&schema.Column{Name: "last_active_day", Type: field.TypeString, Default: ""}).
		AddColumn(timestamp("updated_at"))

	events := schema.NewTable(tableEvents).
		AddPrimary(str("id")).
		AddColumn(&schema.Column{Name: "sequence", Type: field.TypeInt64, Unique: true}).
		AddColumn(str("kind")).
		AddColumn(str("user_id")).
		AddColumn(timestamp("at")).
		AddColumn(str("data")).
		AddIndex("events_user_id_sequence", false, []string{"user_id", "sequence"})

	ops := schema.NewTable(tableOps).
		AddPrimary(str("operation_id")).
		AddColumn(str("user_id")).
		AddColumn(str("kind")).
		AddColumn(str("result")).
		AddColumn(&schema.Column{Name: "err_code", Type: field.TypeString, Default: ""}).
		AddColumn(timestamp("created_at")).
		AddIndex("operations_user_id", false, []string{"user_id"})

	llm := schema.NewTable(tableLLM).
		AddPrimary(&schema.Column{Name: "id", Type: field.TypeInt, Increment: true}).
		AddColumn(&schema.Column{Name: "sequence", Type: field.TypeInt64, Unique: true}).
		AddColumn(timestamp("at")).
		AddColumn(str("provider")).
		AddColumn(str("model")).
		AddColumn(str("purpose")).
		AddColumn(integer("input_tokens")).
		AddColumn(integer("output_tokens")).
		AddColumn(&schema.Column{Name: "latency_ms", Type: field.TypeInt64, Default: 0}).
		AddColumn(&schema.Column{Name: "success", Type: field.TypeBool, Default: false}).
		AddColumn(&schema.Column{Name: "error", Type: field.TypeString, Default: ""}).
		AddColumn(&schema.Column{Name: "request", Type: field.TypeString, Default: ""}).
		AddColumn(&schema.Column{Name: "response", Type: field.TypeString, Default: ""})

	// Single-row counter shared by events and LLM requests.
	seq := schema.NewTable(tableSequence).
		AddPrimary(&schema.Column{Name: "id", Type: field.TypeInt}).
		AddColumn(&schema.Column{Name: "next_val", Type: field.TypeInt64, Default: 1})

	return []*schema.Table{progress, hearts, profiles, events, ops, llm, seq}
}
