package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ValidationFinding holds the schema definition for the ValidationFinding
// entity.
type ValidationFinding struct {
	ent.Schema
}

// Fields of the ValidationFinding.
func (ValidationFinding) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("run_id").
			Immutable(),
		field.String("claim_id").
			Optional().
			Nillable(),
		field.String("validator_name"),
		field.String("rule_id"),
		field.String("rule_version"),
		field.Enum("status").
			Values("Pass", "Fail", "Unverified"),
		field.Text("message"),
		field.Float("confidence").
			Default(0),
		field.String("kind").
			Optional().
			Nillable(),
		field.Text("payload").
			Optional(),
		field.String("evidence_ref").
			Optional(),
		field.Int("evidence_start_offset").
			Optional().
			Nillable(),
		field.Int("evidence_end_offset").
			Optional().
			Nillable(),
		field.Int("evidence_step_index").
			Optional().
			Nillable(),
		field.String("evidence_entity_key").
			Optional().
			Nillable(),
		field.Text("evidence_snippet").
			Optional().
			Nillable(),
	}
}

// Edges of the ValidationFinding.
func (ValidationFinding) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("run", Run.Type).
			Ref("findings").
			Unique().
			Required(),
	}
}

// Indexes of the ValidationFinding.
func (ValidationFinding) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("run_id"),
		index.Fields("run_id", "status"),
		index.Fields("claim_id"),
	}
}

// Annotations for PostgreSQL-specific features.
func (ValidationFinding) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
