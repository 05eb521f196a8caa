package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ExtractedClaim holds the schema definition for the ExtractedClaim entity.
type ExtractedClaim struct {
	ent.Schema
}

// Fields of the ExtractedClaim.
func (ExtractedClaim) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("run_id").
			Immutable(),
		field.Enum("kind").
			Values(
				"NumericWithUnit", "CitationDoi", "ReagentMention",
				"SolventMention", "AtmosphereCondition", "DrynessCondition",
				"SymbolicTemperature",
			),
		field.Text("raw_text"),
		field.String("normalized_value").
			Optional(),
		field.String("unit").
			Optional(),
		field.Text("payload").
			Optional().
			Comment("Opaque JSON: contextKey, timeAction, role, symbolic, token"),
		field.String("source_locator").
			Comment("AnalyzedText:START-END"),
		field.String("entity_key").
			Optional().
			Nillable(),
		field.Int("step_index").
			Optional().
			Nillable(),
	}
}

// Edges of the ExtractedClaim.
func (ExtractedClaim) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("run", Run.Type).
			Ref("claims").
			Unique().
			Required(),
	}
}

// Indexes of the ExtractedClaim.
func (ExtractedClaim) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("run_id"),
		index.Fields("run_id", "kind"),
		index.Fields("entity_key"),
	}
}

// Annotations for PostgreSQL-specific features.
func (ExtractedClaim) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
