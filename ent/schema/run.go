package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Run holds the schema definition for the Run entity: the top-level audit
// record. The store in internal/persistence issues its SQL
// directly against the table this schema describes, since entc codegen
// isn't run as part of this build (see DESIGN.md).
type Run struct {
	ent.Schema
}

// Fields of the Run.
func (Run) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Enum("mode").
			Values("GenerateAndVerify", "VerifyOnly"),
		field.Enum("status").
			Values("Completed", "Failed"),
		field.Text("prompt").
			Optional().
			Nillable(),
		field.Text("generated_output").
			Optional().
			Nillable(),
		field.Text("input_text").
			Optional().
			Nillable(),
		field.String("policy_profile"),
		field.String("previous_hash").
			Optional(),
		field.String("current_hash"),
		field.String("model_name").
			Optional(),
		field.Float("risk_score").
			Default(0),
	}
}

// Edges of the Run.
func (Run) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("claims", ExtractedClaim.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("findings", ValidationFinding.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

// Indexes of the Run.
func (Run) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("created_at"),
		index.Fields("previous_hash"),
	}
}

// Annotations for PostgreSQL-specific features.
func (Run) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
