package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/firebreak/pkg/briefing"
	"github.com/aretw0/firebreak/pkg/domain"
	"github.com/aretw0/firebreak/pkg/inference"
	"github.com/aretw0/firebreak/pkg/ports"
)

// Reply fields understood by Assessment. Any other string field declared in
// the schema is stored as a record detail.
const (
	FieldClassification = "classification"
	FieldSummary        = "summary"
	FieldNarrative      = "narrative"
	FieldQuestions      = "questions"
	FieldDetails        = "details"

	// FieldDocument carries the markdown produced by Document.
	FieldDocument = "document"
)

// AssessmentSchema declares the reply of an assessment stage for key.
// The classification enum is the record's legal set; details are extra
// named string fields.
func AssessmentSchema(name string, key domain.RecordKey, details ...inference.Field) inference.Schema {
	fields := []inference.Field{
		{
			Name:        FieldClassification,
			Type:        inference.TypeString,
			Required:    true,
			Enum:        domain.ClassificationsFor(key).Strings(),
			Description: "The outcome of the assessment.",
		},
		{Name: FieldSummary, Type: inference.TypeString, Description: "A short message for the user."},
		{Name: FieldNarrative, Type: inference.TypeString, Description: "The assessment in plain language."},
		{Name: FieldQuestions, Type: inference.TypeStringList, Description: "Questions that still need an answer."},
	}
	for _, f := range details {
		if f.Type == "" {
			f.Type = inference.TypeString
		}
		fields = append(fields, f)
	}
	return inference.Schema{Name: name, Fields: fields}
}

// DocumentSchema declares the reply of the final document stage.
var DocumentSchema = inference.Schema{
	Name: "final_plan",
	Fields: []inference.Field{
		{Name: FieldDocument, Type: inference.TypeString, Required: true, Description: "The complete document in Markdown."},
	},
}

type verdict struct {
	Classification string            `mapstructure:"classification"`
	Summary        string            `mapstructure:"summary"`
	Narrative      string            `mapstructure:"narrative"`
	Questions      []string          `mapstructure:"questions"`
	Details        map[string]string `mapstructure:"details"`
}

var reserved = map[string]bool{
	FieldClassification: true,
	FieldSummary:        true,
	FieldNarrative:      true,
	FieldQuestions:      true,
	FieldDetails:        true,
}

// AssessmentStage classifies the session and records the result on one record.
type AssessmentStage struct {
	narration
	key      domain.RecordKey
	template string
	schema   inference.Schema
	inferer  ports.Inferer
}

// Assessment creates the inference stage writing to key.
func Assessment(key domain.RecordKey, template string, schema inference.Schema, inferer ports.Inferer, opts ...Option) *AssessmentStage {
	return &AssessmentStage{
		narration: newNarration(opts),
		key:       key,
		template:  template,
		schema:    schema,
		inferer:   inferer,
	}
}

// Execute implements ports.Stage.
func (st *AssessmentStage) Execute(ctx context.Context, s *domain.Session) (domain.Delta, error) {
	st.announce(ctx, s.Record(st.key) == nil)

	reply, err := st.inferer.Infer(ctx, inference.Request{
		Template: st.template,
		Context:  briefing.Build(s),
		Schema:   st.schema,
	})
	if err != nil {
		return domain.Delta{}, fmt.Errorf("%s: %w", st.schema.Name, err)
	}

	var v verdict
	if err := inference.Decode(reply, &v); err != nil {
		return domain.Delta{}, fmt.Errorf("%s: %w", st.schema.Name, err)
	}

	class := domain.ClassificationsFor(st.key).Normalize(v.Classification)
	rd := domain.RecordDelta{
		Key:            st.key,
		Classification: &class,
		Summary:        &v.Summary,
		Narrative:      &v.Narrative,
		Questions: &domain.QuestionUpdate{
			Mode:  domain.QuestionsReplace,
			Items: nonBlank(v.Questions),
		},
		Details: st.details(reply, v.Details),
	}
	delta := domain.Delta{Records: []domain.RecordDelta{rd}}

	if resolved(class) {
		preview := s.Clone()
		preview.Apply(delta)
		st.opts.notifier.Summarize(ctx, st.key, preview.Record(st.key))
	}
	return delta, nil
}

func (st *AssessmentStage) details(reply inference.Reply, nested map[string]string) map[string]string {
	out := make(map[string]string, len(nested))
	for k, v := range nested {
		if strings.TrimSpace(v) != "" {
			out[k] = v
		}
	}
	for _, f := range st.schema.Fields {
		if reserved[f.Name] || f.Type != inference.TypeString {
			continue
		}
		if v, ok := reply[f.Name].(string); ok && strings.TrimSpace(v) != "" {
			out[f.Name] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// resolved reports whether a classification is a final verdict rather than
// empty or a request for more information.
func resolved(c domain.Classification) bool {
	switch c {
	case domain.Unresolved, domain.ClassUnclear, domain.ClassMore:
		return false
	}
	return true
}

func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			out = append(out, item)
		}
	}
	return out
}

// DocumentStage produces the final artifact.
type DocumentStage struct {
	narration
	template string
	inferer  ports.Inferer
}

// Document creates the terminal stage that drafts the final document.
func Document(template string, inferer ports.Inferer, opts ...Option) *DocumentStage {
	return &DocumentStage{
		narration: newNarration(opts),
		template:  template,
		inferer:   inferer,
	}
}

// Execute implements ports.Stage.
// The document is split into lines and stored verbatim.
func (st *DocumentStage) Execute(ctx context.Context, s *domain.Session) (domain.Delta, error) {
	st.announce(ctx, len(s.FinalArtifact) == 0)

	reply, err := st.inferer.Infer(ctx, inference.Request{
		Template: st.template,
		Context:  briefing.Build(s),
		Schema:   DocumentSchema,
	})
	if err != nil {
		return domain.Delta{}, fmt.Errorf("%s: %w", DocumentSchema.Name, err)
	}

	doc, _ := reply[FieldDocument].(string)
	if strings.TrimSpace(doc) == "" {
		return domain.Delta{}, fmt.Errorf("%w %s: empty document", inference.ErrSchemaViolation, DocumentSchema.Name)
	}

	return domain.Delta{FinalArtifact: strings.Split(doc, "\n")}, nil
}
