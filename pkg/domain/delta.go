package domain

// QuestionMode tells Apply how to combine a question update with the existing list.
type QuestionMode int

const (
	// QuestionsReplace swaps the open question list for the given items.
	QuestionsReplace QuestionMode = iota
	// QuestionsAppend adds items not already present.
	QuestionsAppend
)

// QuestionUpdate is a directed change to a record's open questions.
type QuestionUpdate struct {
	Mode  QuestionMode
	Items []string
}

// ChoiceDelta records a validated selection for a choice record.
type ChoiceDelta struct {
	Prompt    string
	Options   []string
	Selection string
}

// RecordDelta is a partial update to one assessment record.
// Nil pointers and nil maps leave the corresponding field untouched.
type RecordDelta struct {
	Key            RecordKey
	Classification *Classification
	Summary        *string
	Narrative      *string
	Questions      *QuestionUpdate
	Answers        map[string]string
	Details        map[string]string
	Choice         *ChoiceDelta
}

// Delta is the partial update a stage returns. It is merged, never assigned.
type Delta struct {
	Motivation    string
	Transcript    []Message
	Records       []RecordDelta
	FinalArtifact []string
}

// IsEmpty reports whether applying d would change nothing.
func (d Delta) IsEmpty() bool {
	return d.Motivation == "" && len(d.Transcript) == 0 && len(d.Records) == 0 && d.FinalArtifact == nil
}

// Apply merges d into s field by field.
// Motivation is only set while empty, transcript entries are appended, maps
// merge key by key, and question lists follow the update's mode. Deltas for
// undeclared records are ignored.
func (s *Session) Apply(d Delta) {
	if s.Motivation == "" && d.Motivation != "" {
		s.Motivation = d.Motivation
	}
	if len(d.Transcript) > 0 {
		s.Transcript = append(s.Transcript, d.Transcript...)
	}
	for _, rd := range d.Records {
		rec := s.ensureRecord(rd.Key)
		if rec == nil {
			continue
		}
		rec.apply(rd)
	}
	if d.FinalArtifact != nil {
		s.FinalArtifact = append([]string{}, d.FinalArtifact...)
	}
}

func (a *Assessment) apply(rd RecordDelta) {
	if rd.Classification != nil {
		a.Classification = ClassificationsFor(rd.Key).Normalize(string(*rd.Classification))
	}
	if rd.Summary != nil {
		a.Summary = *rd.Summary
	}
	if rd.Narrative != nil {
		a.Narrative = *rd.Narrative
	}
	if rd.Questions != nil {
		switch rd.Questions.Mode {
		case QuestionsAppend:
			for _, q := range rd.Questions.Items {
				if !contains(a.OpenQuestions, q) {
					a.OpenQuestions = append(a.OpenQuestions, q)
				}
			}
		default:
			a.OpenQuestions = append([]string{}, rd.Questions.Items...)
		}
	}
	if len(rd.Answers) > 0 {
		if a.Answers == nil {
			a.Answers = make(map[string]string, len(rd.Answers))
		}
		for q, ans := range rd.Answers {
			a.Answers[q] = ans
		}
	}
	if len(rd.Details) > 0 {
		if a.Details == nil {
			a.Details = make(map[string]string, len(rd.Details))
		}
		for k, v := range rd.Details {
			a.Details[k] = v
		}
	}
	if rd.Choice != nil {
		if a.Choice == nil {
			a.Choice = &Choice{}
		}
		a.Choice.apply(*rd.Choice)
	}
}

func (c *Choice) apply(cd ChoiceDelta) {
	if cd.Prompt != "" {
		c.Prompt = cd.Prompt
	}
	if cd.Options != nil {
		c.AllowedOptions = append([]string{}, cd.Options...)
	}
	if cd.Selection == "" {
		return
	}
	c.LastChoice = cd.Selection
	if c.History == nil {
		c.History = make(map[string]string)
	}
	c.History[c.Prompt] = cd.Selection
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Ptr is a small helper for building deltas with optional fields.
func Ptr[T any](v T) *T {
	return &v
}
