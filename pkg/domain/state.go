package domain

// Message is one entry of the run transcript.
type Message struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// Choice records a decision the user made from a fixed option set.
type Choice struct {
	Prompt         string   `json:"prompt"`
	AllowedOptions []string `json:"allowed_options"`

	// LastChoice is the most recently confirmed selection, verbatim as typed.
	LastChoice string `json:"last_choice"`

	// History maps each prompt to the selection made for it.
	History map[string]string `json:"history,omitempty"`
}

// Assessment is the accumulated result of one inference stage.
// Records are created on the first execution of their owning stage and are
// mutated in place by every later execution.
type Assessment struct {
	Classification Classification `json:"classification"`

	// Summary is the short message the collaborator gave with its verdict.
	Summary string `json:"summary,omitempty"`

	// Narrative is the human-readable assessment text.
	Narrative string `json:"narrative"`

	OpenQuestions []string          `json:"open_questions"`
	Answers       map[string]string `json:"answers"`

	// Details holds named plan sections (e.g. "when_to_leave").
	Details map[string]string `json:"details,omitempty"`

	Choice *Choice `json:"choice,omitempty"`
}

// NewAssessment returns an empty record with initialized collections.
func NewAssessment() *Assessment {
	return &Assessment{
		OpenQuestions: []string{},
		Answers:       make(map[string]string),
	}
}

// Outstanding returns, in order, the open questions that have no answer yet.
func (a *Assessment) Outstanding() []string {
	if a == nil {
		return nil
	}
	out := make([]string, 0, len(a.OpenQuestions))
	seen := make(map[string]bool, len(a.OpenQuestions))
	for _, q := range a.OpenQuestions {
		if _, answered := a.Answers[q]; answered || seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
	}
	return out
}

// Session is the single source of truth for one end-to-end run.
type Session struct {
	// Motivation is supplied once at run start and never changes afterwards.
	Motivation string `json:"motivation"`

	// Transcript is append-only.
	Transcript []Message `json:"transcript"`

	Risk      *Assessment `json:"risk_assessment,omitempty"`
	Defence   *Assessment `json:"defence_assessment,omitempty"`
	LeavePlan *Assessment `json:"leave_plan,omitempty"`
	StayPlan  *Assessment `json:"stay_plan,omitempty"`

	// FinalArtifact is present only once the terminal stage has run.
	FinalArtifact []string `json:"final_artifact,omitempty"`
}

// NewSession creates a session with only the motivation and transcript populated.
func NewSession(motivation string, transcript ...Message) *Session {
	s := &Session{
		Motivation: motivation,
		Transcript: []Message{},
	}
	s.Transcript = append(s.Transcript, transcript...)
	return s
}

// Record returns the assessment stored under key, or nil if it does not exist yet.
func (s *Session) Record(key RecordKey) *Assessment {
	if s == nil {
		return nil
	}
	switch key {
	case RecordRisk:
		return s.Risk
	case RecordDefence:
		return s.Defence
	case RecordLeavePlan:
		return s.LeavePlan
	case RecordStayPlan:
		return s.StayPlan
	}
	return nil
}

// ensureRecord returns the record under key, creating it if needed.
// It returns nil for an undeclared key.
func (s *Session) ensureRecord(key RecordKey) *Assessment {
	slot := s.slot(key)
	if slot == nil {
		return nil
	}
	if *slot == nil {
		*slot = NewAssessment()
	}
	return *slot
}

func (s *Session) slot(key RecordKey) **Assessment {
	switch key {
	case RecordRisk:
		return &s.Risk
	case RecordDefence:
		return &s.Defence
	case RecordLeavePlan:
		return &s.LeavePlan
	case RecordStayPlan:
		return &s.StayPlan
	}
	return nil
}

// Clone returns a deep copy so stages and stores never share mutable state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	next := &Session{
		Motivation:    s.Motivation,
		Transcript:    append([]Message{}, s.Transcript...),
		Risk:          s.Risk.Clone(),
		Defence:       s.Defence.Clone(),
		LeavePlan:     s.LeavePlan.Clone(),
		StayPlan:      s.StayPlan.Clone(),
		FinalArtifact: cloneStrings(s.FinalArtifact),
	}
	return next
}

// Clone returns a deep copy of the record.
func (a *Assessment) Clone() *Assessment {
	if a == nil {
		return nil
	}
	next := *a
	next.OpenQuestions = append([]string{}, a.OpenQuestions...)
	next.Answers = cloneMap(a.Answers)
	if next.Answers == nil {
		next.Answers = make(map[string]string)
	}
	next.Details = cloneMap(a.Details)
	if a.Choice != nil {
		c := *a.Choice
		c.AllowedOptions = cloneStrings(a.Choice.AllowedOptions)
		c.History = cloneMap(a.Choice.History)
		next.Choice = &c
	}
	return &next
}

func cloneMap(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func cloneStrings(src []string) []string {
	if src == nil {
		return nil
	}
	return append([]string{}, src...)
}
