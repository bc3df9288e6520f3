// internal/domain/intent/intent.go
package intent

// Kind is the classified purpose of an inbound query.
type Kind string

const (
	KindUnknown     Kind = "UNKNOWN"
	KindHistory     Kind = "HISTORY"
	KindNextHearing Kind = "NEXT_HEARING"
	KindCaseLookup  Kind = "CASE_LOOKUP"
)

// Intent is a resolved query. CaseID is set whenever the text carried a case
// identifier, whichever Kind won.
type Intent struct {
	Kind   Kind
	CaseID string
}

// Keywords is the shared keyword configuration. The same lists drive intent
// classification and the audio allow-list.
type Keywords struct {
	History     []string `yaml:"history"`
	NextHearing []string `yaml:"next_hearing"`
	Voice       []string `yaml:"voice"`
}

// DefaultKeywords returns the built-in keyword tables.
func DefaultKeywords() Keywords {
	return Keywords{
		History:     []string{"history", "all hearings", "hearing history", "full history", "case history"},
		NextHearing: []string{"next hearing"},
		Voice: []string{
			"case",
			"history",
			"hearing",
			"next hearing",
			"all hearings",
			"full history",
			"case history",
			"hearing history",
		},
	}
}

// WithDefaults fills every empty list from DefaultKeywords.
func (k Keywords) WithDefaults() Keywords {
	def := DefaultKeywords()
	if len(k.History) == 0 {
		k.History = def.History
	}
	if len(k.NextHearing) == 0 {
		k.NextHearing = def.NextHearing
	}
	if len(k.Voice) == 0 {
		k.Voice = def.Voice
	}
	return k
}
