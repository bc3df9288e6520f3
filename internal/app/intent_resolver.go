package app

import (
	"regexp"
	"strings"

	"hearing_reminder_bot/internal/domain/intent"
)

var caseIDPattern = regexp.MustCompile(`\b(\d{3,10})\b`)

// intentRule is one row of the classification table. Rules are tried in order.
type intentRule struct {
	kind  intent.Kind
	match func(text, caseID string) bool
}

// IntentResolver classifies free text with an ordered rule table.
type IntentResolver struct {
	keywords intent.Keywords
	rules    []intentRule
}

func NewIntentResolver(keywords intent.Keywords) *IntentResolver {
	keywords = keywords.WithDefaults()
	r := &IntentResolver{keywords: keywords}
	// History before next hearing before bare case id: "history for 12345" is History.
	r.rules = []intentRule{
		{kind: intent.KindHistory, match: func(text, _ string) bool {
			return containsAny(text, keywords.History)
		}},
		{kind: intent.KindNextHearing, match: func(text, _ string) bool {
			return containsAny(text, keywords.NextHearing) || endsWithWord(text, "hearing")
		}},
		{kind: intent.KindCaseLookup, match: func(_, caseID string) bool {
			return caseID != ""
		}},
	}
	return r
}

// Resolve lower-cases and trims text, extracts a case id if one is present,
// and returns the first matching intent.
func (r *IntentResolver) Resolve(text string) intent.Intent {
	text = normalizeQuery(text)
	caseID := ExtractCaseID(text)

	for _, rule := range r.rules {
		if rule.match(text, caseID) {
			return intent.Intent{Kind: rule.kind, CaseID: caseID}
		}
	}
	return intent.Intent{Kind: intent.KindUnknown, CaseID: caseID}
}

// WantsAudio reports whether text hits the voice allow-list.
func (r *IntentResolver) WantsAudio(text string) bool {
	return containsAny(normalizeQuery(text), r.keywords.Voice)
}

// ExtractCaseID returns the first standalone run of 3 to 10 digits in text.
func ExtractCaseID(text string) string {
	m := caseIDPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

func normalizeQuery(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if p != "" && strings.Contains(text, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// endsWithWord reports whether the last whitespace-separated word of text,
// ignoring trailing punctuation, equals word.
func endsWithWord(text, word string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	last := strings.TrimRight(fields[len(fields)-1], ".?!,;:")
	return last == word
}
