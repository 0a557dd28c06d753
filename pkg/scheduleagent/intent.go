package scheduleagent

import "strings"

// IntentClassifier decides whether a user query is asking about the
// calendar. The interface leaves room for a model-based variant; the
// keyword implementation is what ships.
type IntentClassifier interface {
	Matches(query string) bool
}

// KeywordClassifier matches when the lowercased query contains any of its
// keywords.
type KeywordClassifier struct {
	Keywords []string
}

func (c KeywordClassifier) Matches(query string) bool {
	lower := strings.ToLower(query)
	for _, kw := range c.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// DefaultClassifier recognizes schedule questions in Japanese.
func DefaultClassifier() IntentClassifier {
	return KeywordClassifier{Keywords: []string{"空き時間", "予定", "スケジュール"}}
}
