// Package escalation spots requests for a human and answers with a fixed handoff reply.
package escalation

import "strings"

// DefaultKeywords trigger a handoff when found anywhere in the message.
var DefaultKeywords = []string{"manager", "supervisor", "human support"}

// DefaultResponse is the handoff reply.
const DefaultResponse = "I understand you need human assistance. My manager will help you shortly."

// Detector matches keywords as case-insensitive substrings.
type Detector struct {
	keywords []string
	response string
}

// NewDetector builds a Detector. Empty arguments fall back to the defaults.
func NewDetector(keywords []string, response string) *Detector {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	if response == "" {
		response = DefaultResponse
	}

	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}
	return &Detector{keywords: lowered, response: response}
}

// Detect returns the handoff reply when input mentions any keyword.
func (d *Detector) Detect(input string) (string, bool) {
	lowered := strings.ToLower(input)
	for _, k := range d.keywords {
		if strings.Contains(lowered, k) {
			return d.response, true
		}
	}
	return "", false
}
