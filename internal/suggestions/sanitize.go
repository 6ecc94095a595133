package suggestions

import (
	"regexp"
	"strings"
)

// Object names and descriptions are operator-entered free text that gets
// embedded into provider prompts. Anything resembling an instruction to
// the model is scrubbed before it leaves the service.
var instructionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(previous|all|above|prior)\s+(instructions?|prompts?|commands?)`),
	regexp.MustCompile(`(?i)disregard\s+(all|previous|above|any)\s+(instructions?|rules|commands?)`),
	regexp.MustCompile(`(?i)forget\s+(everything|all\s+previous|what\s+you\s+learned)`),
	regexp.MustCompile(`(?i)you\s+are\s+now\s+`),
	regexp.MustCompile(`(?i)assume\s+(the\s+)?(role|identity)\s+of`),
	regexp.MustCompile(`(?i)new\s+(instructions?|role|personality)`),
	regexp.MustCompile(`(?i)respond\s+only\s+with`),
}

// Role and delimiter markers some models treat as turn boundaries.
var delimiterPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\[/?(?:SYSTEM|USER|ASSISTANT|INST)\]`),
	regexp.MustCompile(`<\|[a-z_]+\|>`),
	regexp.MustCompile(`(?m)^###\s*(?i:SYSTEM|USER|ASSISTANT|INSTRUCTION)\b`),
	regexp.MustCompile("```"),
}

// sanitizeField strips instruction-like and delimiter-like sequences
// from a free-text field and collapses the leftover whitespace.
func sanitizeField(s string) string {
	for _, pattern := range instructionPatterns {
		s = pattern.ReplaceAllString(s, "")
	}
	for _, pattern := range delimiterPatterns {
		s = pattern.ReplaceAllString(s, "")
	}
	return strings.Join(strings.Fields(s), " ")
}
