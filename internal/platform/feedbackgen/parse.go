package feedbackgen

import (
	"encoding/json"
	"strconv"
	"strings"
)

type reply struct {
	Feedback map[string]string `json:"feedback"`
	Summary  string            `json:"summary"`
}

// parseReply extracts the outermost JSON object from content and maps its
// question_<n> entries onto the prompts in order. Content that is not JSON
// becomes the feedback for every prompt.
func parseReply(content string, prompts []Prompt) (map[string]string, string) {
	feedback := make(map[string]string, len(prompts))

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	var parsed reply
	if start < 0 || end <= start || json.Unmarshal([]byte(content[start:end+1]), &parsed) != nil {
		raw := strings.TrimSpace(content)
		for _, prompt := range prompts {
			feedback[prompt.QuestionID] = raw
		}
		return feedback, DefaultSummary
	}

	for i, prompt := range prompts {
		if text := strings.TrimSpace(parsed.Feedback["question_"+strconv.Itoa(i+1)]); text != "" {
			feedback[prompt.QuestionID] = text
		}
	}
	summary := strings.TrimSpace(parsed.Summary)
	if summary == "" {
		summary = DefaultSummary
	}
	return feedback, summary
}
