package gemini

import (
	"strings"

	"google.golang.org/genai"
)

func firstContent(resp *genai.GenerateContentResponse) *genai.Content {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil
	}
	return resp.Candidates[0].Content
}

// Text concatenates the text parts of the first candidate.
func Text(resp *genai.GenerateContentResponse) string {
	content := firstContent(resp)
	if content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range content.Parts {
		if part != nil && part.Text != "" && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// InlineData returns the first non-empty inline blob of the first candidate.
func InlineData(resp *genai.GenerateContentResponse) *genai.Blob {
	content := firstContent(resp)
	if content == nil {
		return nil
	}

	for _, part := range content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData
		}
	}
	return nil
}

// FinishReason reports why the first candidate stopped, if any.
func FinishReason(resp *genai.GenerateContentResponse) genai.FinishReason {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return ""
	}
	return resp.Candidates[0].FinishReason
}
