package vision

import (
	"fmt"

	"google.golang.org/genai"
)

const systemInstruction = `You are an AI video summarizer for people who are blind or have low vision.
Describe what can be seen: the setting, the people and objects present, and the actions taking place.
Write plain spoken sentences suitable for narration. Do not mention that you are describing a video.`

func buildPrompt(req DescribeRequest) string {
	if req.Interval > 0 {
		return fmt.Sprintf(
			"Split the video into %d consecutive segments of %g seconds each, starting at 0 seconds. "+
				"For each segment return its start time in seconds as timestamp and a concise summary of that scene. "+
				"Return exactly %d items in chronological order.",
			req.Count, req.Interval, req.Count,
		)
	}
	return fmt.Sprintf(
		"Identify the %d most important scenes in the video for timeline navigation. "+
			"For each scene return the time in seconds where it begins as timestamp and a concise summary of its content. "+
			"Return exactly %d items in chronological order.",
		req.Count, req.Count,
	)
}

var sceneListSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"timestamp": {
				Type:        genai.TypeNumber,
				Description: "Start of the scene in seconds from the beginning of the video.",
			},
			"summary": {
				Type:        genai.TypeString,
				Description: "A concise description of the scene for a visually impaired listener.",
			},
		},
		Required:         []string{"timestamp", "summary"},
		PropertyOrdering: []string{"timestamp", "summary"},
	},
}

var safetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockLowAndAbove},
}

func generateConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    sceneListSchema,
		SafetySettings:    safetySettings,
	}
}
