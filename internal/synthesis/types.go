package synthesis

import "time"

type Config struct {
	Model   string
	Voice   string
	Timeout time.Duration
}

type Request struct {
	Text    string
	VoiceID string
	ModelID string
}

// Media is synthesized audio addressed by a data URI, e.g. data:audio/L16;codec=pcm;rate=24000;base64,...
type Media struct {
	URL         string
	ContentType string
}
