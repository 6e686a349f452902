package synthesis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/eleven-am/sightguide/internal/media"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	resp     *genai.GenerateContentResponse
	err      error
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	f.config = config
	return f.resp, f.err
}

func audioResponse(mimeType string, data []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}}}},
	}}}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(&fakeGenerator{}, Config{}, testLogger())
	if c.Model() != DefaultModel {
		t.Errorf("expected model %s, got %s", DefaultModel, c.Model())
	}
	if c.voice != DefaultVoice {
		t.Errorf("expected voice %s, got %s", DefaultVoice, c.voice)
	}
	if c.timeout != defaultTimeout {
		t.Errorf("expected timeout %v, got %v", defaultTimeout, c.timeout)
	}
}

func TestNewClient_Custom(t *testing.T) {
	c := NewClient(&fakeGenerator{}, Config{Model: "tts-x", Voice: "Kore", Timeout: time.Second}, testLogger())
	if c.model != "tts-x" || c.voice != "Kore" || c.timeout != time.Second {
		t.Errorf("unexpected client config %+v", c)
	}
}

func TestClient_Synthesize_Success(t *testing.T) {
	pcm := []byte{1, 0, 2, 0}
	gen := &fakeGenerator{resp: audioResponse("audio/L16;codec=pcm;rate=24000", pcm)}
	c := NewClient(gen, Config{}, testLogger())

	m, err := c.Synthesize(context.Background(), Request{Text: "  A dog runs.  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m == nil {
		t.Fatal("expected media")
	}
	if !strings.HasPrefix(m.URL, "data:audio/L16;codec=pcm;rate=24000;base64,") {
		t.Errorf("unexpected url %s", m.URL)
	}
	got, err := media.DecodePayload(m.URL)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if string(got) != string(pcm) {
		t.Errorf("expected %v, got %v", pcm, got)
	}

	if gen.model != DefaultModel {
		t.Errorf("expected model %s, got %s", DefaultModel, gen.model)
	}
	if gen.contents[0].Parts[0].Text != "A dog runs." {
		t.Errorf("expected trimmed text prompt, got %q", gen.contents[0].Parts[0].Text)
	}
	if len(gen.config.ResponseModalities) != 1 || gen.config.ResponseModalities[0] != "AUDIO" {
		t.Errorf("expected AUDIO modality, got %v", gen.config.ResponseModalities)
	}
	if name := gen.config.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName; name != DefaultVoice {
		t.Errorf("expected voice %s, got %s", DefaultVoice, name)
	}
}

func TestClient_Synthesize_RequestOverrides(t *testing.T) {
	gen := &fakeGenerator{resp: audioResponse("audio/pcm", []byte{0, 0})}
	c := NewClient(gen, Config{}, testLogger())

	if _, err := c.Synthesize(context.Background(), Request{Text: "hi", VoiceID: "Puck", ModelID: "tts-pro"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.model != "tts-pro" {
		t.Errorf("expected model override, got %s", gen.model)
	}
	if name := gen.config.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName; name != "Puck" {
		t.Errorf("expected voice override, got %s", name)
	}
}

func TestClient_Synthesize_NoAudio(t *testing.T) {
	gen := &fakeGenerator{resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content:      &genai.Content{Parts: []*genai.Part{{Text: "I cannot do that"}}},
		FinishReason: genai.FinishReasonOther,
	}}}}
	c := NewClient(gen, Config{}, testLogger())

	m, err := c.Synthesize(context.Background(), Request{Text: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m != nil {
		t.Errorf("expected nil media, got %+v", m)
	}
}

func TestClient_Synthesize_DefaultContentType(t *testing.T) {
	gen := &fakeGenerator{resp: audioResponse("", []byte{0, 0})}
	c := NewClient(gen, Config{}, testLogger())

	m, err := c.Synthesize(context.Background(), Request{Text: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ContentType != "audio/L16;codec=pcm;rate=24000" {
		t.Errorf("unexpected content type %s", m.ContentType)
	}
}

func TestClient_Synthesize_Errors(t *testing.T) {
	upstream := errors.New("Error 503, Message: unavailable")

	tests := []struct {
		name    string
		text    string
		gen     *fakeGenerator
		wantErr error
	}{
		{"empty text", "   ", &fakeGenerator{}, ErrEmptyText},
		{"too long", strings.Repeat("a", maxInputLength+1), &fakeGenerator{}, ErrTextTooLong},
		{"upstream", "hello", &fakeGenerator{err: upstream}, upstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(tt.gen, Config{}, testLogger())
			_, err := c.Synthesize(context.Background(), Request{Text: tt.text})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
