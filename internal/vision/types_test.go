package vision

import (
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	tests := []struct {
		name string
		req  DescribeRequest
		want []string
	}{
		{
			name: "navigation",
			req:  DescribeRequest{Count: 10},
			want: []string{"10 most important scenes", "exactly 10 items"},
		},
		{
			name: "fixed interval",
			req:  DescribeRequest{Count: 3, Interval: 10},
			want: []string{"3 consecutive segments of 10 seconds", "exactly 3 items"},
		},
		{
			name: "fractional interval",
			req:  DescribeRequest{Count: 2, Interval: 2.5},
			want: []string{"segments of 2.5 seconds"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt := buildPrompt(tt.req)
			for _, w := range tt.want {
				if !strings.Contains(prompt, w) {
					t.Errorf("prompt %q missing %q", prompt, w)
				}
			}
		})
	}
}

func TestGenerateConfig(t *testing.T) {
	cfg := generateConfig()
	if cfg.ResponseSchema == nil || cfg.ResponseSchema.Items == nil {
		t.Fatal("expected array response schema")
	}
	required := cfg.ResponseSchema.Items.Required
	if len(required) != 2 || required[0] != "timestamp" || required[1] != "summary" {
		t.Errorf("unexpected required fields %v", required)
	}
	if cfg.SystemInstruction == nil {
		t.Error("expected system instruction")
	}
}

func TestParseScenes(t *testing.T) {
	scenes, err := parseScenes(`[]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scenes) != 0 {
		t.Errorf("expected no scenes, got %d", len(scenes))
	}
}
