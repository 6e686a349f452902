package scene

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/eleven-am/sightguide/internal/media"
	"github.com/eleven-am/sightguide/internal/shared"
	"github.com/eleven-am/sightguide/internal/synthesis"
	"github.com/eleven-am/sightguide/internal/vision"
	"github.com/labstack/echo/v4"
)

type fakeGuard struct {
	mu       sync.Mutex
	held     map[string]bool
	released int
}

func (g *fakeGuard) Acquire(_ context.Context, key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held == nil {
		g.held = make(map[string]bool)
	}
	if g.held[key] {
		return nil, errors.New("busy")
	}
	g.held[key] = true
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.held, key)
		g.released++
	}, nil
}

type recordCall struct {
	stage  shared.Stage
	scenes int
	failed bool
}

type fakeRecorder struct {
	calls      []recordCall
	rejections int
	err        error
}

func (r *fakeRecorder) RecordAnalysis(_ context.Context, stage shared.Stage, scenes int, _ time.Duration, failed bool) error {
	r.calls = append(r.calls, recordCall{stage, scenes, failed})
	return r.err
}

func (r *fakeRecorder) RecordRejection(context.Context) error {
	r.rejections++
	return r.err
}

func newTestHandler(describer *fakeDescriber, synth *fakeSynth) (*Handler, *fakeGuard, *fakeRecorder) {
	guard := &fakeGuard{}
	recorder := &fakeRecorder{}
	p := NewPipeline(describer, synth, Config{}, nil)
	return NewHandler(p, guard, recorder, nil), guard, recorder
}

func jsonContext(t *testing.T, target string, body any) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(data))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func assertHTTPError(t *testing.T, err error, status int, code string) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	if he.Code != status {
		t.Errorf("expected status %d, got %d", status, he.Code)
	}
	apiErr, ok := he.Message.(*shared.APIError)
	if !ok {
		t.Fatalf("expected *shared.APIError, got %T", he.Message)
	}
	if apiErr.Code != code {
		t.Errorf("expected code %s, got %s", code, apiErr.Code)
	}
}

func TestHandler_RegisterRoutes(t *testing.T) {
	h, _, _ := newTestHandler(&fakeDescriber{}, &fakeSynth{})
	e := echo.New()
	h.RegisterRoutes(e.Group("/api/v1"))

	paths := make(map[string]bool)
	for _, r := range e.Routes() {
		paths[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"POST /api/v1/videos/summaries",
		"POST /api/v1/videos/navigation",
		"POST /api/v1/audio/narration",
	} {
		if !paths[want] {
			t.Errorf("expected route %s", want)
		}
	}
}

func TestHandler_Summarize(t *testing.T) {
	h, guard, recorder := newTestHandler(&fakeDescriber{scenes: threeScenes()}, &fakeSynth{})
	c, rec := jsonContext(t, "/api/v1/videos/summaries", SummarizeRequest{VideoDataURI: videoURI(t)})

	if err := h.Summarize(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp AnalysisResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Summaries) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(resp.Summaries))
	}
	for i, s := range resp.Summaries {
		if s.Timestamp != float64(i*10) {
			t.Errorf("summary %d: expected timestamp %d, got %v", i, i*10, s.Timestamp)
		}
		if !strings.HasPrefix(s.Narration, "data:audio/wav;base64,") {
			t.Errorf("summary %d: unexpected narration prefix", i)
		}
	}

	if guard.released != 1 {
		t.Errorf("expected guard to be released once, got %d", guard.released)
	}
	if len(recorder.calls) != 1 || recorder.calls[0] != (recordCall{shared.StageSummarize, 3, false}) {
		t.Errorf("unexpected recorder calls: %+v", recorder.calls)
	}
}

func TestHandler_SummarizeMultipart(t *testing.T) {
	h, _, _ := newTestHandler(&fakeDescriber{scenes: threeScenes()}, &fakeSynth{})

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="clip.webm"`)
	header.Set("Content-Type", "video/webm")
	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("webm bytes"))
	w.Close()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/summaries", body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Summarize(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := h.pipeline.describer.(*fakeDescriber).last.Video.MIMEType; got != "video/webm" {
		t.Errorf("expected video/webm, got %s", got)
	}
}

func TestHandler_SummarizeErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		describer  *fakeDescriber
		synth      *fakeSynth
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing video",
			body:       SummarizeRequest{},
			describer:  &fakeDescriber{},
			synth:      &fakeSynth{},
			wantStatus: http.StatusBadRequest,
			wantCode:   "missing_video",
		},
		{
			name:       "not a data uri",
			body:       SummarizeRequest{VideoDataURI: "https://example.com/video.mp4"},
			describer:  &fakeDescriber{},
			synth:      &fakeSynth{},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_video",
		},
		{
			name:       "summarization failed",
			body:       SummarizeRequest{VideoDataURI: videoURI(t)},
			describer:  &fakeDescriber{err: vision.ErrEmptyResponse},
			synth:      &fakeSynth{},
			wantStatus: http.StatusBadGateway,
			wantCode:   "summarization_failed",
		},
		{
			name:       "synthesis failed",
			body:       SummarizeRequest{VideoDataURI: videoURI(t)},
			describer:  &fakeDescriber{scenes: threeScenes()},
			synth:      &fakeSynth{media: func(string) *synthesis.Media { return nil }},
			wantStatus: http.StatusBadGateway,
			wantCode:   "synthesis_failed",
		},
		{
			name:       "upstream failure",
			body:       SummarizeRequest{VideoDataURI: videoURI(t)},
			describer:  &fakeDescriber{err: errors.New("dial tcp: refused")},
			synth:      &fakeSynth{},
			wantStatus: http.StatusBadGateway,
			wantCode:   "upstream_error",
		},
		{
			name:       "upstream timeout",
			body:       SummarizeRequest{VideoDataURI: videoURI(t)},
			describer:  &fakeDescriber{err: context.DeadlineExceeded},
			synth:      &fakeSynth{},
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   "upstream_timeout",
		},
		{
			name:      "malformed audio",
			body:      SummarizeRequest{VideoDataURI: videoURI(t)},
			describer: &fakeDescriber{scenes: threeScenes()},
			synth: &fakeSynth{media: func(string) *synthesis.Media {
				return pcmMedia([]byte{0x01})
			}},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "malformed_audio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, guard, _ := newTestHandler(tt.describer, tt.synth)
			c, _ := jsonContext(t, "/api/v1/videos/summaries", tt.body)

			err := h.Summarize(c)
			assertHTTPError(t, err, tt.wantStatus, tt.wantCode)
			if len(guard.held) != 0 {
				t.Error("guard must be released after a failure")
			}
		})
	}
}

func TestHandler_SummarizeTooLarge(t *testing.T) {
	h, _, _ := newTestHandler(&fakeDescriber{}, &fakeSynth{})
	huge := "data:video/mp4;base64," + strings.Repeat("A", (media.MaxVideoBytes/3+10)*4)
	c, _ := jsonContext(t, "/api/v1/videos/summaries", SummarizeRequest{VideoDataURI: huge})

	assertHTTPError(t, h.Summarize(c), http.StatusRequestEntityTooLarge, "video_too_large")
}

func TestHandler_InFlightGuard(t *testing.T) {
	h, guard, recorder := newTestHandler(&fakeDescriber{scenes: threeScenes()}, &fakeSynth{})
	c, _ := jsonContext(t, "/api/v1/videos/summaries", SummarizeRequest{VideoDataURI: videoURI(t)})

	guard.held = map[string]bool{c.RealIP(): true}

	assertHTTPError(t, h.Summarize(c), http.StatusConflict, "analysis_in_progress")
	if recorder.rejections != 1 {
		t.Errorf("expected 1 recorded rejection, got %d", recorder.rejections)
	}
	if len(recorder.calls) != 0 {
		t.Errorf("expected no analysis recorded, got %+v", recorder.calls)
	}
}

func TestHandler_BodyOverLimit(t *testing.T) {
	h, _, _ := newTestHandler(&fakeDescriber{scenes: threeScenes()}, &fakeSynth{})

	t.Run("json", func(t *testing.T) {
		body, err := json.Marshal(SummarizeRequest{VideoDataURI: videoURI(t)})
		if err != nil {
			t.Fatal(err)
		}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/summaries", bytes.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		req.Body = http.MaxBytesReader(rec, req.Body, 8)
		c := echo.New().NewContext(req, rec)

		assertHTTPError(t, h.Summarize(c), http.StatusRequestEntityTooLarge, "request_too_large")
	})

	t.Run("multipart", func(t *testing.T) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		part, err := w.CreateFormFile("file", "clip.mp4")
		if err != nil {
			t.Fatal(err)
		}
		part.Write(bytes.Repeat([]byte{0}, 4096))
		w.Close()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/summaries", &buf)
		req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
		rec := httptest.NewRecorder()
		req.Body = http.MaxBytesReader(rec, req.Body, 64)
		c := echo.New().NewContext(req, rec)

		assertHTTPError(t, h.Summarize(c), http.StatusRequestEntityTooLarge, "request_too_large")
	})
}

func TestHandler_Navigate(t *testing.T) {
	scenes := []vision.SceneDescription{
		{Timestamp: 30, Summary: "Later."},
		{Timestamp: 5, Summary: "Earlier."},
	}

	t.Run("keeps generation order", func(t *testing.T) {
		h, _, _ := newTestHandler(&fakeDescriber{scenes: scenes}, &fakeSynth{})
		count := 2
		c, rec := jsonContext(t, "/api/v1/videos/navigation", NavigateRequest{VideoDataURI: videoURI(t), NumberOfSummaries: &count})

		if err := h.Navigate(c); err != nil {
			t.Fatal(err)
		}
		var resp []Summary
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if len(resp) != 2 || resp[0].Text != "Later." {
			t.Errorf("unexpected response: %+v", resp)
		}
	})

	t.Run("sorts on request", func(t *testing.T) {
		h, _, _ := newTestHandler(&fakeDescriber{scenes: scenes}, &fakeSynth{})
		count := 2
		c, rec := jsonContext(t, "/api/v1/videos/navigation?order=timestamp", NavigateRequest{VideoDataURI: videoURI(t), NumberOfSummaries: &count})

		if err := h.Navigate(c); err != nil {
			t.Fatal(err)
		}
		var resp []Summary
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if len(resp) != 2 || resp[0].Text != "Earlier." {
			t.Errorf("unexpected response: %+v", resp)
		}
	})

	t.Run("defaults to ten", func(t *testing.T) {
		describer := &fakeDescriber{err: errors.New("stop here")}
		h, _, _ := newTestHandler(describer, &fakeSynth{})
		c, _ := jsonContext(t, "/api/v1/videos/navigation", NavigateRequest{VideoDataURI: videoURI(t)})

		_ = h.Navigate(c)
		if describer.last.Count != DefaultNavigationCount {
			t.Errorf("expected count %d, got %d", DefaultNavigationCount, describer.last.Count)
		}
	})

	t.Run("zero returns empty list", func(t *testing.T) {
		describer := &fakeDescriber{}
		h, _, recorder := newTestHandler(describer, &fakeSynth{})
		zero := 0
		c, rec := jsonContext(t, "/api/v1/videos/navigation", NavigateRequest{VideoDataURI: videoURI(t), NumberOfSummaries: &zero})

		if err := h.Navigate(c); err != nil {
			t.Fatal(err)
		}
		if strings.TrimSpace(rec.Body.String()) != "[]" {
			t.Errorf("expected empty array, got %s", rec.Body.String())
		}
		if describer.calls.Load() != 0 || len(recorder.calls) != 0 {
			t.Error("zero count must not call the model")
		}
	})

	t.Run("negative count", func(t *testing.T) {
		h, _, _ := newTestHandler(&fakeDescriber{}, &fakeSynth{})
		neg := -2
		c, _ := jsonContext(t, "/api/v1/videos/navigation", NavigateRequest{VideoDataURI: videoURI(t), NumberOfSummaries: &neg})

		assertHTTPError(t, h.Navigate(c), http.StatusBadRequest, "invalid_count")
	})
}

func TestHandler_Narrate(t *testing.T) {
	h, _, recorder := newTestHandler(&fakeDescriber{}, &fakeSynth{})
	c, rec := jsonContext(t, "/api/v1/audio/narration", NarrateRequest{Text: "hello there"})

	if err := h.Narrate(c); err != nil {
		t.Fatal(err)
	}
	var resp NarrateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(resp.AudioDataURI, "data:audio/wav;base64,") {
		t.Errorf("unexpected uri %q", resp.AudioDataURI)
	}
	if len(recorder.calls) != 1 || recorder.calls[0].stage != shared.StageNarrate {
		t.Errorf("unexpected recorder calls: %+v", recorder.calls)
	}

	c, _ = jsonContext(t, "/api/v1/audio/narration", NarrateRequest{})
	assertHTTPError(t, h.Narrate(c), http.StatusBadRequest, "invalid_input")
}

func TestHandler_RecorderErrorDoesNotFailRequest(t *testing.T) {
	h, _, recorder := newTestHandler(&fakeDescriber{}, &fakeSynth{})
	recorder.err = errors.New("redis down")
	c, rec := jsonContext(t, "/api/v1/audio/narration", NarrateRequest{Text: "hi"})

	if err := h.Narrate(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
