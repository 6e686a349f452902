package scene

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/eleven-am/sightguide/internal/audio"
	"github.com/eleven-am/sightguide/internal/media"
	"github.com/eleven-am/sightguide/internal/metrics"
	"github.com/eleven-am/sightguide/internal/shared"
	"github.com/labstack/echo/v4"
)

// Guard serializes analyses per client.
type Guard interface {
	Acquire(ctx context.Context, clientKey string) (func(), error)
}

// Recorder keeps usage counters; failures to record never fail a request.
type Recorder interface {
	RecordAnalysis(ctx context.Context, stage shared.Stage, scenes int, latency time.Duration, failed bool) error
	RecordRejection(ctx context.Context) error
}

type Handler struct {
	pipeline *Pipeline
	guard    Guard
	recorder Recorder
	logger   *slog.Logger
}

func NewHandler(pipeline *Pipeline, guard Guard, recorder Recorder, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		pipeline: pipeline,
		guard:    guard,
		recorder: recorder,
		logger:   logger.With("handler", "scene"),
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/videos/summaries", h.Summarize)
	g.POST("/videos/navigation", h.Navigate)
	g.POST("/audio/narration", h.Narrate)
}

type SummarizeRequest struct {
	VideoDataURI string `json:"video_data_uri" example:"data:video/mp4;base64,AAAAIGZ0eXBpc29t"`
}

type NavigateRequest struct {
	VideoDataURI string `json:"video_data_uri" example:"data:video/mp4;base64,AAAAIGZ0eXBpc29t"`
	// NumberOfSummaries defaults to 10 when omitted.
	NumberOfSummaries *int `json:"number_of_summaries,omitempty" example:"10"`
}

type NarrateRequest struct {
	Text string `json:"text" example:"A dog runs across a sunny park."`
}

type NarrateResponse struct {
	AudioDataURI string `json:"audio_data_uri" example:"data:audio/wav;base64,UklGRiQAAABXQVZF"`
}

// Summarize godoc
// @Summary      Summarize a video in three scenes
// @Description  Describes three consecutive ten second segments and narrates each one. Accepts a JSON data URI or a multipart "file" upload. Any failure aborts the whole request.
// @Tags         videos
// @Accept       json
// @Accept       multipart/form-data
// @Produce      json
// @Param        request  body      SummarizeRequest  false  "Video as a base64 data URI"
// @Param        file     formData  file              false  "Video file"
// @Success      200      {object}  AnalysisResult
// @Failure      400      {object}  shared.APIError
// @Failure      409      {object}  shared.APIError
// @Failure      413      {object}  shared.APIError
// @Failure      422      {object}  shared.APIError
// @Failure      502      {object}  shared.APIError
// @Router       /videos/summaries [post]
func (h *Handler) Summarize(c echo.Context) error {
	var req SummarizeRequest
	video, err := h.readVideo(c, &req, func() string { return req.VideoDataURI })
	if err != nil {
		return err
	}

	release, err := h.acquire(c)
	if err != nil {
		return err
	}
	defer release()

	ctx := c.Request().Context()
	start := time.Now()
	result, err := h.pipeline.SummarizeVideo(ctx, video)
	h.record(ctx, shared.StageSummarize, result.count(), start, err)
	if err != nil {
		return h.toHTTP(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Navigate godoc
// @Summary      Pick the most important scenes of a video
// @Description  Lets the model choose number_of_summaries scenes with their real timestamps and narrates each one. A count of zero returns an empty list. Pass order=timestamp to sort the result.
// @Tags         videos
// @Accept       json
// @Accept       multipart/form-data
// @Produce      json
// @Param        request              body      NavigateRequest  false  "Video as a base64 data URI"
// @Param        file                 formData  file             false  "Video file"
// @Param        number_of_summaries  formData  int              false  "Scene count for multipart uploads"
// @Param        order                query     string           false  "Set to timestamp to sort by time"
// @Success      200                  {array}   Summary
// @Failure      400                  {object}  shared.APIError
// @Failure      409                  {object}  shared.APIError
// @Failure      413                  {object}  shared.APIError
// @Failure      422                  {object}  shared.APIError
// @Failure      502                  {object}  shared.APIError
// @Router       /videos/navigation [post]
func (h *Handler) Navigate(c echo.Context) error {
	var req NavigateRequest
	video, err := h.readVideo(c, &req, func() string { return req.VideoDataURI })
	if err != nil {
		return err
	}

	count := DefaultNavigationCount
	if req.NumberOfSummaries != nil {
		count = *req.NumberOfSummaries
	} else if v := formValue(c, "number_of_summaries"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return shared.BadRequest("invalid_count", "number_of_summaries must be an integer")
		}
		count = n
	}
	if err := validateCount(count); err != nil {
		return shared.BadRequest("invalid_count", err.Error())
	}
	if count == 0 {
		return c.JSON(http.StatusOK, []Summary{})
	}

	release, err := h.acquire(c)
	if err != nil {
		return err
	}
	defer release()

	ctx := c.Request().Context()
	start := time.Now()
	summaries, err := h.pipeline.NavigateVideo(ctx, video, count)
	h.record(ctx, shared.StageNavigate, len(summaries), start, err)
	if err != nil {
		return h.toHTTP(c, err)
	}

	if c.QueryParam("order") == "timestamp" {
		summaries = SortByTimestamp(summaries)
	}
	return c.JSON(http.StatusOK, summaries)
}

// Narrate godoc
// @Summary      Narrate text
// @Description  Synthesizes speech for the text and returns it as a WAV data URI.
// @Tags         audio
// @Accept       json
// @Produce      json
// @Param        request  body      NarrateRequest  true  "Text to speak"
// @Success      200      {object}  NarrateResponse
// @Failure      400      {object}  shared.APIError
// @Failure      413      {object}  shared.APIError
// @Failure      422      {object}  shared.APIError
// @Failure      502      {object}  shared.APIError
// @Router       /audio/narration [post]
func (h *Handler) Narrate(c echo.Context) error {
	var req NarrateRequest
	if err := c.Bind(&req); err != nil {
		if tooLarge := bodyLimitError(err); tooLarge != nil {
			return tooLarge
		}
		return shared.BadRequest("invalid_request", "invalid request body")
	}

	ctx := c.Request().Context()
	start := time.Now()
	uri, err := h.pipeline.Narrate(ctx, req.Text)
	h.record(ctx, shared.StageNarrate, 0, start, err)
	if err != nil {
		return h.toHTTP(c, err)
	}
	return c.JSON(http.StatusOK, NarrateResponse{AudioDataURI: uri})
}

func (h *Handler) readVideo(c echo.Context, req any, dataURI func() string) (media.Video, error) {
	if isMultipart(c) {
		file, err := c.FormFile("file")
		if err != nil {
			if tooLarge := bodyLimitError(err); tooLarge != nil {
				return media.Video{}, tooLarge
			}
			return media.Video{}, shared.BadRequest("missing_video", "multipart field file is required")
		}
		if file.Size > media.MaxVideoBytes {
			return media.Video{}, shared.TooLarge("video_too_large", fmt.Sprintf("video exceeds %d bytes", media.MaxVideoBytes))
		}
		f, err := file.Open()
		if err != nil {
			return media.Video{}, shared.BadRequest("invalid_upload", "failed to read uploaded file")
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, media.MaxVideoBytes+1))
		if err != nil {
			return media.Video{}, shared.BadRequest("invalid_upload", "failed to read uploaded file")
		}
		video, err := media.NewVideo(data, file.Header.Get("Content-Type"))
		if err != nil {
			return media.Video{}, videoError(err)
		}
		return video, nil
	}

	if err := c.Bind(req); err != nil {
		if tooLarge := bodyLimitError(err); tooLarge != nil {
			return media.Video{}, tooLarge
		}
		return media.Video{}, shared.BadRequest("invalid_request", "invalid request body")
	}
	if dataURI() == "" {
		return media.Video{}, shared.BadRequest("missing_video", "video_data_uri or file is required")
	}

	video, err := media.ParseVideo(dataURI())
	if err != nil {
		return media.Video{}, videoError(err)
	}
	return video, nil
}

func (h *Handler) acquire(c echo.Context) (func(), error) {
	metrics.InFlightAnalyses.Inc()
	if h.guard == nil {
		return metrics.InFlightAnalyses.Dec, nil
	}

	release, err := h.guard.Acquire(c.Request().Context(), c.RealIP())
	if err != nil {
		metrics.InFlightAnalyses.Dec()
		metrics.GuardRejectionsTotal.Inc()
		if h.recorder != nil {
			if rerr := h.recorder.RecordRejection(context.WithoutCancel(c.Request().Context())); rerr != nil {
				h.logger.Warn("failed to record guard rejection", "error", rerr)
			}
		}
		return nil, shared.Conflict("analysis_in_progress", "an analysis is already running for this client")
	}
	return func() {
		release()
		metrics.InFlightAnalyses.Dec()
	}, nil
}

func (h *Handler) record(ctx context.Context, stage shared.Stage, scenes int, start time.Time, err error) {
	if h.recorder == nil {
		return
	}
	if rerr := h.recorder.RecordAnalysis(context.WithoutCancel(ctx), stage, scenes, time.Since(start), err != nil); rerr != nil {
		h.logger.Warn("failed to record analysis", "stage", stage.String(), "error", rerr)
	}
}

func (h *Handler) toHTTP(c echo.Context, err error) error {
	switch {
	case errors.Is(err, media.ErrTooLarge):
		return shared.TooLarge("video_too_large", err.Error())
	case errors.Is(err, ErrInvalidInput):
		return shared.BadRequest("invalid_input", err.Error())
	case errors.Is(err, audio.ErrMalformedAudio), errors.Is(err, audio.ErrInvalidFormat):
		return shared.Unprocessable("malformed_audio", err.Error())
	case errors.Is(err, ErrSummarizationFailed):
		return shared.BadGateway("summarization_failed", err.Error())
	case errors.Is(err, ErrSynthesisFailed):
		return shared.BadGateway("synthesis_failed", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return shared.NewAPIError("upstream_timeout", "the generation service timed out").ToHTTP(http.StatusGatewayTimeout)
	case errors.Is(err, ErrUpstream):
		return shared.BadGateway("upstream_error", "the generation service failed")
	default:
		h.logger.Error("unexpected analysis error", "path", c.Path(), "error", err)
		return shared.InternalError("analysis_failed", "analysis failed")
	}
}

// bodyLimitError returns a 413 when a body limit cut the read short, which
// happens for chunked uploads that carry no Content-Length.
func bodyLimitError(err error) error {
	var maxErr *http.MaxBytesError
	if !errors.As(err, &maxErr) {
		return nil
	}
	return shared.TooLarge("request_too_large", fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

func formValue(c echo.Context, name string) string {
	if !isMultipart(c) {
		return ""
	}
	return c.FormValue(name)
}

func videoError(err error) error {
	if errors.Is(err, media.ErrTooLarge) {
		return shared.TooLarge("video_too_large", err.Error())
	}
	return shared.BadRequest("invalid_video", err.Error())
}

func (r *AnalysisResult) count() int {
	if r == nil {
		return 0
	}
	return len(r.Summaries)
}
