package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/eleven-am/sightguide/internal/shared"
	"github.com/labstack/echo/v4"
)

const (
	maxPCMSize     = 64 * 1024 * 1024
	initialBufSize = 64 * 1024
)

var audioBufferPool = sync.Pool{
	New: func() any {
		b := &bytes.Buffer{}
		b.Grow(initialBufSize)
		return b
	},
}

type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger: logger.With("handler", "audio"),
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/wav", h.HandleEncode)
	g.POST("/wav/inspect", h.HandleInspect)
}

type InspectResponse struct {
	Format     Format  `json:"format"`
	DataBytes  int     `json:"data_bytes"`
	DurationMs int64   `json:"duration_ms"`
	Peak       float64 `json:"peak,omitempty"`
}

// HandleEncode wraps raw PCM in a WAV container
// @Summary      Encode PCM as WAV
// @Description  Wraps little-endian PCM from the request body in a 44-byte RIFF/WAVE header. Defaults to mono, 24000 Hz, 16-bit. Optionally resamples 16-bit input to target_rate first.
// @Tags         audio
// @Accept       application/octet-stream
// @Produce      audio/wav
// @Param        channels query int false "Channel count" default(1)
// @Param        sample_rate query int false "Sample rate in Hz" default(24000)
// @Param        sample_width query int false "Bytes per sample (1, 2 or 4)" default(2)
// @Param        target_rate query int false "Resample 16-bit PCM to this rate before wrapping"
// @Success      200 {file} binary "WAV audio"
// @Failure      400 {object} shared.APIError "Invalid format parameters"
// @Failure      413 {object} shared.APIError "Body too large"
// @Failure      422 {object} shared.APIError "PCM length not a multiple of the block size"
// @Router       /audio/wav [post]
func (h *Handler) HandleEncode(c echo.Context) error {
	f, err := formatFromQuery(c)
	if err != nil {
		return err
	}

	buf := audioBufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer audioBufferPool.Put(buf)

	if err := readLimited(buf, c.Request().Body, maxPCMSize); err != nil {
		return err
	}
	pcm := buf.Bytes()

	if raw := c.QueryParam("target_rate"); raw != "" {
		target, err := strconv.Atoi(raw)
		if err != nil {
			return shared.BadRequest("invalid_target_rate", "target_rate must be an integer")
		}
		pcm, f, err = Resample(pcm, f, target)
		if err != nil {
			return h.encodeError(err)
		}
	}

	wav, err := Encode(pcm, f)
	if err != nil {
		return h.encodeError(err)
	}

	c.Response().Header().Set("X-Audio-Duration-Ms", strconv.FormatInt(f.Duration(len(pcm)).Milliseconds(), 10))
	return c.Blob(http.StatusOK, MIMEType, wav)
}

// HandleInspect reports the format of a WAV container
// @Summary      Inspect WAV
// @Description  Parses a canonical 44-byte-header WAV from the request body and reports its format, duration and peak level.
// @Tags         audio
// @Accept       audio/wav
// @Produce      json
// @Success      200 {object} InspectResponse "WAV properties"
// @Failure      413 {object} shared.APIError "Body too large"
// @Failure      422 {object} shared.APIError "Not a canonical PCM WAV"
// @Router       /audio/wav/inspect [post]
func (h *Handler) HandleInspect(c echo.Context) error {
	buf := audioBufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer audioBufferPool.Put(buf)

	if err := readLimited(buf, c.Request().Body, maxPCMSize+HeaderSize); err != nil {
		return err
	}

	pcm, f, err := Decode(buf.Bytes())
	if err != nil {
		return h.encodeError(err)
	}

	resp := InspectResponse{
		Format:     f,
		DataBytes:  len(pcm),
		DurationMs: f.Duration(len(pcm)).Milliseconds(),
	}
	if f.SampleWidth == 2 {
		resp.Peak = Peak(pcm)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) encodeError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidFormat):
		return shared.BadRequest("invalid_format", err.Error())
	case errors.Is(err, ErrMalformedAudio):
		return shared.Unprocessable("malformed_audio", err.Error())
	default:
		h.logger.Error("wav encoding failed", "error", err)
		return shared.InternalError("encode_failed", "Failed to encode audio")
	}
}

func formatFromQuery(c echo.Context) (Format, error) {
	f := DefaultFormat()
	params := []struct {
		name string
		dst  *int
	}{
		{"channels", &f.Channels},
		{"sample_rate", &f.SampleRate},
		{"sample_width", &f.SampleWidth},
	}

	for _, p := range params {
		raw := c.QueryParam(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return Format{}, shared.BadRequest("invalid_"+p.name, fmt.Sprintf("%s must be an integer", p.name))
		}
		*p.dst = v
	}

	if err := f.Validate(); err != nil {
		return Format{}, shared.BadRequest("invalid_format", err.Error())
	}
	return f, nil
}

func readLimited(buf *bytes.Buffer, body io.Reader, limit int64) error {
	n, err := buf.ReadFrom(io.LimitReader(body, limit+1))
	if err != nil {
		return shared.BadRequest("invalid_body", "Failed to read request body")
	}
	if n > limit {
		return shared.TooLarge("body_too_large", fmt.Sprintf("Body exceeds maximum size of %d bytes", limit))
	}
	return nil
}
