package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/eleven-am/sightguide/internal/audio"
	"github.com/eleven-am/sightguide/internal/gemini"
	"github.com/eleven-am/sightguide/internal/media"
	"github.com/eleven-am/sightguide/internal/scene"
	"github.com/eleven-am/sightguide/internal/synthesis"
	"github.com/eleven-am/sightguide/internal/vision"
	"github.com/joho/godotenv"
)

type CLI struct {
	Summarize SummarizeCmd `cmd:"" help:"Describe three ten second scenes of a video and narrate them."`
	Navigate  NavigateCmd  `cmd:"" help:"Let the model pick the most important scenes and narrate them."`
	Encode    EncodeCmd    `cmd:"" help:"Wrap a raw PCM file in a WAV container."`
}

type GeminiFlags struct {
	APIKeys     []string      `name:"api-key" env:"GEMINI_API_KEY" required:"" help:"Gemini API key; repeat to rotate across keys."`
	VisionModel string        `default:"gemini-2.5-flash" help:"Model used to describe scenes."`
	SpeechModel string        `default:"gemini-2.5-flash-preview-tts" help:"Model used for speech."`
	Voice       string        `default:"Algenib" help:"Prebuilt voice name."`
	Concurrency int           `short:"j" default:"1" help:"Scenes narrated in parallel."`
	Timeout     time.Duration `default:"5m" help:"Overall deadline."`
	OutDir      string        `short:"o" type:"path" help:"Also write one WAV file per scene into this directory."`
	LogLevel    string        `short:"l" default:"warn" enum:"debug,info,warn,error" help:"Log level."`
}

type SummarizeCmd struct {
	Video string `arg:"" type:"existingfile" help:"Video file to summarize."`
	GeminiFlags
}

type NavigateCmd struct {
	Video string `arg:"" type:"existingfile" help:"Video file to navigate."`
	Count int    `short:"n" default:"10" help:"Number of scenes."`
	Order string `default:"generation" enum:"generation,timestamp" help:"Output order."`
	GeminiFlags
}

type EncodeCmd struct {
	PCM         string `arg:"" type:"existingfile" help:"Raw little-endian PCM file."`
	Output      string `short:"o" required:"" type:"path" help:"Output WAV file."`
	Channels    int    `default:"1" help:"Channel count."`
	SampleRate  int    `default:"24000" help:"Sample rate in Hz."`
	SampleWidth int    `default:"2" help:"Bytes per sample."`
}

func main() {
	_ = godotenv.Load()

	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("narrate"),
		kong.Description("Scene summaries with spoken narration, from the command line."),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

func (cmd *SummarizeCmd) Run() error {
	ctx, cancel := cmd.context()
	defer cancel()

	pipeline, video, err := cmd.setup(ctx, cmd.Video)
	if err != nil {
		return err
	}

	result, err := pipeline.SummarizeVideo(ctx, video)
	if err != nil {
		return err
	}
	if err := writeScenes(cmd.OutDir, result.Summaries); err != nil {
		return err
	}
	return printJSON(result)
}

func (cmd *NavigateCmd) Run() error {
	ctx, cancel := cmd.context()
	defer cancel()

	pipeline, video, err := cmd.setup(ctx, cmd.Video)
	if err != nil {
		return err
	}

	summaries, err := pipeline.NavigateVideo(ctx, video, cmd.Count)
	if err != nil {
		return err
	}
	if cmd.Order == "timestamp" {
		summaries = scene.SortByTimestamp(summaries)
	}
	if err := writeScenes(cmd.OutDir, summaries); err != nil {
		return err
	}
	return printJSON(summaries)
}

func (cmd *EncodeCmd) Run() error {
	pcm, err := os.ReadFile(cmd.PCM)
	if err != nil {
		return fmt.Errorf("read pcm: %w", err)
	}

	format := audio.Format{Channels: cmd.Channels, SampleRate: cmd.SampleRate, SampleWidth: cmd.SampleWidth}
	wav, err := audio.Encode(pcm, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cmd.Output, wav, 0o644); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}

	fmt.Fprintf(os.Stderr, "wrote %s (%d bytes, %s)\n", cmd.Output, len(wav), format.Duration(len(pcm)))
	return nil
}

func (f *GeminiFlags) context() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func (f *GeminiFlags) setup(ctx context.Context, path string) (*scene.Pipeline, media.Video, error) {
	level := slog.LevelWarn
	_ = level.UnmarshalText([]byte(f.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	video, err := readVideo(path)
	if err != nil {
		return nil, media.Video{}, err
	}

	client, err := gemini.New(ctx, gemini.Config{APIKeys: f.APIKeys, Timeout: f.Timeout}, logger)
	if err != nil {
		return nil, media.Video{}, err
	}

	describer := vision.NewClient(client, client, vision.Config{Model: f.VisionModel}, logger)
	synth := synthesis.NewClient(client, synthesis.Config{Model: f.SpeechModel, Voice: f.Voice}, logger)
	pipeline := scene.NewPipeline(describer, synth, scene.Config{
		Voice:       f.Voice,
		Concurrency: f.Concurrency,
	}, logger)

	return pipeline, video, nil
}

func readVideo(path string) (media.Video, error) {
	file, err := os.Open(path)
	if err != nil {
		return media.Video{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, media.MaxVideoBytes+1))
	if err != nil {
		return media.Video{}, fmt.Errorf("read video: %w", err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return media.NewVideo(data, mimeType)
}

func writeScenes(dir string, summaries []scene.Summary) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for i, s := range summaries {
		wav, err := media.DecodePayload(s.Narration)
		if err != nil {
			return fmt.Errorf("scene %d: %w", i, err)
		}
		name := filepath.Join(dir, fmt.Sprintf("scene-%02d-%06.1fs.wav", i+1, s.Timestamp))
		if err := os.WriteFile(name, wav, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
