package engine

import (
	"context"
	"fmt"
	"strings"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// whisperRecognizer adapts the whisper.cpp Go bindings to the Recognizer
// interface.
type whisperRecognizer struct {
	model   whisper.Model
	threads int
}

func newWhisperRecognizer(modelPath string, threads int) (Recognizer, error) {
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load model %q: %w", modelPath, err)
	}
	return &whisperRecognizer{model: model, threads: threads}, nil
}

func (r *whisperRecognizer) Transcribe(ctx context.Context, samples []float32, lang string, onSegment func(Segment)) (Result, error) {
	wctx, err := r.model.NewContext()
	if err != nil {
		return Result{}, fmt.Errorf("create context: %w", err)
	}

	if err := wctx.SetLanguage(lang); err != nil {
		return Result{}, fmt.Errorf("set language %q: %w", lang, err)
	}
	wctx.SetTranslate(false)
	if r.threads > 0 {
		wctx.SetThreads(uint(r.threads))
	}

	var segments []Segment
	var text strings.Builder

	// Returning false from the encoder callback aborts processing, which is
	// how cancellation reaches the C side between encoder passes.
	encoderBegin := func() bool {
		return ctx.Err() == nil
	}
	collect := func(seg whisper.Segment) {
		trimmed := strings.TrimSpace(seg.Text)
		if trimmed == "" {
			return
		}
		out := Segment{Start: seg.Start, End: seg.End, Text: trimmed}
		segments = append(segments, out)
		if text.Len() > 0 {
			text.WriteByte(' ')
		}
		text.WriteString(trimmed)
		if onSegment != nil {
			onSegment(out)
		}
	}

	if err := wctx.Process(samples, encoderBegin, collect, nil); err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("process: %w", err)
	}

	detected := lang
	if lang == "auto" {
		detected = wctx.DetectedLanguage()
	}

	return Result{
		Text:     text.String(),
		Segments: segments,
		Language: detected,
	}, nil
}

func (r *whisperRecognizer) Close() error {
	if r.model != nil {
		return r.model.Close()
	}
	return nil
}
