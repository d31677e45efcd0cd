// Package engine runs whisper inference over PCM chunks, caching the most
// recently loaded model.
package engine

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"audioink/internal/logging"
	"audioink/internal/services"
)

// Segment is a timed piece of recognized text, relative to the start of the
// samples passed to Infer.
type Segment struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Result is the outcome of transcribing one set of samples.
type Result struct {
	Text     string
	Segments []Segment
	Language string
}

// Recognizer is a loaded model that can transcribe PCM. Implementations do
// not need to be safe for concurrent use; the engine serializes access.
type Recognizer interface {
	Transcribe(ctx context.Context, samples []float32, lang string, onSegment func(Segment)) (Result, error)
	Close() error
}

// RecognizerFactory loads a model file into a Recognizer.
type RecognizerFactory func(modelPath string, threads int) (Recognizer, error)

// Option configures the engine.
type Option func(*Engine)

// WithRecognizerFactory injects a custom factory (primarily for tests).
func WithRecognizerFactory(factory RecognizerFactory) Option {
	return func(e *Engine) {
		if factory != nil {
			e.factory = factory
		}
	}
}

// WithThreads sets the inference thread count. Zero lets the recognizer pick.
func WithThreads(threads int) Option {
	return func(e *Engine) {
		if threads > 0 {
			e.threads = threads
		}
	}
}

// WithLogger attaches a logger to the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logging.NewComponentLogger(logger, "engine")
	}
}

// Engine holds at most one loaded model and serializes load, inference, and
// release so a swap never interrupts in-flight work.
type Engine struct {
	mu      sync.Mutex
	factory RecognizerFactory
	logger  *slog.Logger
	threads int

	modelID string
	rec     Recognizer
}

// New constructs an engine backed by the whisper.cpp bindings.
func New(opts ...Option) *Engine {
	e := &Engine{
		factory: newWhisperRecognizer,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load makes modelID the active model, reading it from path. Loading the
// already-active model is a no-op. When a different model is active, Load
// waits for any in-flight inference, closes the old model, then swaps.
func (e *Engine) Load(ctx context.Context, modelID, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rec != nil && e.modelID == modelID {
		return nil
	}
	if e.rec != nil {
		if err := e.rec.Close(); err != nil {
			e.logger.Warn("closing previous model failed", logging.String(logging.FieldModel, e.modelID), logging.Error(err))
		}
		e.rec = nil
		e.modelID = ""
	}

	rec, err := e.factory(path, e.threads)
	if err != nil {
		return services.Wrap(services.ErrModelNotReady, "engine", "load", modelID, err)
	}
	e.rec = rec
	e.modelID = modelID
	e.logger.Info("model loaded", logging.String(logging.FieldModel, modelID))
	return nil
}

// Loaded reports whether modelID is the active model.
func (e *Engine) Loaded(modelID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec != nil && e.modelID == modelID
}

// ActiveModel returns the id of the loaded model, or empty string.
func (e *Engine) ActiveModel() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rec == nil {
		return ""
	}
	return e.modelID
}

// Infer transcribes samples with the active model. lang is a two-letter hint
// or "auto". Empty samples yield an empty result without touching the model.
// onSegment, when non-nil, receives segments as they are produced.
func (e *Engine) Infer(ctx context.Context, samples []float32, lang string, onSegment func(Segment)) (Result, error) {
	if len(samples) == 0 {
		return Result{Language: normalizeLang(lang)}, nil
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rec == nil {
		return Result{}, services.Wrap(services.ErrModelNotReady, "engine", "infer", "no model loaded", nil)
	}
	result, err := e.rec.Transcribe(ctx, samples, normalizeLang(lang), onSegment)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, services.Wrap(services.ErrInfer, "engine", "infer", e.modelID, err)
	}
	return result, nil
}

// Release drops the cached model if modelID matches, or any model when
// modelID is empty. It waits for in-flight inference to finish first.
func (e *Engine) Release(modelID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rec == nil {
		return nil
	}
	if modelID != "" && e.modelID != modelID {
		return nil
	}
	err := e.rec.Close()
	e.logger.Info("model released", logging.String(logging.FieldModel, e.modelID))
	e.rec = nil
	e.modelID = ""
	return err
}

// Close releases whatever model is loaded.
func (e *Engine) Close() error {
	return e.Release("")
}

func normalizeLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return "auto"
	}
	return lang
}
