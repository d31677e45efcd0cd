// Package job orchestrates one transcription end to end: input resolution,
// model acquisition, decoding, chunked inference, stitching, persistence.
package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"audioink/internal/audio"
	"audioink/internal/chunk"
	"audioink/internal/engine"
	"audioink/internal/history"
	"audioink/internal/language"
	"audioink/internal/logging"
	"audioink/internal/media"
	"audioink/internal/models"
	"audioink/internal/services"
)

// Inference progress spans this fraction window; the phases before and after
// it are quick by comparison.
const (
	inferStart = 0.15
	inferEnd   = 0.95
)

// Decoder turns a media file into PCM.
type Decoder interface {
	Decode(ctx context.Context, path string) (*audio.Buffer, error)
}

// Inference is the engine surface the controller drives.
type Inference interface {
	Load(ctx context.Context, modelID, path string) error
	Infer(ctx context.Context, samples []float32, lang string, onSegment func(engine.Segment)) (engine.Result, error)
}

// ModelResolver reports model install state.
type ModelResolver interface {
	Status(id string) (models.Status, error)
}

// Extractor pulls audio out of a remote source.
type Extractor interface {
	Extract(ctx context.Context, url string) (*media.Extraction, error)
	Cleanup(path string)
}

// Retimer speeds audio up ahead of decoding.
type Retimer interface {
	Retime(ctx context.Context, path string, factor float64) (string, error)
	Cleanup(path string)
}

// Recorder persists finished transcriptions.
type Recorder interface {
	Append(ctx context.Context, entry *history.Entry) error
}

// Deps wires the controller's collaborators. Decoder, Engine, Models, and
// History are required; Extractor, Retimer, and Captions are only needed for
// the requests that use them.
type Deps struct {
	Decoder   Decoder
	Engine    Inference
	Models    ModelResolver
	History   Recorder
	Extractor Extractor
	Retimer   Retimer
	Captions  media.CaptionFetcher
	Logger    *slog.Logger
}

// Controller runs at most one job at a time.
type Controller struct {
	deps   Deps
	logger *slog.Logger

	mu     sync.Mutex
	active bool
}

// New constructs a controller.
func New(deps Deps) (*Controller, error) {
	switch {
	case deps.Decoder == nil:
		return nil, errors.New("decoder required")
	case deps.Engine == nil:
		return nil, errors.New("engine required")
	case deps.Models == nil:
		return nil, errors.New("model resolver required")
	case deps.History == nil:
		return nil, errors.New("history recorder required")
	}
	logger := logging.NewNop()
	if deps.Logger != nil {
		logger = logging.NewComponentLogger(deps.Logger, "job")
	}
	return &Controller{deps: deps, logger: logger}, nil
}

// Start validates the request and launches the job in the background. It
// fails immediately with ErrInvalidOptions on bad options and
// ErrJobInProgress when another job is active; neither alters any state.
func (c *Controller) Start(ctx context.Context, req Request) (*Handle, error) {
	req.Options.normalize()
	if err := req.Options.Validate(); err != nil {
		return nil, err
	}
	if req.Source == "" {
		return nil, services.Wrap(services.ErrInvalidOptions, "job", "start", "input source required", nil)
	}
	if req.Captions && !isRemote(req.Source) {
		return nil, services.Wrap(services.ErrInvalidOptions, "job", "start", "captions require a remote source", nil)
	}

	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return nil, services.Wrap(services.ErrJobInProgress, "job", "start", "another transcription is running", nil)
	}
	c.active = true
	c.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	h := newHandle(uuid.NewString(), cancel)
	go c.run(runCtx, req, h)
	return h, nil
}

func (c *Controller) run(ctx context.Context, req Request, h *Handle) {
	result, err := c.execute(ctx, req, h)

	// The slot must be free before finish unblocks Wait, so a caller can
	// start the next job as soon as Wait returns.
	c.mu.Lock()
	c.active = false
	c.mu.Unlock()

	switch {
	case err == nil:
		h.emit(Event{State: StatePersisted, Fraction: 1.0, Message: "transcript saved"})
		c.logger.Info("job finished",
			logging.String(logging.FieldJobID, h.id),
			logging.String(logging.FieldSource, result.SourceName),
			logging.Duration("processing_time", result.ProcessingTime),
		)
		h.finish(StatePersisted, result, nil)
	case errors.Is(err, context.Canceled):
		h.emit(Event{State: StateCancelled, Message: "cancelled"})
		c.logger.Info("job cancelled", logging.String(logging.FieldJobID, h.id))
		h.finish(StateCancelled, nil, context.Canceled)
	default:
		stage := h.State()
		h.emit(Event{State: StateFailed, Message: err.Error()})
		c.logger.Error("job failed",
			logging.String(logging.FieldJobID, h.id),
			logging.String(logging.FieldStage, string(stage)),
			logging.Error(err),
		)
		h.finish(StateFailed, nil, err)
	}
}

func (c *Controller) execute(ctx context.Context, req Request, h *Handle) (*Result, error) {
	started := time.Now()
	opts := req.Options

	h.emit(Event{State: StateResolvingInput, Fraction: 0.02, Message: "resolving input"})

	if req.Captions {
		return c.executeCaptions(ctx, req, h, started)
	}

	workPath := req.Source
	sourceName := filepath.Base(req.Source)
	sourceType := history.SourceFile
	if isRemote(req.Source) {
		if c.deps.Extractor == nil {
			return nil, services.Wrap(services.ErrExternalTool, "job", "resolve", "no audio extractor configured", nil)
		}
		extraction, err := c.deps.Extractor.Extract(ctx, req.Source)
		if err != nil {
			return nil, err
		}
		defer c.deps.Extractor.Cleanup(extraction.Path)
		workPath = extraction.Path
		sourceName = extraction.Title
		sourceType = history.SourceURL
	}

	h.emit(Event{State: StateAcquiringModel, Fraction: 0.05, Message: "loading model " + opts.Model})
	status, err := c.deps.Models.Status(opts.Model)
	if err != nil {
		return nil, err
	}
	if !status.Installed {
		return nil, services.Wrap(services.ErrModelNotReady, "job", "acquire_model",
			fmt.Sprintf("model %s is not installed; download it first", opts.Model), nil)
	}
	if err := c.deps.Engine.Load(ctx, opts.Model, status.Path); err != nil {
		return nil, err
	}

	if opts.SpeedFactor > 1.0 {
		if c.deps.Retimer == nil {
			return nil, services.Wrap(services.ErrExternalTool, "job", "retime", "no retimer configured", nil)
		}
		h.emit(Event{State: StateDecoding, Fraction: 0.08, Message: fmt.Sprintf("speeding audio up %gx", opts.SpeedFactor)})
		retimed, err := c.deps.Retimer.Retime(ctx, workPath, opts.SpeedFactor)
		if err != nil {
			return nil, err
		}
		if retimed != workPath {
			defer c.deps.Retimer.Cleanup(retimed)
			workPath = retimed
		}
	}

	h.emit(Event{State: StateDecoding, Fraction: 0.10, Message: "decoding audio"})
	buf, err := c.deps.Decoder.Decode(ctx, workPath)
	if err != nil {
		return nil, err
	}
	// Retimed audio is shorter on disk; report the original duration.
	audioDuration := time.Duration(float64(buf.Duration()) * opts.SpeedFactor)

	text, segments, lang, err := c.inferChunks(ctx, h, buf, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		SourceName:     sourceName,
		SourceType:     sourceType,
		Text:           text,
		Segments:       segments,
		Language:       lang,
		AudioDuration:  audioDuration,
		ProcessingTime: time.Since(started),
	}
	if err := c.persist(ctx, result, opts); err != nil {
		return nil, err
	}
	return result, nil
}

// inferChunks drives the engine over the planned chunks in order, checking
// for cancellation at every boundary. When language detection is requested,
// the first chunk's detected language becomes the hint for the rest.
func (c *Controller) inferChunks(ctx context.Context, h *Handle, buf *audio.Buffer, opts Options) (string, []engine.Segment, string, error) {
	chunks := chunk.Plan(buf.Len())
	total := len(chunks)
	lang := opts.Language
	texts := make([]string, 0, total)
	var segments []engine.Segment

	for i, ck := range chunks {
		if err := ctx.Err(); err != nil {
			return "", nil, "", err
		}
		h.emit(Event{
			State:      StateInferring,
			Fraction:   inferFraction(i, total),
			Message:    fmt.Sprintf("transcribing chunk %d/%d", i+1, total),
			ChunkIndex: i,
			ChunkCount: total,
		})

		res, err := c.deps.Engine.Infer(ctx, buf.Slice(ck.Start, ck.End), lang, nil)
		if err != nil {
			return "", nil, "", err
		}
		if language.IsAuto(lang) && res.Language != "" && !language.IsAuto(res.Language) {
			lang = res.Language
			c.logger.Info("language detected",
				logging.String(logging.FieldJobID, h.id),
				logging.String(logging.FieldLanguage, lang),
			)
		}
		texts = append(texts, res.Text)
		if opts.Timestamps {
			offset := ck.Offset()
			for _, seg := range res.Segments {
				segments = append(segments, engine.Segment{
					Start: originalTime(offset+seg.Start, opts.SpeedFactor),
					End:   originalTime(offset+seg.End, opts.SpeedFactor),
					Text:  seg.Text,
				})
			}
		}

		h.emit(Event{
			State:      StateInferring,
			Fraction:   inferFraction(i+1, total),
			Message:    fmt.Sprintf("chunk %d/%d done", i+1, total),
			ChunkIndex: i,
			ChunkCount: total,
			ChunkText:  res.Text,
		})
	}

	h.emit(Event{State: StateStitching, Fraction: inferEnd, Message: "stitching transcript"})
	return stitch(texts), segments, lang, nil
}

func (c *Controller) executeCaptions(ctx context.Context, req Request, h *Handle, started time.Time) (*Result, error) {
	if c.deps.Captions == nil {
		return nil, services.Wrap(services.ErrExternalTool, "job", "captions", "no caption fetcher configured", nil)
	}
	captions, err := c.deps.Captions.Fetch(ctx, req.Source, req.Options.Language)
	if err != nil {
		return nil, err
	}

	result := &Result{
		SourceName:     req.Source,
		SourceType:     history.SourceCaptions,
		Text:           captions.Text,
		Language:       captions.Language,
		ProcessingTime: time.Since(started),
	}
	if req.Options.Timestamps {
		for _, line := range captions.Lines {
			result.Segments = append(result.Segments, engine.Segment{
				Start: line.Start,
				End:   line.End,
				Text:  line.Text,
			})
		}
		if n := len(captions.Lines); n > 0 {
			result.AudioDuration = captions.Lines[n-1].End
		}
	}
	if err := c.persist(ctx, result, req.Options); err != nil {
		return nil, err
	}
	return result, nil
}

// persist writes the history entry. A cancellation observed here wins over
// the finished work so a cancelled job never leaves a record behind.
func (c *Controller) persist(ctx context.Context, result *Result, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entry := &history.Entry{
		SourceName:     result.SourceName,
		SourceType:     result.SourceType,
		Text:           result.Text,
		AudioDuration:  result.AudioDuration,
		ProcessingTime: result.ProcessingTime,
		Model:          opts.Model,
		Language:       result.Language,
	}
	if result.SourceType == history.SourceCaptions {
		entry.Model = ""
	}
	if err := c.deps.History.Append(ctx, entry); err != nil {
		return err
	}
	result.EntryID = entry.ID
	return nil
}

func inferFraction(done, total int) float64 {
	if total <= 0 {
		return inferEnd
	}
	return inferStart + (inferEnd-inferStart)*float64(done)/float64(total)
}

// originalTime maps a timestamp measured in retimed audio back to the
// original recording's clock.
func originalTime(d time.Duration, factor float64) time.Duration {
	if factor == 1.0 {
		return d
	}
	return time.Duration(float64(d) * factor)
}
