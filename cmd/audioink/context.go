package main

import (
	"log/slog"
	"path/filepath"
	"time"

	"audioink/internal/audio"
	"audioink/internal/config"
	"audioink/internal/engine"
	"audioink/internal/history"
	"audioink/internal/job"
	"audioink/internal/logging"
	"audioink/internal/media"
	"audioink/internal/models"
)

// appContext lazily builds the services commands need, so cheap commands
// never touch the database or the model directory.
type appContext struct {
	configPath string

	cfg       *config.Config
	cfgExists bool
	logger    *slog.Logger
	store     *history.Store
	eng       *engine.Engine
	manager   *models.Manager
}

func newAppContext() *appContext {
	return &appContext{}
}

func (a *appContext) loadConfig() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, _, exists, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	a.cfg = cfg
	a.cfgExists = exists
	return cfg, nil
}

func (a *appContext) ensureLogger() (*slog.Logger, error) {
	if a.logger != nil {
		return a.logger, nil
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		OutputPaths: []string{
			filepath.Join(cfg.Paths.LogDir, "audioink.log"),
		},
	})
	if err != nil {
		return nil, err
	}
	a.logger = logger
	return logger, nil
}

func (a *appContext) historyStore() (*history.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := history.Open(cfg)
	if err != nil {
		return nil, err
	}
	a.store = store
	return store, nil
}

func (a *appContext) inferenceEngine() (*engine.Engine, error) {
	if a.eng != nil {
		return a.eng, nil
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := a.ensureLogger()
	if err != nil {
		return nil, err
	}
	a.eng = engine.New(
		engine.WithThreads(cfg.Transcription.Threads),
		engine.WithLogger(logger),
	)
	return a.eng, nil
}

func (a *appContext) modelManager() (*models.Manager, error) {
	if a.manager != nil {
		return a.manager, nil
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := a.ensureLogger()
	if err != nil {
		return nil, err
	}
	eng, err := a.inferenceEngine()
	if err != nil {
		return nil, err
	}
	manager, err := models.NewManager(cfg.Paths.ModelsDir,
		models.WithBaseURL(cfg.Download.BaseURL),
		models.WithTimeout(time.Duration(cfg.Download.TimeoutSeconds)*time.Second),
		models.WithLoadGuard(eng),
		models.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	a.manager = manager
	return manager, nil
}

func (a *appContext) jobController() (*job.Controller, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := a.ensureLogger()
	if err != nil {
		return nil, err
	}
	store, err := a.historyStore()
	if err != nil {
		return nil, err
	}
	eng, err := a.inferenceEngine()
	if err != nil {
		return nil, err
	}
	manager, err := a.modelManager()
	if err != nil {
		return nil, err
	}
	decoder, err := audio.NewDecoder(cfg.FFmpegBinary(), audio.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	extractor, err := media.NewExtractor(cfg.YtdlpBinary(), cfg.Paths.WorkDir, media.WithExtractorLogger(logger))
	if err != nil {
		return nil, err
	}
	retimer, err := media.NewRetimer(cfg.FFmpegBinary(), cfg.Paths.WorkDir, media.WithRetimerLogger(logger))
	if err != nil {
		return nil, err
	}
	captions, err := media.NewSubtitleFetcher(cfg.YtdlpBinary(), cfg.Paths.WorkDir, media.WithSubtitleLogger(logger))
	if err != nil {
		return nil, err
	}

	return job.New(job.Deps{
		Decoder:   decoder,
		Engine:    eng,
		Models:    manager,
		History:   store,
		Extractor: extractor,
		Retimer:   retimer,
		Captions:  captions,
		Logger:    logger,
	})
}

func (a *appContext) close() error {
	var firstErr error
	if a.eng != nil {
		if err := a.eng.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		a.eng = nil
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		a.store = nil
	}
	return firstErr
}
