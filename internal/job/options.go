package job

import (
	"fmt"
	"strings"

	"audioink/internal/language"
	"audioink/internal/media"
	"audioink/internal/services"
)

// Options controls how one transcription job runs.
type Options struct {
	Model       string
	Language    string
	Timestamps  bool
	SpeedFactor float64
}

func (o *Options) normalize() {
	o.Model = strings.ToLower(strings.TrimSpace(o.Model))
	o.Language = language.Normalize(o.Language)
	if o.SpeedFactor == 0 {
		o.SpeedFactor = 1.0
	}
}

// Validate rejects option combinations before any work starts.
func (o Options) Validate() error {
	if o.Model == "" {
		return services.Wrap(services.ErrInvalidOptions, "job", "validate", "model id required", nil)
	}
	if o.Language == "" {
		return services.Wrap(services.ErrInvalidOptions, "job", "validate", "unknown language", nil)
	}
	if o.SpeedFactor < media.MinSpeedFactor || o.SpeedFactor > media.MaxSpeedFactor {
		return services.Wrap(services.ErrInvalidOptions, "job", "validate",
			fmt.Sprintf("speed factor %.2f outside [%.1f, %.1f]", o.SpeedFactor, media.MinSpeedFactor, media.MaxSpeedFactor), nil)
	}
	// Retiming rescales the audio clock, so segment times no longer map back
	// to the original recording.
	if o.Timestamps && o.SpeedFactor > 1.0 {
		return services.Wrap(services.ErrInvalidOptions, "job", "validate",
			"timestamps cannot be combined with a speed factor above 1.0", nil)
	}
	return nil
}

// Request describes one transcription job: a local file path or a remote URL,
// plus options. Captions asks for the source's published captions instead of
// running inference; it only applies to remote sources.
type Request struct {
	Source   string
	Captions bool
	Options  Options
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
