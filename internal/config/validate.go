package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTranscription() error {
	if c.Transcription.SpeedFactor < 1.0 || c.Transcription.SpeedFactor > 2.0 {
		return fmt.Errorf("transcription.speed_factor must be between 1.0 and 2.0, got %.2f", c.Transcription.SpeedFactor)
	}
	if c.Transcription.Timestamps && c.Transcription.SpeedFactor > 1.0 {
		return errors.New("transcription.timestamps cannot be combined with speed_factor above 1.0")
	}
	return nil
}

func (c *Config) validateDownload() error {
	if c.Download.TimeoutSeconds <= 0 {
		return errors.New("download.timeout_seconds must be positive")
	}
	return nil
}
