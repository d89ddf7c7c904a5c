package providers

import (
	"context"
)

// Config represents the configuration for a vision model call
type Config struct {
	Model       string
	Temperature float64
	Prompt      string
}

// Image is the payload sent alongside the prompt
type Image struct {
	Data     []byte
	MIMEType string
}

// Provider defines the interface for a vision-capable model provider.
// ClassifyImage returns the model's raw text response, expected (but not
// guaranteed) to be a single JSON object.
type Provider interface {
	ClassifyImage(ctx context.Context, config Config, image Image) (string, error)
}
