package server

import (
	"github.com/raysh454/imola/internal/app"
	"github.com/raysh454/imola/internal/logging"
)

// DefaultMaxBodyBytes bounds POST /api/analyze request bodies.
const DefaultMaxBodyBytes int64 = 1 << 20

type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string

	// App provides the dictionary, engine and corpus. Required.
	App *app.Application

	// Logger defaults to a JSON stdout logger.
	Logger logging.Logger

	// MaxBodyBytes limits request bodies; zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
}
