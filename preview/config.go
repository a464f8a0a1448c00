package preview

import (
	"time"

	"github.com/atilaykosker/Mosaic/internal/config"
)

// Config controls the preview server.
type Config struct {
	// Host and Port form the listen address.
	Host string
	Port int

	// Title is the page title of the dev layout.
	Title string

	// AssetDir, when set, is served under /static/ and watched for
	// changes; any change broadcasts a full page reload.
	AssetDir string

	// AllowedOrigins lists extra origins accepted on the websocket
	// endpoint, as full origins or bare host:port entries. The server's
	// own host and the loopback names are always accepted.
	AllowedOrigins []string

	// Debounce is how long the asset watcher batches change events
	// before broadcasting a reload.
	Debounce time.Duration
}

// DefaultConfig mirrors the tooling defaults: localhost:8080, no asset
// directory.
func DefaultConfig() *Config {
	return fromTool(config.Default())
}

// LoadConfig reads the layered tooling configuration (.mosaic.yml plus
// MOSAIC_* environment variables) and maps its preview section.
func LoadConfig() (*Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return fromTool(cfg), nil
}

func fromTool(cfg *config.Config) *Config {
	return &Config{
		Host:           cfg.Preview.Host,
		Port:           cfg.Preview.Port,
		Title:          cfg.Preview.Title,
		AssetDir:       cfg.Preview.AssetDir,
		AllowedOrigins: cfg.Preview.AllowedOrigins,
		Debounce:       time.Duration(cfg.Preview.DebounceMS) * time.Millisecond,
	}
}
