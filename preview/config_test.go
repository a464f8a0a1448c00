package preview

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce)
	assert.Empty(t, cfg.AssetDir)
}

func TestLoadConfigMapsPreviewSection(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("preview.port", 9999)
	viper.Set("preview.title", "Demo")
	viper.Set("preview.debounce_ms", 100)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, "Demo", cfg.Title)
	assert.Equal(t, 100*time.Millisecond, cfg.Debounce)
}
