package directory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_GetUserConfig_defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(UserConfigPathEnv, path)

	cfg, err := GetUserConfig()
	require.NoError(t, err)
	assert.Equal(t, path, cfg.ConfigFileUsed())
	assert.Equal(t, DefaultBaud, cfg.GetInt(BaudKey))
	assert.True(t, cfg.GetBool(FeatureLEDsKey))
	assert.False(t, cfg.GetBool(FeatureCxxKey))
	assert.Equal(t, 8, cfg.GetInt(BoardLEDWidthKey))
}

func Test_WriteConfig_roundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	t.Setenv(UserConfigPathEnv, path)

	cfg, err := GetUserConfig()
	require.NoError(t, err)
	cfg.Set(PortKey, "/dev/ttyUSB1")
	cfg.Set(FeatureCxxKey, true)
	require.NoError(t, WriteConfig(cfg))

	_, err = os.Stat(path)
	require.NoError(t, err)

	cfg, err = GetUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB1", cfg.GetString(PortKey))
	assert.True(t, cfg.GetBool(FeatureCxxKey))
}
