package app

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigBind(t *testing.T) {
	cfg := NewConfig()
	fs := flag.NewFlagSet("ca", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg.Bind(fs)

	err := fs.Parse([]string{"-sim", "life", "-scale", "4", "-player", "3", "-set", "size=32", "-set", "zone_radius = 2"})
	require.NoError(t, err)

	assert.Equal(t, "life", cfg.Sim)
	assert.Equal(t, 4, cfg.Scale)
	assert.Equal(t, 3, cfg.Player)
	assert.Equal(t, KV{"size": "32", "zone_radius": "2"}, cfg.SimConfig)
	assert.Equal(t, "size=32,zone_radius=2", cfg.SimConfig.String())
}

func TestKVRejectsMalformed(t *testing.T) {
	kv := KV{}
	require.Error(t, kv.Set("size"))
	require.Error(t, kv.Set("=3"))
	assert.Empty(t, kv)
}
