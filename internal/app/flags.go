package app

import (
	"flag"
	"fmt"
	"sort"
	"strings"
)

// Config represents the command-line parameters for the GUI.
type Config struct {
	Sim      string
	Scale    int
	TPS      int
	Seed     int64
	HUDWidth int
	Player   int
	Pattern  string

	// SimConfig is forwarded to the sim factory as key=value pairs.
	SimConfig KV
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{Sim: "siege", Scale: 8, TPS: 15, Seed: 42, HUDWidth: 240, Player: 1, Pattern: "glider", SimConfig: KV{}}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "simulation to run")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "generations per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for simulation reset")
	fs.IntVar(&c.HUDWidth, "hud", c.HUDWidth, "HUD panel width in pixels (0 hides it)")
	fs.IntVar(&c.Player, "player", c.Player, "player whose pattern a click stamps")
	fs.StringVar(&c.Pattern, "pattern", c.Pattern, "pattern a click stamps")
	fs.Var(c.SimConfig, "set", "sim option key=value (repeatable)")
}

// KV collects repeated key=value flags.
type KV map[string]string

func (kv KV) String() string {
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + kv[k]
	}
	return strings.Join(parts, ",")
}

func (kv KV) Set(v string) error {
	key, value, ok := strings.Cut(v, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", v)
	}
	kv[key] = strings.TrimSpace(value)
	return nil
}
