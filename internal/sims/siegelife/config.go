package siegelife

import (
	"strconv"

	"siege-ca/internal/siege"
)

// Config controls the siege world.
type Config struct {
	Size       int
	Players    int
	ZoneRadius int

	// Density is the chance that a cell of a player's starting soup is alive.
	Density    float64
	SoupRadius int

	Seed    int64
	Workers int
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Size:       siege.DefaultGridSize,
		Players:    4,
		ZoneRadius: siege.DefaultZoneRadius,
		Density:    0.35,
		SoupRadius: 6,
		Seed:       42,
		Workers:    1,
	}
}

// FromMap populates the config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["size"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Size = parsed
		}
	}
	if v, ok := cfg["players"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.Players = parsed
		}
	}
	if v, ok := cfg["zone_radius"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.ZoneRadius = parsed
		}
	}
	if v, ok := cfg["density"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed <= 1 {
			c.Density = parsed
		}
	}
	if v, ok := cfg["soup_radius"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.SoupRadius = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["workers"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Workers = parsed
		}
	}
	return c.normalized()
}

func (c Config) normalized() Config {
	if c.Size <= 0 {
		c.Size = 1
	}
	if c.Players < 0 {
		c.Players = 0
	}
	if c.Players > siege.MaxPlayers {
		c.Players = siege.MaxPlayers
	}
	if c.ZoneRadius < 0 {
		c.ZoneRadius = 0
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return c
}
