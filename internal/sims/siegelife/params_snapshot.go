package siegelife

import (
	"strconv"

	"siege-ca/internal/core"
)

// Parameters reports the world settings and population for the HUD.
func (w *World) Parameters() core.ParameterSnapshot {
	stats := w.Stats()
	population := []core.Parameter{
		uint64Param("generation", "Generation", stats.Generation),
		intParam("alive", "Alive", stats.Alive),
	}
	for id := uint8(1); id <= uint8(w.cfg.Players); id++ {
		oc := stats.Owners[id]
		population = append(population, core.Parameter{
			Key:   "player_" + strconv.Itoa(int(id)),
			Label: "P" + strconv.Itoa(int(id)),
			Type:  core.ParamTypeInt,
			Value: strconv.Itoa(oc.Alive) + "/" + strconv.Itoa(oc.Territory),
		})
	}

	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{
			Name: "World",
			Params: []core.Parameter{
				intParam("size", "Size", w.cfg.Size),
				intParam("players", "Players", w.cfg.Players),
				int64Param("seed", "Seed", w.cfg.Seed),
				floatParam("density", "Soup density", w.cfg.Density),
			},
		},
		{
			Name: "Siege",
			Params: []core.Parameter{
				intParam("zone_radius", "Zone radius", w.cfg.ZoneRadius),
				intParam("workers", "Workers", w.cfg.Workers),
				intParam("bases", "Bases", len(w.bases)),
			},
		},
		{Name: "Population", Params: population},
	}}
}

// ParameterControls lists the HUD-adjustable settings.
func (w *World) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "zone_radius", Label: "Zone radius", Step: 1, Min: 0, HasMin: true, Max: w.cfg.Size / 2, HasMax: true},
		{Key: "workers", Label: "Workers", Step: 1, Min: 1, HasMin: true, Max: 16, HasMax: true},
	}
}

// SetIntParameter applies a HUD adjustment.
func (w *World) SetIntParameter(key string, value int) bool {
	for _, ctrl := range w.ParameterControls() {
		if ctrl.Key != key {
			continue
		}
		value = ctrl.Clamp(value)
		switch key {
		case "zone_radius":
			w.SetZoneRadius(value)
		case "workers":
			w.SetWorkers(value)
		}
		return true
	}
	return false
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{Key: key, Label: label, Type: core.ParamTypeInt, Value: strconv.Itoa(value)}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{Key: key, Label: label, Type: core.ParamTypeInt, Value: strconv.FormatInt(value, 10)}
}

func uint64Param(key, label string, value uint64) core.Parameter {
	return core.Parameter{Key: key, Label: label, Type: core.ParamTypeInt, Value: strconv.FormatUint(value, 10)}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{Key: key, Label: label, Type: core.ParamTypeFloat, Value: strconv.FormatFloat(value, 'f', -1, 64)}
}
