package siegelife

import (
	"context"
	"sync"

	"siege-ca/internal/siege"
)

// ScenarioResult summarises one headless run of a configuration.
type ScenarioResult struct {
	Config Config
	Steps  int

	Alive  int
	Owners map[uint8]siege.OwnerCount

	// Leader is the player holding the most territory, 0 when nobody owns any.
	Leader      uint8
	LeaderShare float64
	Survivors   int
}

// RunScenario resets a world from cfg and advances it steps generations.
func RunScenario(cfg Config, steps int) (ScenarioResult, error) {
	world := NewWithConfig(cfg)
	world.Reset(cfg.Seed)
	for i := 0; i < steps; i++ {
		if err := world.Advance(context.Background()); err != nil {
			return ScenarioResult{}, err
		}
	}
	stats := world.Stats()
	res := ScenarioResult{
		Config: world.Config(),
		Steps:  steps,
		Alive:  stats.Alive,
		Owners: stats.Owners,
	}
	best := 0
	for id := uint8(1); id <= siege.MaxPlayers; id++ {
		oc, ok := stats.Owners[id]
		if !ok {
			continue
		}
		if oc.Alive > 0 {
			res.Survivors++
		}
		if oc.Territory > best {
			best = oc.Territory
			res.Leader = id
		}
	}
	if total := len(world.Grid()); total > 0 {
		res.LeaderShare = float64(best) / float64(total)
	}
	return res, nil
}

// Sweep evaluates every configuration on a pool of workers. Results keep the
// order of cfgs.
func Sweep(cfgs []Config, steps, workers int) ([]ScenarioResult, error) {
	if workers <= 0 {
		workers = 1
	}

	type job struct {
		idx int
		cfg Config
	}
	type outcome struct {
		idx int
		res ScenarioResult
		err error
	}

	jobs := make(chan job)
	results := make(chan outcome)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res, err := RunScenario(j.cfg, steps)
				results <- outcome{idx: j.idx, res: res, err: err}
			}
		}()
	}

	go func() {
		for i, cfg := range cfgs {
			jobs <- job{idx: i, cfg: cfg}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]ScenarioResult, len(cfgs))
	var firstErr error
	for o := range results {
		if o.err != nil && firstErr == nil {
			firstErr = o.err
		}
		out[o.idx] = o.res
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
