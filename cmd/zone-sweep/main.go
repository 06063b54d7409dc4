package main

import (
	"flag"
	"fmt"
	"log"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"siege-ca/internal/history"
	"siege-ca/internal/sims/siegelife"
)

type kvList []string

func (l *kvList) String() string {
	return strings.Join(*l, ",")
}

func (l *kvList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

func main() {
	steps := flag.Int("steps", 400, "generations to simulate per scenario")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	radii := flag.String("radii", "0,1,2,3,4,6", "comma separated zone radii to sweep")
	densities := flag.String("densities", "0.25,0.35,0.5", "comma separated soup densities to sweep")
	seeds := flag.Int("seeds", 3, "seeds per parameter set")
	top := flag.Int("top", 10, "results to print")
	out := flag.String("history", "", "optional parquet file receiving final per-owner counts")
	var overrides kvList
	flag.Var(&overrides, "set", "world option in key=value form (repeatable)")
	flag.Parse()

	overrideMap := map[string]string{}
	for _, kv := range overrides {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			log.Fatalf("override %q is not key=value", kv)
		}
		overrideMap[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	base := siegelife.FromMap(overrideMap)

	radiusOptions, err := parseInts(*radii)
	if err != nil {
		log.Fatalf("radii: %v", err)
	}
	densityOptions, err := parseFloats(*densities)
	if err != nil {
		log.Fatalf("densities: %v", err)
	}

	var cfgs []siegelife.Config
	for _, r := range radiusOptions {
		for _, d := range densityOptions {
			for s := 0; s < *seeds; s++ {
				cfg := base
				cfg.ZoneRadius = r
				cfg.Density = d
				cfg.Seed = base.Seed + int64(s)
				cfg.Workers = 1
				cfgs = append(cfgs, cfg)
			}
		}
	}

	fmt.Printf("Sweeping %d scenarios on a %dx%d grid with %d players (%d workers, %d steps)\n",
		len(cfgs), base.Size, base.Size, base.Players, *workers, *steps)

	start := time.Now()
	results, err := siegelife.Sweep(cfgs, *steps, *workers)
	if err != nil {
		log.Fatal(err)
	}
	elapsed := time.Since(start)

	if *out != "" {
		if err := writeHistory(*out, results); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Wrote final counts to %s\n", *out)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Survivors != results[j].Survivors {
			return results[i].Survivors > results[j].Survivors
		}
		return results[i].LeaderShare < results[j].LeaderShare
	})

	fmt.Printf("\nMost balanced results (elapsed %s):\n", elapsed.Round(time.Millisecond))
	for i := 0; i < len(results) && i < *top; i++ {
		res := results[i]
		fmt.Printf("%2d) radius=%d density=%.2f seed=%d survivors=%d/%d leader=P%d share=%.3f alive=%d\n",
			i+1, res.Config.ZoneRadius, res.Config.Density, res.Config.Seed, res.Survivors, res.Config.Players, res.Leader, res.LeaderShare, res.Alive)
	}
}

func writeHistory(path string, results []siegelife.ScenarioResult) error {
	w, err := history.NewWriter(path)
	if err != nil {
		return err
	}
	for _, res := range results {
		label := fmt.Sprintf("r=%d d=%.2f s=%d", res.Config.ZoneRadius, res.Config.Density, res.Config.Seed)
		if err := w.Record(label, uint64(res.Steps), res.Owners); err != nil {
			_ = w.Close()
			return err
		}
	}
	return w.Close()
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseFloats(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
