//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"

	"siege-ca/internal/app"
	"siege-ca/internal/core"
	_ "siege-ca/internal/sims/life"
	_ "siege-ca/internal/sims/siegelife"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	sim, err := core.New(cfg.Sim, cfg.SimConfig)
	if err != nil {
		log.Fatalf("%v (available: %v)", err, core.Names())
	}
	sim.Reset(cfg.Seed)

	game := app.New(sim, cfg)
	size := sim.Size()

	ebiten.SetWindowTitle("siege-ca: " + sim.Name())
	ebiten.SetTPS(60)
	ebiten.SetWindowSize(size.W*cfg.Scale+cfg.HUDWidth, size.H*cfg.Scale)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
