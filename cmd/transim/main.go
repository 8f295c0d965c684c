package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/bdenergy/transim/internal/pkg/economy"
	"github.com/bdenergy/transim/internal/pkg/export"
	"github.com/bdenergy/transim/internal/pkg/params"
	"github.com/bdenergy/transim/internal/pkg/plugin"
	"github.com/bdenergy/transim/internal/pkg/plugin/demandresponse"
	"github.com/bdenergy/transim/internal/pkg/plugin/gridstability"
	"github.com/bdenergy/transim/internal/pkg/plugin/market"
	"github.com/bdenergy/transim/internal/pkg/plugin/network"
	"github.com/bdenergy/transim/internal/pkg/plugin/storage"
	"github.com/bdenergy/transim/internal/pkg/plugin/weather"
	"github.com/bdenergy/transim/internal/pkg/sim"
	"github.com/bdenergy/transim/internal/pkg/state"
)

func main() {
	paramsPath := flag.String("params", "./config/params/baseline.json", "parameter set file")
	pluginDir := flag.String("plugins", "./config/plugin", "auxiliary model config directory, empty to disable")
	csvPath := flag.String("csv", "simulation_results.csv", "year series output")
	reportPath := flag.String("report", "simulation_report.md", "report output")
	flag.Parse()

	log.Println("[Main] Loading parameters")
	p, err := params.NewFromFile(*paramsPath)
	if err != nil {
		log.Fatalln("[Main]", err)
	}

	log.Println("[Main] Building auxiliary models")
	plugins := buildPlugins(*pluginDir)

	log.Println("[Main] Building orchestrator")
	orc, err := sim.New(plugins...)
	if err != nil {
		log.Fatalln("[Main]", err)
	}

	log.Printf("[Main] Running %d-%d\n", p.StartYear, p.EndYear)
	table, err := orc.Run(p)
	switch {
	case errors.Is(err, economy.ErrNoConvergence):
		log.Println("[Main]", err)
	case err != nil:
		// Completed years are still exported for diagnosis.
		log.Println("[Main] run failed:", err)
	}

	if err := writeCSV(*csvPath, table); err != nil {
		log.Fatalln("[Main]", err)
	}
	if err := writeReport(*reportPath, table); err != nil {
		log.Fatalln("[Main]", err)
	}
	log.Printf("[Main] Results saved to %s and %s\n", *csvPath, *reportPath)
}

// buildPlugins loads every auxiliary model whose config file exists in
// the directory. Missing files just leave the model out.
func buildPlugins(dir string) []plugin.Adjuster {
	if dir == "" {
		return nil
	}
	plugins := []plugin.Adjuster{}
	load := func(name string, build func(string) (plugin.Adjuster, error)) {
		path := dir + "/" + name + ".json"
		if _, err := os.Stat(path); err != nil {
			return
		}
		adj, err := build(path)
		if err != nil {
			log.Printf("[Main] auxiliary model %s: %v\n", name, err)
			return
		}
		plugins = append(plugins, adj)
	}

	load("gridstability", func(p string) (plugin.Adjuster, error) { return gridstability.New(p) })
	load("storage", func(p string) (plugin.Adjuster, error) { return storage.New(p) })
	load("demandresponse", func(p string) (plugin.Adjuster, error) { return demandresponse.New(p) })
	load("network", func(p string) (plugin.Adjuster, error) { return network.New(p) })
	load("market", func(p string) (plugin.Adjuster, error) { return market.New(p) })
	load("weather", func(p string) (plugin.Adjuster, error) { return weather.New(p) })
	return plugins
}

func writeCSV(path string, table state.ResultTable) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return export.WriteResultTable(f, table)
}

func writeReport(path string, table state.ResultTable) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return export.WriteReport(f, "Energy Transition Simulation", table)
}
