package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/signal"

	"github.com/bdenergy/transim/internal/pkg/export"
	"github.com/bdenergy/transim/internal/pkg/params"
	"github.com/bdenergy/transim/internal/pkg/sensitivity"
)

// sweepConfig names one single-parameter sweep and the scalar outcome
// to extract from each trial.
type sweepConfig struct {
	Parameter string    `json:"Parameter"`
	Values    []float64 `json:"Values"`
	Outcome   string    `json:"Outcome"`
}

func main() {
	paramsPath := flag.String("params", "./config/params/baseline.json", "parameter set file")
	sweepPath := flag.String("sweeps", "./config/sensitivity/sweeps.json", "sweep definition file")
	outDir := flag.String("out", ".", "output directory")
	flag.Parse()

	log.Println("[Main] Loading parameters")
	base, err := params.NewFromFile(*paramsPath)
	if err != nil {
		log.Fatalln("[Main]", err)
	}
	sweeps, err := loadSweeps(*sweepPath)
	if err != nil {
		log.Fatalln("[Main]", err)
	}

	runner, err := sensitivity.New()
	if err != nil {
		log.Fatalln("[Main]", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	for _, sweep := range sweeps {
		extract, err := extractor(sweep.Outcome)
		if err != nil {
			log.Fatalln("[Main]", err)
		}
		log.Printf("[Main] Sweeping %s over %d values\n", sweep.Parameter, len(sweep.Values))
		samples, err := runner.Sweep(ctx, base, sweep.Parameter, sweep.Values, extract)
		if err != nil {
			log.Fatalln("[Main]", err)
		}
		path := fmt.Sprintf("%s/sensitivity_%s.csv", *outDir, sweep.Parameter)
		if err := writeCSV(path, samples); err != nil {
			log.Fatalln("[Main]", err)
		}
		log.Println("[Main] Results saved to", path)
	}
}

func loadSweeps(configPath string) ([]sweepConfig, error) {
	jsonConfig, err := ioutil.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	sweeps := []sweepConfig{}
	if err := json.Unmarshal(jsonConfig, &sweeps); err != nil {
		return nil, err
	}
	return sweeps, nil
}

func extractor(name string) (sensitivity.Extractor, error) {
	switch name {
	case "", "renewable_share":
		return sensitivity.FinalRenewableShare, nil
	case "cumulative_capex":
		return sensitivity.CumulativeCapex, nil
	case "emissions":
		return sensitivity.FinalEmissions, nil
	}
	return nil, fmt.Errorf("unknown outcome %v", name)
}

func writeCSV(path string, samples []sensitivity.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return export.WriteSensitivity(f, samples)
}
