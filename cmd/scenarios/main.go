package main

import (
	"flag"
	"log"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/bdenergy/transim/internal/pkg/datastreams/mongodb"
	"github.com/bdenergy/transim/internal/pkg/datastreams/natshandler"
	"github.com/bdenergy/transim/internal/pkg/datastreams/sqldb"
	"github.com/bdenergy/transim/internal/pkg/export"
	"github.com/bdenergy/transim/internal/pkg/params"
	"github.com/bdenergy/transim/internal/pkg/scenario"
)

type sink interface {
	PID() uuid.UUID
	Process()
}

func main() {
	paramsPath := flag.String("params", "./config/params/baseline.json", "parameter set file")
	scenarioPath := flag.String("scenarios", "./config/scenario/scenarios.json", "scenario override file")
	dbDir := flag.String("db", "./config/database", "datastream config directory, empty to disable")
	csvPath := flag.String("csv", "scenario_comparison.csv", "comparison output")
	reportPath := flag.String("report", "scenario_report.md", "report output")
	flag.Parse()

	log.Println("[Main] Loading parameters")
	base, err := params.NewFromFile(*paramsPath)
	if err != nil {
		log.Fatalln("[Main]", err)
	}
	scenarios, err := scenario.LoadOverrides(*scenarioPath)
	if err != nil {
		log.Fatalln("[Main]", err)
	}

	log.Println("[Main] Building scenario runner")
	runner, err := scenario.New()
	if err != nil {
		log.Fatalln("[Main]", err)
	}

	log.Println("[Main] Starting Datastream")
	sinks, wg := launchSinks(*dbDir, runner)

	log.Printf("[Main] Running %d scenarios\n", len(scenarios))
	result := runner.Run(base, scenarios)

	for _, s := range sinks {
		runner.Unsubscribe(s.PID())
	}
	wg.Wait()

	if err := writeCSV(*csvPath, result); err != nil {
		log.Fatalln("[Main]", err)
	}
	if err := writeReport(*reportPath, result); err != nil {
		log.Fatalln("[Main]", err)
	}
	log.Printf("[Main] Results saved to %s and %s\n", *csvPath, *reportPath)
}

// launchSinks starts a datastream handler for every config file present
// in the directory. Absent files just leave the sink out.
func launchSinks(dir string, runner *scenario.Runner) ([]sink, *sync.WaitGroup) {
	wg := &sync.WaitGroup{}
	if dir == "" {
		return nil, wg
	}
	sinks := []sink{}
	launch := func(name string, build func(string) (sink, error)) {
		path := dir + "/" + name + ".json"
		if _, err := os.Stat(path); err != nil {
			return
		}
		s, err := build(path)
		if err != nil {
			log.Printf("[Main] datastream %s: %v\n", name, err)
			return
		}
		sinks = append(sinks, s)
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Process()
		}()
	}

	launch("sqldb", func(p string) (sink, error) {
		h, err := sqldb.New(p, runner)
		return h, err
	})
	launch("mongodb", func(p string) (sink, error) {
		h, err := mongodb.New(p, runner)
		return h, err
	})
	launch("nats", func(p string) (sink, error) {
		h, err := natshandler.New(p, runner)
		return h, err
	})
	return sinks, wg
}

func writeCSV(path string, result scenario.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return export.WriteScenarioComparison(f, result)
}

func writeReport(path string, result scenario.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return export.WriteComparisonReport(f, result)
}
