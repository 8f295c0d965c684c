// Package sqldb persists completed scenario trials to Postgres, one
// row per simulated year, for the results webservice to query.
package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/bdenergy/transim/internal/pkg/msg"
	"github.com/bdenergy/transim/internal/pkg/scenario"
)

type Handler struct {
	mux    *sync.Mutex
	inbox  <-chan msg.Msg
	pid    uuid.UUID
	config config
	stop   chan bool
}

type config struct {
	Server   string `json:"Server"`
	Port     int    `json:"Port"`
	Username string `json:"Username"`
	Password string `json:"Password"`
	Database string `json:"Database"`
	SSLMode  string `json:"SSLMode"`
}

func (h Handler) PID() uuid.UUID {
	return h.pid
}

// New reads the connection configuration and subscribes the handler to
// the publisher's result stream.
func New(configPath string, system msg.Publisher) (Handler, error) {
	jsonConfig, err := ioutil.ReadFile(configPath)
	if err != nil {
		return Handler{}, err
	}
	cfg := config{}
	if err := json.Unmarshal(jsonConfig, &cfg); err != nil {
		return Handler{}, err
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}

	pid, err := uuid.NewUUID()
	if err != nil {
		return Handler{}, err
	}

	return Handler{
		mux:    &sync.Mutex{},
		inbox:  system.Subscribe(pid, msg.Result),
		pid:    pid,
		config: cfg,
		stop:   make(chan bool),
	}, nil
}

func (h *Handler) Stop() {
	h.stop <- true
}

// DB opens the Postgres connection described by the handler config.
func (h Handler) DB() (*sql.DB, error) {
	uri := fmt.Sprintf("postgres://%v:%v@%v:%v/%v?sslmode=%v",
		h.config.Username, h.config.Password, h.config.Server, h.config.Port, h.config.Database, h.config.SSLMode)
	return sql.Open("postgres", uri)
}

// Process drains the result stream into the run_years table until the
// inbox closes or Stop is called.
func (h Handler) Process() {
	db, err := h.DB()
	if err != nil {
		log.Println("[SQL]", err)
		return
	}
	defer db.Close()

	if err := initDBTables(db); err != nil {
		log.Println("[SQL]", err)
		return
	}

loop:
	for {
		select {
		case m, ok := <-h.inbox:
			if !ok {
				break loop
			}
			trial, ok := m.Payload().(scenario.TrialDone)
			if !ok || trial.Outcome.Err != nil {
				continue
			}
			if err := insertTrial(db, m.PID(), trial); err != nil {
				log.Printf("[SQL] error %s updating db", err)
			}
		case <-h.stop:
			break loop
		}
	}
	log.Println("[SQL] Process Shutdown")
}

func initDBTables(db *sql.DB) error {
	sqlStatement := `CREATE TABLE IF NOT EXISTS run_years(
		run_pid VARCHAR(36),
		scenario VARCHAR(64),
		year INT,
		demand_mwh DOUBLE PRECISION,
		generation_mwh DOUBLE PRECISION,
		unmet_mwh DOUBLE PRECISION,
		renewable_share DOUBLE PRECISION,
		capex_usd DOUBLE PRECISION,
		cumulative_capex_usd DOUBLE PRECISION,
		opex_usd DOUBLE PRECISION,
		lcoe_usd_mwh DOUBLE PRECISION,
		co2_tonnes DOUBLE PRECISION,
		water_m3 DOUBLE PRECISION,
		land_m2 DOUBLE PRECISION,
		PRIMARY KEY (run_pid, scenario, year))`
	_, err := db.Exec(sqlStatement)
	return err
}

func insertTrial(db *sql.DB, pid uuid.UUID, trial scenario.TrialDone) error {
	sqlStatement := `INSERT INTO run_years VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (run_pid, scenario, year) DO NOTHING`
	for _, row := range trial.Outcome.Table.Rows {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		_, err := db.ExecContext(ctx, sqlStatement,
			pid.String(),
			trial.Scenario,
			row.State.Year,
			row.State.DemandMWh,
			row.State.TotalGenerationMWh(),
			row.State.UnmetDemandMWh,
			row.State.RenewableShare,
			row.Econ.CapexUSD,
			row.Econ.CumulativeCapexUSD,
			row.Econ.OpexUSD(),
			row.Econ.LCOE,
			row.Env.CO2Tonnes,
			row.Env.WaterM3,
			row.Env.LandM2,
		)
		cancel()
		if err != nil {
			return err
		}
	}
	return nil
}
