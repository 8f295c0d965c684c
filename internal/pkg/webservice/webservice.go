// Package webservice serves archived simulation results over HTTP from
// the SQL store fed by the sqldb datastream.
package webservice

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bdenergy/transim/internal/pkg/webservice/models"
)

type Config struct {
	URL  string `json:"URL"`
	Port string `json:"Port"`
}

type App struct {
	DB     *sql.DB
	Config Config
}

// Router builds the HTTP route table for the app.
func (app *App) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", app.BaseHandler)
	r.HandleFunc("/scenarios", app.ScenariosHandler).Methods("GET")
	r.HandleFunc("/scenarios/{scenario}/years", app.YearsHandler).Methods("GET")
	return r
}

func (app *App) BaseHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(http.StatusOK)
}

// ScenariosHandler lists the archived scenario trials.
func (app *App) ScenariosHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")

	rows, err := app.DB.Query(`SELECT run_pid, scenario, COUNT(*) FROM run_years GROUP BY run_pid, scenario ORDER BY scenario`)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	scenarios := []models.Scenario{}
	for rows.Next() {
		s := models.Scenario{}
		if err := rows.Scan(&s.RunPID, &s.Scenario, &s.Years); err != nil {
			log.Println("malformed row:", err)
			continue
		}
		scenarios = append(scenarios, s)
	}
	writeJSON(w, scenarios)
}

// YearsHandler returns the year series for one archived scenario.
func (app *App) YearsHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")

	rows, err := app.DB.Query(`SELECT run_pid, scenario, year, demand_mwh, generation_mwh, unmet_mwh,
		renewable_share, capex_usd, cumulative_capex_usd, opex_usd, lcoe_usd_mwh, co2_tonnes, water_m3, land_m2
		FROM run_years WHERE scenario = $1 ORDER BY year`, vars["scenario"])
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer rows.Close()

	years := []models.RunYear{}
	for rows.Next() {
		y := models.RunYear{}
		err := rows.Scan(&y.RunPID, &y.Scenario, &y.Year, &y.DemandMWh, &y.GenerationMWh, &y.UnmetMWh,
			&y.RenewableShare, &y.CapexUSD, &y.CumulativeCapexUSD, &y.OpexUSD, &y.LCOEUSDMWh,
			&y.CO2Tonnes, &y.WaterM3, &y.LandM2)
		if err != nil {
			log.Println("malformed row:", err)
			continue
		}
		years = append(years, y)
	}
	if len(years) == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, years)
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Println("malformed JSON:", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Println("write:", err)
	}
}
