// Package models defines the JSON row shapes served by the results
// webservice.
package models

// RunYear is one simulated year of one archived scenario trial.
type RunYear struct {
	RunPID             string  `json:"runPid"`
	Scenario           string  `json:"scenario"`
	Year               int     `json:"year"`
	DemandMWh          float64 `json:"demandMwh"`
	GenerationMWh      float64 `json:"generationMwh"`
	UnmetMWh           float64 `json:"unmetMwh"`
	RenewableShare     float64 `json:"renewableShare"`
	CapexUSD           float64 `json:"capexUsd"`
	CumulativeCapexUSD float64 `json:"cumulativeCapexUsd"`
	OpexUSD            float64 `json:"opexUsd"`
	LCOEUSDMWh         float64 `json:"lcoeUsdMwh"`
	CO2Tonnes          float64 `json:"co2Tonnes"`
	WaterM3            float64 `json:"waterM3"`
	LandM2             float64 `json:"landM2"`
}

// Scenario summarizes one archived scenario trial.
type Scenario struct {
	RunPID   string `json:"runPid"`
	Scenario string `json:"scenario"`
	Years    int    `json:"years"`
}
