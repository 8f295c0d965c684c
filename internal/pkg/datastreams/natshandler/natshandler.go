// Package natshandler republishes trial completions to a NATS subject
// so external dashboards can follow a long batch live.
package natshandler

import (
	"encoding/json"
	"io/ioutil"
	"log"
	"sync"

	"github.com/google/uuid"
	nats "github.com/nats-io/nats.go"

	"github.com/bdenergy/transim/internal/pkg/msg"
	"github.com/bdenergy/transim/internal/pkg/scenario"
	"github.com/bdenergy/transim/internal/pkg/sensitivity"
)

type Handler struct {
	mux    *sync.Mutex
	inbox  <-chan msg.Msg
	pid    uuid.UUID
	config config
	stop   chan bool
}

type config struct {
	Server  string `json:"Server"`
	Subject string `json:"Subject"`
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
	if cfg.Subject == "" {
		cfg.Subject = "transim.results"
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

func (h *Handler) StopProcess() {
	h.stop <- true
}

// Process forwards summarized result messages to the NATS subject
// until the inbox closes or StopProcess is called.
func (h Handler) Process() {
	nc, err := nats.Connect(h.config.Server)
	if err != nil {
		log.Println("[NATS]", err)
		return
	}
	defer nc.Close()

loop:
	for {
		select {
		case m, ok := <-h.inbox:
			if !ok {
				break loop
			}
			body, err := json.Marshal(summarize(m))
			if err != nil {
				log.Println("[NATS] marshal:", err)
				continue
			}
			if err := nc.Publish(h.config.Subject, body); err != nil {
				log.Println("[NATS] publish:", err)
			}
		case <-h.stop:
			break loop
		}
	}
	log.Println("[NATS] Process Shutdown")
}

// summary is the wire shape published per trial. Outcome carries the
// final-year renewable share for scenarios and the extracted scalar
// for sensitivity samples.
type summary struct {
	PID     string  `json:"pid"`
	Kind    string  `json:"kind"`
	Label   string  `json:"label"`
	Years   int     `json:"years"`
	Outcome float64 `json:"outcome"`
	Failed  bool    `json:"failed"`
}

func summarize(m msg.Msg) summary {
	out := summary{PID: m.PID().String()}
	switch payload := m.Payload().(type) {
	case scenario.TrialDone:
		out.Kind = "scenario"
		out.Label = payload.Scenario
		out.Years = len(payload.Outcome.Table.Rows)
		out.Failed = payload.Outcome.Err != nil
		if row, ok := payload.Outcome.Table.FinalYear(); ok {
			out.Outcome = row.State.RenewableShare
		}
	case sensitivity.Sample:
		out.Kind = "sensitivity"
		out.Label = payload.Parameter
		out.Outcome = payload.Outcome
		out.Failed = payload.Err != nil
	default:
		out.Kind = "unknown"
	}
	return out
}
