// Package mongodb archives completed trial results as documents. The
// handler subscribes to a batch runner's result stream and drains it
// into a collection until stopped.
package mongodb

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bdenergy/transim/internal/pkg/msg"
)

type Handler struct {
	mux    *sync.Mutex
	inbox  <-chan msg.Msg
	pid    uuid.UUID
	config config
	stop   chan bool
}

type config struct {
	URI        string `json:"URI"`
	Database   string `json:"Database"`
	Collection string `json:"Collection"`
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

// Process connects and archives result messages until the inbox closes
// or StopProcess is called.
func (h Handler) Process() {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(h.config.URI))
	cancel()
	if err != nil {
		log.Println("[MongoDB]", err)
		return
	}
	defer client.Disconnect(context.TODO())

	coll := client.Database(h.config.Database).Collection(h.config.Collection)

loop:
	for {
		select {
		case m, ok := <-h.inbox:
			if !ok {
				break loop
			}
			doc := bson.M{
				"pid":      m.PID().String(),
				"received": time.Now().UTC(),
				"result":   m.Payload(),
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_, err := coll.InsertOne(ctx, doc)
			cancel()
			if err != nil {
				log.Println("[MongoDB] insert:", err)
			}
		case <-h.stop:
			break loop
		}
	}
	log.Println("[MongoDB] Process Shutdown")
}
