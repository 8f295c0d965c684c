package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"

	_ "github.com/lib/pq"

	"github.com/bdenergy/transim/internal/pkg/webservice"
)

type config struct {
	Server   string `json:"Server"`
	Port     int    `json:"Port"`
	Username string `json:"Username"`
	Password string `json:"Password"`
	Database string `json:"Database"`
	SSLMode  string `json:"SSLMode"`
	Listen   string `json:"Listen"`
}

func main() {
	configPath := flag.String("config", "./config/webservice.json", "webservice config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalln("[Main]", err)
	}

	uri := fmt.Sprintf("postgres://%v:%v@%v:%v/%v?sslmode=%v",
		cfg.Username, cfg.Password, cfg.Server, cfg.Port, cfg.Database, cfg.SSLMode)
	db, err := sql.Open("postgres", uri)
	if err != nil {
		log.Fatalln("[Main]", err)
	}
	defer db.Close()

	app := webservice.App{DB: db, Config: webservice.Config{URL: cfg.Server, Port: cfg.Listen}}
	r := app.Router()
	http.Handle("/", r)

	log.Println("Starting Server on Port", cfg.Listen)
	log.Fatalln(http.ListenAndServe(cfg.Listen, r))
}

func loadConfig(path string) (config, error) {
	jsonConfig, err := ioutil.ReadFile(path)
	if err != nil {
		return config{}, err
	}
	cfg := config{SSLMode: "disable", Listen: ":8080"}
	err = json.Unmarshal(jsonConfig, &cfg)
	return cfg, err
}
