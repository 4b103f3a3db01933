package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Host     string   `koanf:"host"`
	Frontend Frontend `koanf:"frontend"`
	Database Database `koanf:"db"`
	Report   Report   `koanf:"report"`
	Scoring  Scoring  `koanf:"scoring"`
}

type Frontend struct {
	Enabled bool `koanf:"enabled"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

// Report controls the adaptive-window comparison reports.
type Report struct {
	CurrentTargetDays int    `koanf:"currenttargetdays"`
	BaselineCapDays   int    `koanf:"baselinecapdays"`
	SearchbackDays    int    `koanf:"searchbackdays"`
	Currency          string `koanf:"currency"`
}

// Scoring carries the leaderboard weight split. The remaining penalties and
// caps keep their built-in defaults.
type Scoring struct {
	DeliveryWeight float64 `koanf:"deliveryweight"`
	ImpactWeight   float64 `koanf:"impactweight"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Host: "http://localhost:3000",
		Frontend: Frontend{
			Enabled: true,
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "qmpulse",
			Pass:   "",
			Name:   "qmpulse",
			Schema: "qmpulse",
		},
		Report: Report{
			CurrentTargetDays: 14,
			BaselineCapDays:   90,
			SearchbackDays:    180,
			Currency:          "PLN",
		},
		Scoring: Scoring{
			DeliveryWeight: 0.55,
			ImpactWeight:   0.45,
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "QMPULSE_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "QMPULSE_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
