package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	Rc "github.com/mkarrer/rainflow/counting"
	Rd "github.com/mkarrer/rainflow/display"
	Ro "github.com/mkarrer/rainflow/obvy"
	Rp "github.com/mkarrer/rainflow/plugin"
)

func init() {
	User := Rc.FillEnvVar("USER")
	fmt.Printf("Rainflow initializing for ... %s\n", User)
}

// loadSeries reads the raw load series from a URL or a local file.
func loadSeries(source string) ([]float64, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return Rc.FetchSeries(source)
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Rc.ParseSeries(f)
}

func main() {
	configFile := Rc.FillEnvVar("RAINFLOW_CONFIG")
	if configFile == "ENOENT" {
		configFile = "rainflow.json"
	}

	configs, err := Rc.LoadConfigFileName(configFile)
	if err != nil {
		log.Fatalf("Could not load config %s: %v", configFile, err)
	}
	if len(configs) == 0 {
		log.Fatalf("Config %s holds no counting runs", configFile)
	}

	// The display serves one counting run at a time
	cf := configs[0]
	slog.Info("Starting counting run", slog.String("ID", cf.ID), slog.String("Source", cf.Source))

	// Tracing is driven entirely by the OTel environment
	if Rc.FillEnvVar("OTEL_SERVICE_NAME") != "ENOENT" {
		otelShutdown, err := Ro.InitOTelHNY()
		if err != nil {
			slog.Error("Could not configure tracing", slog.Any("Error", err))
		} else {
			defer otelShutdown()
		}
	}

	session, err := Rc.SessionFromConfig(cf)
	if err != nil {
		log.Fatalf("Bad counting config: %v", err)
	}

	// Wire collaborator plugins before Init
	if cf.BadgerPath != "" {
		store, err := Rp.NewBadgerStore(cf.BadgerPath, 100)
		if err != nil {
			log.Fatalf("Could not open turning-point store: %v", err)
		}
		defer store.Close()
		session.Store = store
	} else if store, err := Rd.InitBadgerStore(session); err == nil && store != nil {
		defer store.Close()
	}
	if err := Rd.InitTransformer(session, cf.Transformer); err != nil {
		log.Fatalf("Could not wire transformer: %v", err)
	}
	Rd.InitHistory(session)

	if err := session.Init(); err != nil {
		log.Fatalf("Could not init counting session: %v", err)
	}

	values, err := loadSeries(cf.Source)
	if err != nil {
		log.Fatalf("Could not load series %s: %v", cf.Source, err)
	}
	slog.Info("Series loaded", slog.Int("Samples", len(values)))

	policy, err := Rc.ParsePolicy(cf.Policy)
	if err != nil {
		log.Fatalf("Bad finalize policy: %v", err)
	}

	listen := cf.Listen
	if listen == "" {
		listen = ":8090"
	}
	sampler := &Rd.SliceSampler{Values: values, Batch: 256}

	if Rc.FillEnvVar("RAINFLOW_NOTUI") != "ENOENT" {
		if err := Rd.StartWebNoTUI(session, sampler, policy, listen); err != nil {
			slog.Error("Problem starting web server", slog.Any("Error", err))
			panic("Failed to start web server")
		}
		return
	}

	if err := Rd.StartMatrixView(session, sampler, policy, listen); err != nil {
		slog.Error("Problem starting MatrixView", slog.Any("Error", err))
		panic("Failed to start matrix view")
	}
}
