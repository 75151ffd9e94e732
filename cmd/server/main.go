// Package main is the entry point for the wavetone API server
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/james-see/wavetone/pkg/api"
	"github.com/james-see/wavetone/pkg/config"
	"github.com/james-see/wavetone/pkg/converter"
	"github.com/james-see/wavetone/pkg/library"
	"github.com/james-see/wavetone/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Config file (default ~/.wavetone/config.yaml)")
	port := flag.Int("port", 0, "Server port (default from config, 8080)")
	noLibrary := flag.Bool("no-library", false, "Disable the score library endpoints")
	flag.Parse()

	if err := run(*configPath, *port, *noLibrary); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
}

func run(configPath string, port int, noLibrary bool) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.Config{Level: cfg.Log.Level, File: cfg.Log.File}); err != nil {
		return err
	}
	defer logger.Sync()

	if port == 0 {
		port = cfg.Server.Port
	}
	settings, err := cfg.Settings()
	if err != nil {
		return err
	}
	settings.BPM = api.DefaultScaleBPM

	convOpts := converter.DefaultOptions()
	convOpts.Render = cfg.Render()
	convOpts.Sequence.Release = cfg.Release()
	opts := api.Options{
		Converter: convOpts,
		Settings:  settings,
		Waveform:  cfg.Waveform(),
		Volume:    cfg.Volume(),
	}

	if !noLibrary {
		lib, err := library.Open(cfg.Library.Path)
		if err != nil {
			return err
		}
		defer lib.Close()
		opts.Library = lib
	}

	fmt.Printf("Starting wavetone API server on port %d...\n", port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", port)
	return api.StartServer(port, opts)
}
