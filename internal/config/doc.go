// Package config provides configuration parsing for DNA hosts.
//
// The configuration lives in dna.json or dna.yaml at the project root.
// This package handles loading, saving and validating it, and building the
// slog logger it describes.
//
// # Configuration File Structure
//
//	{
//	  "debug": false,
//	  "log": {"level": "info", "format": "text"},
//	  "server": {"host": "localhost", "port": 4000, "encoding": "json"},
//	  "metrics": {"enabled": true, "namespace": "dna", "path": "/metrics"},
//	  "tracing": {"enabled": false, "tracerName": "dna"},
//	  "scheduler": {"maxPasses": 100}
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	logger := cfg.Logger(os.Stderr)
package config
