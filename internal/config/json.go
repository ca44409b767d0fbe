package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] with JSON-friendly field
// types (durations as strings like "30s").
type StructuredJSONConfig struct {
	Host struct {
		Identity      string   `json:"identity"`
		TokenIssuer   string   `json:"token_issuer"`
		TokenDuration Duration `json:"token_duration"`
		MasterKey     string   `json:"master_key"`
	} `json:"host,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`

		Drive struct {
			RootDir string `json:"root_dir"`
		} `json:"drive,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Workers struct {
		OutboxInterval  Duration `json:"outbox_interval"`
		OutboxBatchSize int      `json:"outbox_batch_size"`
		SweepInterval   Duration `json:"sweep_interval"`
		SweepIdleAfter  Duration `json:"sweep_idle_after"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Host: Host{
			Identity:      jsonCfg.Host.Identity,
			TokenIssuer:   jsonCfg.Host.TokenIssuer,
			TokenDuration: time.Duration(jsonCfg.Host.TokenDuration),
			MasterKey:     jsonCfg.Host.MasterKey,
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
			Drive: Drive{
				RootDir: jsonCfg.Storage.Drive.RootDir,
			},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Workers: Workers{
			OutboxInterval:  time.Duration(jsonCfg.Workers.OutboxInterval),
			OutboxBatchSize: jsonCfg.Workers.OutboxBatchSize,
			SweepInterval:   time.Duration(jsonCfg.Workers.SweepInterval),
			SweepIdleAfter:  time.Duration(jsonCfg.Workers.SweepIdleAfter),
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
