package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/nkiryanov/streamcat/internal/flagx"
	"github.com/nkiryanov/streamcat/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "30s"
// or as integer nanoseconds.
type JsonConfig struct {
	ServerBaseURL        string         `json:"server_base_url"`
	RequestTimeout       timex.Duration `json:"request_timeout"`
	SessionDBPath        string         `json:"session_db_path"`
	SessionCheckInterval timex.Duration `json:"session_check_interval"`
}

// parseJson overlays Config with values loaded from a JSON file named by the
// -c/-config flags. Missing flag means no JSON is loaded. Zero-valued fields
// in the file leave the existing Config values untouched.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.SessionDBPath != "" {
		cfg.SessionDBPath = jc.SessionDBPath
	}
	if jc.SessionCheckInterval.Duration != 0 {
		cfg.SessionCheckInterval = time.Duration(jc.SessionCheckInterval.Duration)
	}
}
