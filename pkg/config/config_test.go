package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{Name: "scansvc", LogLevel: "info"},
		Server: ServerConfig{
			Port:        "8080",
			NotifyQueue: "leaf_scan_complete",
		},
		MySQL:  MySQLConfig{DSN: "user:pass@tcp(127.0.0.1:3306)/scansvc"},
		Lmstfy: LmstfyConfig{Host: "127.0.0.1", Port: 7777, ScanQueue: "leaf_scan"},
		Detector: DetectorConfig{
			Primary: PrimaryDetectorConfig{Script: "./ml/run_diagnosis.py"},
		},
		Workers: []WorkerConfig{{Name: "w1", QueueName: "leaf_scan"}},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cfg := validConfig()
	cfg.App.Name = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Detector.Primary.Script = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateServer(t *testing.T) {
	require.NoError(t, validConfig().ValidateServer())

	cfg := validConfig()
	cfg.Server.Port = ""
	assert.Error(t, cfg.ValidateServer())

	cfg = validConfig()
	cfg.MySQL.DSN = ""
	assert.Error(t, cfg.ValidateServer())
}

func TestValidateWorker(t *testing.T) {
	require.NoError(t, validConfig().ValidateWorker())

	cfg := validConfig()
	cfg.Lmstfy.Host = ""
	assert.Error(t, cfg.ValidateWorker())

	cfg = validConfig()
	cfg.Workers = nil
	assert.Error(t, cfg.ValidateWorker())
}
