// Package config loads and persists the tool configuration (YAML file with
// defaults written on first run).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Preference holds tunables for network calls, polling and verification.
// Durations are stored as seconds to keep the file format plain.
type Preference struct {
	// TimeoutSeconds bounds every single HTTP call.
	TimeoutSeconds float64 `yaml:"timeout_seconds"`
	// MaxRetryTimes bounds transport-level retries inside the HTTP client.
	MaxRetryTimes int `yaml:"max_retry_times"`
	// RetryIntervalSeconds spaces transport-level retries.
	RetryIntervalSeconds float64 `yaml:"retry_interval_seconds"`
	// SleepSeconds is the unconditional cooldown after every privileged attempt.
	SleepSeconds float64 `yaml:"sleep_seconds"`

	// QRWaitSeconds is the total window for the scan-status poll.
	QRWaitSeconds float64 `yaml:"qrcode_wait_seconds"`
	// QRIntervalSeconds is the pause between scan-status polls.
	QRIntervalSeconds float64 `yaml:"qrcode_query_interval_seconds"`
	// GameTokenAppID identifies this application in the QR login flow.
	GameTokenAppID string `yaml:"game_token_app_id"`

	// GlobalSolver selects the tool-wide solver settings below over the
	// per-account ones.
	GlobalSolver bool `yaml:"global_solver"`
	// SolverURL is the verification solving endpoint (empty disables solving).
	SolverURL string `yaml:"solver_url,omitempty"`
	// SolverParams are extra query parameters sent to the solver.
	SolverParams map[string]string `yaml:"solver_params,omitempty"`
	// SolverBody is the JSON body template; {gt} and {challenge} are
	// substituted with the actual challenge fields before sending.
	SolverBody map[string]string `yaml:"solver_body,omitempty"`
}

// Timeout returns the per-call HTTP budget.
func (p Preference) Timeout() time.Duration { return secs(p.TimeoutSeconds) }

// RetryInterval returns the transport retry spacing.
func (p Preference) RetryInterval() time.Duration { return secs(p.RetryIntervalSeconds) }

// Sleep returns the post-attempt cooldown.
func (p Preference) Sleep() time.Duration { return secs(p.SleepSeconds) }

// QRWait returns the total poll window.
func (p Preference) QRWait() time.Duration { return secs(p.QRWaitSeconds) }

// QRInterval returns the poll spacing.
func (p Preference) QRInterval() time.Duration { return secs(p.QRIntervalSeconds) }

// QRAttempts returns how many status polls fit into the wait window.
func (p Preference) QRAttempts() int {
	if p.QRIntervalSeconds <= 0 {
		return 1
	}
	n := int(p.QRWaitSeconds/p.QRIntervalSeconds + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}

func secs(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// SaltConfig carries the request-signing salts. Protocol-fixed values,
// not secrets.
type SaltConfig struct {
	IOS     string `yaml:"ios"`
	Android string `yaml:"android"`
	Data    string `yaml:"data"`
	Params  string `yaml:"params"`
	Prod    string `yaml:"prod"`
}

// DeviceConfig carries the header constants privileged requests must send.
type DeviceConfig struct {
	UserAgentMobile  string `yaml:"user_agent_mobile"`
	UserAgentAndroid string `yaml:"user_agent_android"`
	DeviceModel      string `yaml:"device_model"`
	DeviceName       string `yaml:"device_name"`
	SysVersion       string `yaml:"sys_version"`
	Channel          string `yaml:"channel"`
	AppVersion       string `yaml:"app_version"`
}

// Config is the full tool configuration.
type Config struct {
	Preference Preference   `yaml:"preference"`
	Salts      SaltConfig   `yaml:"salts"`
	Device     DeviceConfig `yaml:"device"`

	// DataFile is the JSON account store location.
	DataFile string `yaml:"data_file"`
	// PostgresDSN, when set, selects the Postgres account store instead.
	PostgresDSN string `yaml:"postgres_dsn,omitempty"`
	// WebhookURL, when set, receives a JSON notification per finished task.
	WebhookURL string `yaml:"webhook_url,omitempty"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Preference: Preference{
			TimeoutSeconds:       10,
			MaxRetryTimes:        3,
			RetryIntervalSeconds: 2,
			SleepSeconds:         2,
			QRWaitSeconds:        120,
			QRIntervalSeconds:    1,
			GameTokenAppID:       "2",
			SolverBody:           map[string]string{"gt": "{gt}", "challenge": "{challenge}"},
		},
		Salts: SaltConfig{
			IOS:     "9ttJY72HxbjwWRNHJvn0n2AYue47nYsK",
			Android: "BIPaooxbWZW02fGHZL1If26mYCljPgst",
			Data:    "t0qEgfub6cvueAPgR5m9aQWWVciEer7v",
			Params:  "xV8v4Qu54lUKrEYFZkJhB8cuOh9Asafs",
			Prod:    "JwYDpKvLj6MrMqqYU6jTKF17KNO2PXoS",
		},
		Device: DeviceConfig{
			UserAgentMobile: "Mozilla/5.0 (iPhone; CPU iPhone OS 15_4 like Mac OS X) " +
				"AppleWebKit/605.1.15 (KHTML, like Gecko) miHoYoBBS/2.63.1",
			UserAgentAndroid: "Mozilla/5.0 (Linux; Android 11; MI 8 SE Build/RQ3A.211001.001; wv) " +
				"AppleWebKit/537.36 (KHTML, like Gecko) Version/4.0 Chrome/104.0.5112.97 " +
				"Mobile Safari/537.36 miHoYoBBS/2.63.1",
			DeviceModel: "iPhone10,2",
			DeviceName:  "iPhone",
			SysVersion:  "16.2",
			Channel:     "appstore",
			AppVersion:  "2.63.1",
		},
		DataFile: "data/accounts.json",
	}
}

// Load reads the config file, creating it with defaults when missing.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		if werr := Save(path, cfg); werr != nil {
			return cfg, fmt.Errorf("write default config: %w", werr)
		}
		return cfg, nil
	}
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config file, creating parent directories as needed.
func Save(path string, cfg Config) error {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}
