package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tdex-network/tronkit/pkg/explorer/trongrid"
	"github.com/tdex-network/tronkit/pkg/retry"
)

const (
	// FullNodeURLKey is the url of the TRON full node HTTP API
	FullNodeURLKey = "FULL_NODE_URL"
	// SolidityNodeURLKey is the url of the node serving solidified data, it
	// defaults to the full node one
	SolidityNodeURLKey = "SOLIDITY_NODE_URL"
	// APIKeyKey is the TronGrid api key sent with every request
	APIKeyKey = "API_KEY"
	// FeeLimitKey is the max amount of SUN to burn for energy when calling
	// smart contracts
	FeeLimitKey = "FEE_LIMIT"
	// PollIntervalKey is the interval in milliseconds between confirmation
	// checks of a transaction
	PollIntervalKey = "POLL_INTERVAL"
	// MaxAttemptsKey is the number of attempts of requests failing with a
	// transient error
	MaxAttemptsKey = "MAX_ATTEMPTS"
	// RequestsPerSecondKey is the max rate of requests sent to the node
	RequestsPerSecondKey = "REQUESTS_PER_SECOND"
	// RequestTimeoutKey is the timeout in seconds of a single request
	RequestTimeoutKey = "REQUEST_TIMEOUT"
	// DatadirKey is the local data directory to store the transaction history
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"

	DbLocation = "db"
	// StatsLocation is the file, relative to the datadir, metrics are
	// dumped to.
	StatsLocation = "stats"

	envPrefix = "TRONKIT"
)

var defaultDatadir = btcutil.AppDataDir("tronkit", false)

// Config holds the settings of the toolkit. Use Load to read it from the
// environment, every field has a documented default.
type Config struct {
	FullNodeURL       string
	SolidityNodeURL   string
	APIKey            string
	FeeLimit          int64
	PollInterval      time.Duration
	MaxAttempts       int
	RequestsPerSecond int
	RequestTimeout    time.Duration
	Datadir           string
	LogLevel          log.Level
}

// Load reads the config from the TRONKIT_* environment variables. Values in
// overrides, indexed by key, take precedence over the environment.
func Load(overrides map[string]interface{}) (*Config, error) {
	vip := viper.New()
	vip.SetEnvPrefix(envPrefix)
	vip.AutomaticEnv()

	vip.SetDefault(FullNodeURLKey, trongrid.DefaultEndpoint)
	vip.SetDefault(FeeLimitKey, 100000000)
	vip.SetDefault(PollIntervalKey, 3000)
	vip.SetDefault(MaxAttemptsKey, retry.DefaultMaxAttempts)
	vip.SetDefault(RequestsPerSecondKey, trongrid.DefaultRequestsPerSecond)
	vip.SetDefault(RequestTimeoutKey, 30)
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)

	for key, value := range overrides {
		vip.Set(key, value)
	}

	solidityNodeURL := vip.GetString(SolidityNodeURLKey)
	if len(solidityNodeURL) <= 0 {
		solidityNodeURL = vip.GetString(FullNodeURLKey)
	}

	cfg := &Config{
		FullNodeURL:       strings.TrimSuffix(vip.GetString(FullNodeURLKey), "/"),
		SolidityNodeURL:   strings.TrimSuffix(solidityNodeURL, "/"),
		APIKey:            vip.GetString(APIKeyKey),
		FeeLimit:          vip.GetInt64(FeeLimitKey),
		PollInterval:      time.Duration(vip.GetInt64(PollIntervalKey)) * time.Millisecond,
		MaxAttempts:       vip.GetInt(MaxAttemptsKey),
		RequestsPerSecond: vip.GetInt(RequestsPerSecondKey),
		RequestTimeout:    time.Duration(vip.GetInt64(RequestTimeoutKey)) * time.Second,
		Datadir:           vip.GetString(DatadirKey),
		LogLevel:          log.Level(vip.GetUint32(LogLevelKey)),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("error while validating config: %s", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for key, url := range map[string]string{
		FullNodeURLKey:     c.FullNodeURL,
		SolidityNodeURLKey: c.SolidityNodeURL,
	} {
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return fmt.Errorf("%s must be a valid http(s) url", key)
		}
	}
	if c.FeeLimit < 0 {
		return fmt.Errorf("%s must not be negative", FeeLimitKey)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%s must be a positive number", PollIntervalKey)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("%s must be a positive number", MaxAttemptsKey)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("%s must not be negative", RequestsPerSecondKey)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%s must be a positive number", RequestTimeoutKey)
	}
	if len(c.Datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}
	if c.LogLevel > log.TraceLevel {
		return fmt.Errorf("%s must be in range [0, %d]", LogLevelKey, log.TraceLevel)
	}
	return nil
}

// DbDir returns the path of the transaction history database.
func (c *Config) DbDir() string {
	return filepath.Join(c.Datadir, DbLocation)
}

func (c *Config) StatsFile() string {
	return filepath.Join(c.Datadir, StatsLocation)
}

// InitDatadir creates the data directory tree if not existing.
func (c *Config) InitDatadir() error {
	if err := makeDirectoryIfNotExists(c.DbDir()); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}
	return nil
}

// TrongridOpts returns the options to connect to the configured node.
func (c *Config) TrongridOpts() trongrid.Opts {
	return trongrid.Opts{
		FullNodeURL:       c.FullNodeURL,
		SolidityNodeURL:   c.SolidityNodeURL,
		APIKey:            c.APIKey,
		RequestsPerSecond: c.RequestsPerSecond,
		Timeout:           c.RequestTimeout,
	}
}

// RetryPolicy returns the policy for requests failing with transient errors.
func (c *Config) RetryPolicy() retry.Policy {
	policy := retry.DefaultPolicy()
	policy.MaxAttempts = c.MaxAttempts
	return policy
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
