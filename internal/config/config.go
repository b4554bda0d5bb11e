package config

import (
	"fmt"
	"os"
	"time"

	"prediction_market/internal/domain/entity"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Mint ABI variants observed across token deployments.
const (
	MintVariantToAmount = "toAmount" // mint(address to, uint256 amount)
	MintVariantAmount   = "amount"   // mint(uint256 amount)
)

// Config holds the overall configuration for the application.
type Config struct {
	Server         ServerConfig             `yaml:"server"`
	Logging        LoggingConfig            `yaml:"logging"`
	Wallet         WalletConfig             `yaml:"wallet"`
	NetworkID      string                   `yaml:"networkId"`
	Network        entity.NetworkDefinition `yaml:"network"`
	Contracts      ContractsConfig          `yaml:"contracts"`
	Tx             TxConfig                 `yaml:"tx"`
	Comments       CommentsConfig           `yaml:"comments"`
	Notifications  NotificationsConfig      `yaml:"notifications"`
	RateLimit      RateLimitConfig          `yaml:"rateLimit"`
	CommentsClient CommentsClientConfig     `yaml:"commentsClient"`
}

// ServerConfig holds the server-specific configuration.
type ServerConfig struct {
	Port          string   `yaml:"port"`
	ReadTimeout   int      `yaml:"readTimeout"`
	WriteTimeout  int      `yaml:"writeTimeout"`
	IdleTimeout   int      `yaml:"idleTimeout"`
	AllowOrigins  []string `yaml:"allowOrigins"`
	EnablePprof   bool     `yaml:"enablePprof"`
	EnableSwagger bool     `yaml:"enableSwagger"` // UI at /swagger/index.html
	SwaggerSpec   string   `yaml:"swaggerSpec"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
	File  string `yaml:"file"`
}

// WalletConfig describes the wallet JSON-RPC endpoint.
type WalletConfig struct {
	RPCURL            string  `yaml:"rpcURL"`
	RequestTimeoutMs  int64   `yaml:"requestTimeoutMs"`
	PollIntervalMs    int64   `yaml:"pollIntervalMs"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

// ContractsConfig holds deployed contract addresses.
type ContractsConfig struct {
	Market        string `yaml:"market"`
	Token         string `yaml:"token"`
	TokenDecimals uint8  `yaml:"tokenDecimals"`
	MintVariant   string `yaml:"mintVariant"`
	ApproveAmount string `yaml:"approveAmount"`
	MintAmount    string `yaml:"mintAmount"`
}

// TxConfig tunes the transaction pipeline and session reloads.
type TxConfig struct {
	MaxRetries            int   `yaml:"maxRetries"`
	RetryBackoffMs        int64 `yaml:"retryBackoffMs"`
	ReceiptPollIntervalMs int64 `yaml:"receiptPollIntervalMs"`
	ReceiptTimeoutSec     int64 `yaml:"receiptTimeoutSec"`
	ReloadDelayMs         int64 `yaml:"reloadDelayMs"`
	MaxConcurrentReads    int   `yaml:"maxConcurrentReads"`
}

// CommentsConfig holds configuration for the comments store.
type CommentsConfig struct {
	DBPath           string `yaml:"dbPath"`
	MaxContentLength int    `yaml:"maxContentLength"`
}

// NotificationsConfig holds configuration for the toast feed.
type NotificationsConfig struct {
	TTLSeconds int `yaml:"ttlSeconds"`
}

// RateLimitConfig bounds comment posting per client.
type RateLimitConfig struct {
	CommentsPerMinute int `yaml:"commentsPerMinute"`
	Burst             int `yaml:"burst"`
}

// CommentsClientConfig configures the CLI's comments API client.
type CommentsClientConfig struct {
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		logrus.Errorf("Failed to parse config data from %s: %v", path, err)
		return nil, fmt.Errorf("failed to parse config data from %s: %w", path, err)
	}

	logrus.Info("Configuration loaded successfully.")
	return cfg, nil
}

// Parse decodes YAML configuration, applies defaults and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout == 0 {
		// confirmations hold state-changing requests open until the user answers
		cfg.Server.WriteTimeout = 300
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Wallet.RequestTimeoutMs == 0 {
		cfg.Wallet.RequestTimeoutMs = 120000
	}
	if cfg.Wallet.PollIntervalMs == 0 {
		cfg.Wallet.PollIntervalMs = 1000
		logrus.Infof("Wallet.PollIntervalMs not set, defaulting to %d ms", cfg.Wallet.PollIntervalMs)
	}
	if cfg.Wallet.RequestsPerSecond == 0 {
		cfg.Wallet.RequestsPerSecond = 20
	}
	if cfg.Wallet.Burst == 0 {
		cfg.Wallet.Burst = 5
	}

	if cfg.NetworkID == "" && cfg.Network.ChainID == 0 {
		logrus.Info("Network not set, the Etherlink Testnet definition will be used")
	}

	if cfg.Contracts.TokenDecimals == 0 {
		cfg.Contracts.TokenDecimals = 6
	}
	if cfg.Contracts.MintVariant == "" {
		cfg.Contracts.MintVariant = MintVariantToAmount
	}
	if cfg.Contracts.ApproveAmount == "" {
		cfg.Contracts.ApproveAmount = "1000000"
	}
	if cfg.Contracts.MintAmount == "" {
		cfg.Contracts.MintAmount = "1000"
	}

	if cfg.Tx.MaxRetries == 0 {
		cfg.Tx.MaxRetries = 3
	}
	if cfg.Tx.RetryBackoffMs == 0 {
		cfg.Tx.RetryBackoffMs = 2000
	}
	if cfg.Tx.ReceiptPollIntervalMs == 0 {
		cfg.Tx.ReceiptPollIntervalMs = 2000
	}
	if cfg.Tx.ReceiptTimeoutSec == 0 {
		cfg.Tx.ReceiptTimeoutSec = 180
	}
	if cfg.Tx.ReloadDelayMs == 0 {
		cfg.Tx.ReloadDelayMs = 1000
	}
	if cfg.Tx.MaxConcurrentReads == 0 {
		cfg.Tx.MaxConcurrentReads = 8
	}

	if cfg.Comments.DBPath == "" {
		cfg.Comments.DBPath = "data/comments.db"
	}
	if cfg.Comments.MaxContentLength == 0 {
		cfg.Comments.MaxContentLength = 1000
	}
	if cfg.Notifications.TTLSeconds == 0 {
		cfg.Notifications.TTLSeconds = 30
	}
	if cfg.RateLimit.CommentsPerMinute == 0 {
		cfg.RateLimit.CommentsPerMinute = 10
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 3
	}
	if cfg.CommentsClient.BaseURL == "" {
		cfg.CommentsClient.BaseURL = "http://127.0.0.1:8080"
	}
	if cfg.CommentsClient.RequestTimeoutMillis == 0 {
		cfg.CommentsClient.RequestTimeoutMillis = 10000
	}
}

// Validate checks values that have no sensible default.
func (cfg *Config) Validate() error {
	switch cfg.Contracts.MintVariant {
	case MintVariantToAmount, MintVariantAmount:
	default:
		return fmt.Errorf("contracts.mintVariant must be %q or %q, got %q",
			MintVariantToAmount, MintVariantAmount, cfg.Contracts.MintVariant)
	}
	if cfg.Network.ChainID == 0 {
		return nil
	}
	if cfg.Network.Name == "" {
		return fmt.Errorf("network.name is required when network.chainId is set")
	}
	if len(cfg.Network.RPCURLs) == 0 {
		logrus.Warnf("Network '%s' (ChainID: %d) has no rpcUrls; wallets may refuse to register it.", cfg.Network.Name, cfg.Network.ChainID)
	}
	return nil
}

// ReceiptPollInterval returns the receipt polling interval.
func (t TxConfig) ReceiptPollInterval() time.Duration {
	return time.Duration(t.ReceiptPollIntervalMs) * time.Millisecond
}

// ReceiptTimeout returns how long to wait for a receipt.
func (t TxConfig) ReceiptTimeout() time.Duration {
	return time.Duration(t.ReceiptTimeoutSec) * time.Second
}

// RetryBackoff returns the fixed wait between transient failures.
func (t TxConfig) RetryBackoff() time.Duration {
	return time.Duration(t.RetryBackoffMs) * time.Millisecond
}

// ReloadDelay returns the wait before reloading after a chain change.
func (t TxConfig) ReloadDelay() time.Duration {
	return time.Duration(t.ReloadDelayMs) * time.Millisecond
}
