package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// ConfigPathEnv points at an optional YAML file; environment variables override it.
const ConfigPathEnv = "GATEWAY_CONFIG_PATH"

type GatewayConfig struct {
	Env          string       `yaml:"env" env:"GATEWAY_ENV" env-default:"local" env-description:"deployment environment name"`
	HTTPServer   HTTPServer   `yaml:"http_server"`
	GRPCServer   GRPCServer   `yaml:"grpc_server"`
	Storage      Storage      `yaml:"storage"`
	LogConfig    LogConfig    `yaml:"log_config"`
	Merchant     Merchant     `yaml:"merchant"`
	Tron         Tron         `yaml:"tron"`
	Wallets      Wallets      `yaml:"wallets"`
	Orders       Orders       `yaml:"orders"`
	Reconcile    Reconcile    `yaml:"reconcile"`
	Callback     Callback     `yaml:"callback"`
	KafkaService KafkaService `yaml:"kafka_service"`
	QRCode       QRCode       `yaml:"qr_code"`
}

type HTTPServer struct {
	Host            string        `yaml:"host" env:"UMPAY_HOST" env-default:"0.0.0.0"`
	Port            string        `yaml:"port" env:"UMPAY_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"15s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type GRPCServer struct {
	Enabled bool   `yaml:"enabled" env:"GRPC_ENABLED" env-default:"true"`
	Host    string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port    string `yaml:"port" env:"GRPC_PORT" env-default:"9090"`
}

type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite" env-description:"postgres, sqlite or memory"`
	DSN    string `yaml:"dsn" env:"UMPAY_DATABASE" env-default:"umpay.db" env-description:"postgres dsn or sqlite file"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
	LogOutput string `yaml:"log_output" env:"LOG_OUTPUT" env-default:"stdout"`
}

type Merchant struct {
	SecretKey          string `yaml:"secret_key" env:"UMPAY_SECRET_KEY" env-required:"true" env-description:"shared signing secret"`
	SignatureAlgorithm string `yaml:"signature_algorithm" env:"SIGNATURE_ALGORITHM" env-default:"md5" env-description:"md5 or sha256"`
}

type Tron struct {
	APIURL              string        `yaml:"api_url" env:"TRON_API_URL" env-default:"https://api.trongrid.io"`
	APIKey              string        `yaml:"api_key" env:"TRON_API_KEY"`
	USDTContractAddress string        `yaml:"usdt_contract_address" env:"USDT_CONTRACT_ADDRESS" env-default:"TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"`
	RequestTimeout      time.Duration `yaml:"request_timeout" env:"TRON_REQUEST_TIMEOUT" env-default:"10s"`
	TransferLimit       int           `yaml:"transfer_limit" env:"TRON_TRANSFER_LIMIT" env-default:"50"`
	OnlyConfirmed       bool          `yaml:"only_confirmed" env:"TRON_ONLY_CONFIRMED" env-default:"false"`
}

type Wallets struct {
	USDTAddress string `yaml:"usdt_address" env:"USDT_WALLET_ADDRESS"`
	TRXAddress  string `yaml:"trx_address" env:"TRX_WALLET_ADDRESS"`
}

type Orders struct {
	ExpireMinutes int `yaml:"expire_minutes" env:"ORDER_EXPIRE_MINUTES" env-default:"30"`
}

type Reconcile struct {
	Interval                   time.Duration `yaml:"interval" env:"RECONCILE_INTERVAL" env-default:"30s"`
	ExpireInterval             time.Duration `yaml:"expire_interval" env:"EXPIRE_INTERVAL" env-default:"5m"`
	ClaimTransfers             bool          `yaml:"claim_transfers" env:"RECONCILE_CLAIM_TRANSFERS" env-default:"true"`
	IgnoreTransfersBeforeOrder bool          `yaml:"ignore_transfers_before_order" env:"RECONCILE_IGNORE_OLD_TRANSFERS" env-default:"true"`
	ConfirmationBlocks         int           `yaml:"confirmation_blocks" env:"CONFIRMATION_BLOCKS" env-default:"1"`
}

type Callback struct {
	Timeout       time.Duration `yaml:"timeout" env:"CALLBACK_TIMEOUT" env-default:"10s"`
	RetryInterval time.Duration `yaml:"retry_interval" env:"CALLBACK_RETRY_INTERVAL" env-default:"1m"`
	MaxAttempts   int           `yaml:"max_attempts" env:"CALLBACK_MAX_ATTEMPTS" env-default:"5"`
	BaseBackoff   time.Duration `yaml:"base_backoff" env:"CALLBACK_BASE_BACKOFF" env-default:"30s"`
	MaxBackoff    time.Duration `yaml:"max_backoff" env:"CALLBACK_MAX_BACKOFF" env-default:"30m"`
	BatchSize     int           `yaml:"batch_size" env:"CALLBACK_BATCH_SIZE" env-default:"50"`
}

type KafkaService struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:"," env-description:"empty disables order events"`
	Topic   string   `yaml:"topic" env:"KAFKA_ORDER_TOPIC" env-default:"payment-order-events"`
}

type QRCode struct {
	BaseURL string `yaml:"base_url" env:"QR_CODE_BASE_URL" env-default:"https://api.qrserver.com/v1/create-qr-code/"`
	Size    string `yaml:"size" env:"QR_CODE_SIZE" env-default:"200x200"`
}

// Load reads the YAML file named by GATEWAY_CONFIG_PATH when set, otherwise the environment only.
func Load() (*GatewayConfig, error) {
	var cfg GatewayConfig

	configPath := os.Getenv(ConfigPathEnv)
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("failed to find config file: %w", err)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *GatewayConfig {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v\n", err)
	}
	return cfg
}

// Validate rejects values the gateway cannot run with. Missing wallet
// addresses are allowed and surface as unsupported currency at order creation.
func (c *GatewayConfig) Validate() error {
	switch c.Storage.Driver {
	case "postgres", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Merchant.SignatureAlgorithm {
	case "md5", "sha256":
	default:
		return fmt.Errorf("unknown signature algorithm %q", c.Merchant.SignatureAlgorithm)
	}
	if c.Orders.ExpireMinutes <= 0 {
		return fmt.Errorf("order expire minutes must be positive, got %d", c.Orders.ExpireMinutes)
	}
	if c.Reconcile.Interval <= 0 || c.Reconcile.ExpireInterval <= 0 || c.Callback.RetryInterval <= 0 {
		return fmt.Errorf("scheduler intervals must be positive")
	}
	if c.Callback.MaxAttempts <= 0 {
		return fmt.Errorf("callback max attempts must be positive, got %d", c.Callback.MaxAttempts)
	}
	return nil
}

func (c *GatewayConfig) OrderTTL() time.Duration {
	return time.Duration(c.Orders.ExpireMinutes) * time.Minute
}

func (c *GatewayConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%s", c.HTTPServer.Host, c.HTTPServer.Port)
}

func (c *GatewayConfig) GRPCAddress() string {
	return fmt.Sprintf("%s:%s", c.GRPCServer.Host, c.GRPCServer.Port)
}

// Usage prints every configuration variable with its default.
func Usage() {
	var cfg GatewayConfig
	header := "Gateway configuration, read from the environment or from $" + ConfigPathEnv + ":"
	cleanenv.FUsage(os.Stderr, &cfg, &header)()
}
