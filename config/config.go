package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ecert/internal/contractinfo"
	"ecert/internal/domain/network"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Network   network.Descriptor
	Wallet    WalletConfig
	Contract  ContractConfig
	Database  DatabaseConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Environment string // "development" or "production"
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type WalletConfig struct {
	URL            string
	PrivateKey     string
	RequestTimeout time.Duration
}

type ContractConfig struct {
	Address string
}

type DatabaseConfig struct {
	Path string
}

type RateLimitConfig struct {
	MaxCalls int
	Window   time.Duration
}

// networkFile is the YAML form of the network descriptor.
type networkFile struct {
	ChainID            int64 `yaml:"chain_id"`
	network.Descriptor `yaml:",inline"`
}

// Load builds the configuration from the environment. Values from the given
// dotenv files (".env" when none are given) fill in variables that are not
// set in the process environment. Missing dotenv files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	e := env{file: map[string]string{}}
	for _, f := range envFiles {
		values, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
		for k, v := range values {
			if _, ok := e.file[k]; !ok {
				e.file[k] = v
			}
		}
	}

	descriptor, err := loadNetwork(e)
	if err != nil {
		return nil, err
	}

	return &Config{
		App: AppConfig{
			Environment: e.get("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Host:         e.get("SERVER_HOST", ""),
			Port:         e.get("SERVER_PORT", "8080"),
			ReadTimeout:  e.getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: e.getDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  e.getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Network: descriptor,
		Wallet: WalletConfig{
			URL:            e.get("WALLET_URL", descriptor.RPCURLs[0]),
			PrivateKey:     e.get("WALLET_PRIVATE_KEY", ""),
			RequestTimeout: e.getDuration("WALLET_REQUEST_TIMEOUT", 30*time.Second),
		},
		Contract: ContractConfig{
			Address: e.get("CONTRACT_ADDRESS", contractinfo.Address),
		},
		Database: DatabaseConfig{
			Path: e.get("DATABASE_PATH", "data/ecert.db"),
		},
		RateLimit: RateLimitConfig{
			MaxCalls: e.getInt("RATE_LIMIT_MAX_CALLS", 10),
			Window:   e.getDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
	}, nil
}

// loadNetwork starts from the local development chain, applies NETWORK_FILE
// and then the individual NETWORK_* variables.
func loadNetwork(e env) (network.Descriptor, error) {
	d := network.LocalDescriptor()

	if path := e.get("NETWORK_FILE", ""); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return d, fmt.Errorf("failed to read network file: %w", err)
		}
		nf := networkFile{ChainID: d.ID().Int64(), Descriptor: d}
		if err := yaml.Unmarshal(data, &nf); err != nil {
			return d, fmt.Errorf("failed to parse network file: %w", err)
		}
		d = nf.Descriptor
		d.ChainID = (*hexutil.Big)(big.NewInt(nf.ChainID))
	}

	// Malformed numbers fail the load instead of falling back to the default.
	id, err := e.parseInt64("NETWORK_CHAIN_ID", d.ID().Int64())
	if err != nil {
		return d, err
	}
	d.ChainID = (*hexutil.Big)(big.NewInt(id))

	decimals, err := e.parseInt64("NETWORK_CURRENCY_DECIMALS", int64(d.NativeCurrency.Decimals))
	if err != nil {
		return d, err
	}
	d.NativeCurrency.Decimals = int(decimals)

	d.ChainName = e.get("NETWORK_CHAIN_NAME", d.ChainName)
	d.NativeCurrency.Name = e.get("NETWORK_CURRENCY_NAME", d.NativeCurrency.Name)
	d.NativeCurrency.Symbol = e.get("NETWORK_CURRENCY_SYMBOL", d.NativeCurrency.Symbol)
	d.RPCURLs = e.getList("NETWORK_RPC_URLS", d.RPCURLs)

	if err := d.Validate(); err != nil {
		return d, err
	}
	return d, nil
}

// Validate checks the settings every entry point depends on.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if !common.IsHexAddress(c.Contract.Address) {
		return fmt.Errorf("invalid contract address: %q", c.Contract.Address)
	}
	if c.App.Environment != "development" && c.App.Environment != "production" {
		return fmt.Errorf("invalid environment: %s (must be 'development' or 'production')", c.App.Environment)
	}
	return c.Network.Validate()
}

// IsDevelopment reports whether the development logger should be used.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// Helper functions

// env resolves variables from the process environment first, then from
// dotenv files.
type env struct {
	file map[string]string
}

func (e env) get(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if value := e.file[key]; value != "" {
		return value
	}
	return defaultValue
}

func (e env) getInt(key string, defaultValue int) int {
	if value := e.get(key, ""); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// parseInt64 accepts decimal or 0x-prefixed values and fails on anything else.
func (e env) parseInt64(key string, defaultValue int64) (int64, error) {
	value := e.get(key, "")
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.ParseInt(value, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return intValue, nil
}

func (e env) getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := e.get(key, ""); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func (e env) getList(key string, defaultValue []string) []string {
	value := e.get(key, "")
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
