package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo MongoConfig
	Redis RedisConfig
	Chain ChainConfig
	Audit AuditConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=mineral_roles"`
}

type RedisConfig struct {
	Addr         string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password     string        `env:"REDIS_PASSWORD"`
	DB           int           `env:"REDIS_DB,       default=0"`
	NameCacheTTL time.Duration `env:"NAME_CACHE_TTL, default=5m"`
}

type ChainConfig struct {
	RPCURL              string        `env:"CHAIN_RPC_URL,         default=http://localhost:8545"`
	ChainID             int64         `env:"CHAIN_ID,              default=31337"`
	RolesManagerAddress string        `env:"ROLES_MANAGER_ADDRESS, default=0xcF8e0CeFeeCa887af0d1421896FB8bAF0697101b"`
	NameRegistryAddress string        `env:"NAME_REGISTRY_ADDRESS, default=0x3f8Fb8141E0F989F70F8A4C8b0CE3B8D81a0Ea21"`
	NameSuffix          string        `env:"NAME_SUFFIX,           default=.base"`
	OperatorKey         string        `env:"OPERATOR_KEY"`
	OperatorKeyFile     string        `env:"OPERATOR_KEYFILE"`
	OperatorPassphrase  string        `env:"OPERATOR_PASSPHRASE"`
	TxTimeout           time.Duration `env:"TX_TIMEOUT,            default=2m"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

// Validate reports settings that are present but unusable.
func (c *Config) Validate() error {
	var errs []error
	if c.Chain.RPCURL == "" {
		errs = append(errs, errors.New("CHAIN_RPC_URL is required"))
	}
	// Contract addresses are operator-supplied, so the EIP-55 checksum is not enforced.
	if !common.IsHexAddress(c.Chain.RolesManagerAddress) {
		errs = append(errs, fmt.Errorf("ROLES_MANAGER_ADDRESS %q is not an address", c.Chain.RolesManagerAddress))
	}
	if !common.IsHexAddress(c.Chain.NameRegistryAddress) {
		errs = append(errs, fmt.Errorf("NAME_REGISTRY_ADDRESS %q is not an address", c.Chain.NameRegistryAddress))
	}
	if c.Chain.NameSuffix == "" {
		errs = append(errs, errors.New("NAME_SUFFIX must not be empty"))
	}
	if c.Chain.OperatorKey != "" && c.Chain.OperatorKeyFile != "" {
		errs = append(errs, errors.New("set only one of OPERATOR_KEY and OPERATOR_KEYFILE"))
	}
	return errors.Join(errs...)
}

// IsDevelopment reports whether ENV selects development behaviour such as
// pretty logs.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev" || c.Env == "local"
}
