package config

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mselser95/triarb-tracker/pkg/types"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Chain
	EthRPCURL      string
	RouterAddress  string
	FactoryAddress string

	// RPC connection
	RPCConnectAttempts       int
	RPCReconnectInitialDelay time.Duration
	RPCReconnectMaxDelay     time.Duration
	RPCReconnectBackoffMult  float64

	// Scanning
	Tokens            []types.Token
	MinProfit         decimal.Decimal
	PollInterval      time.Duration
	ReferenceAmount   *big.Int
	ValuationRate     decimal.Decimal
	ValuationDecimals int32

	// Quote provider
	QuoteTimeout            time.Duration
	QuoteConcurrency        int
	BreakerFailureThreshold int
	BreakerCooldown         time.Duration

	// Token metadata
	TokenMetadataTTL time.Duration

	// Health
	HealthStaleAfter time.Duration // 0 = 3x poll interval

	// Storage
	StorageMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

const defaultReferenceAmount = "1000000000000000000"

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	var errs []error

	tokens, err := parseTokenList(os.Getenv("TOKEN_LIST"))
	errs = appendErr(errs, err)

	minProfit, err := getDecimalOrDefault("MIN_PROFIT_USD", "10")
	errs = appendErr(errs, err)

	valuationRate, err := getDecimalOrDefault("VALUATION_RATE", "2000")
	errs = appendErr(errs, err)

	referenceAmount, err := getBigIntOrDefault("REFERENCE_INPUT_AMOUNT", defaultReferenceAmount)
	errs = appendErr(errs, err)

	pollInterval, err := getSecondsOrDefault("POLL_INTERVAL", 600*time.Second)
	errs = appendErr(errs, err)

	if len(errs) > 0 {
		return nil, fmt.Errorf("parse config: %w", errors.Join(errs...))
	}

	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Chain
		EthRPCURL:      os.Getenv("ETH_RPC_URL"),
		RouterAddress:  normalizeAddress(os.Getenv("ROUTER_ADDRESS")),
		FactoryAddress: normalizeAddress(os.Getenv("FACTORY_ADDRESS")),

		// RPC connection defaults
		RPCConnectAttempts:       getIntOrDefault("RPC_CONNECT_ATTEMPTS", 5),
		RPCReconnectInitialDelay: getDurationOrDefault("RPC_RECONNECT_INITIAL_DELAY", 1*time.Second),
		RPCReconnectMaxDelay:     getDurationOrDefault("RPC_RECONNECT_MAX_DELAY", 30*time.Second),
		RPCReconnectBackoffMult:  getFloat64OrDefault("RPC_RECONNECT_BACKOFF_MULTIPLIER", 2.0),

		// Scanning defaults
		Tokens:            tokens,
		MinProfit:         minProfit,
		PollInterval:      pollInterval,
		ReferenceAmount:   referenceAmount,
		ValuationRate:     valuationRate,
		ValuationDecimals: int32(getIntOrDefault("VALUATION_DECIMALS", 18)),

		// Quote provider defaults
		QuoteTimeout:            getDurationOrDefault("QUOTE_TIMEOUT", 10*time.Second),
		QuoteConcurrency:        getIntOrDefault("QUOTE_CONCURRENCY", 6),
		BreakerFailureThreshold: getIntOrDefault("BREAKER_FAILURE_THRESHOLD", 20),
		BreakerCooldown:         getDurationOrDefault("BREAKER_COOLDOWN", 30*time.Second),

		TokenMetadataTTL: getDurationOrDefault("TOKEN_METADATA_TTL", 24*time.Hour),
		HealthStaleAfter: getDurationOrDefault("HEALTH_STALE_AFTER", 0),

		// Storage defaults
		StorageMode:  getEnvOrDefault("STORAGE_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "triarb"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "triarb123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "triarb_tracker"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
// Errors are *types.ConfigError.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return &types.ConfigError{Field: "HTTP_PORT", Message: "cannot be empty"}
	}

	if len(c.Tokens) < 3 {
		return &types.ConfigError{Field: "TOKEN_LIST", Message: fmt.Sprintf("need at least 3 tokens, got %d", len(c.Tokens))}
	}

	seen := make(map[types.Token]struct{}, len(c.Tokens))
	for _, token := range c.Tokens {
		if _, dup := seen[token]; dup {
			return &types.ConfigError{Field: "TOKEN_LIST", Message: fmt.Sprintf("duplicate token %s", token)}
		}
		seen[token] = struct{}{}
	}

	if !c.MinProfit.IsPositive() {
		return &types.ConfigError{Field: "MIN_PROFIT_USD", Message: fmt.Sprintf("must be positive, got %s", c.MinProfit)}
	}

	if c.PollInterval <= 0 {
		return &types.ConfigError{Field: "POLL_INTERVAL", Message: fmt.Sprintf("must be positive, got %v", c.PollInterval)}
	}

	if c.ReferenceAmount == nil || c.ReferenceAmount.Sign() <= 0 {
		return &types.ConfigError{Field: "REFERENCE_INPUT_AMOUNT", Message: "must be positive"}
	}

	if !c.ValuationRate.IsPositive() {
		return &types.ConfigError{Field: "VALUATION_RATE", Message: fmt.Sprintf("must be positive, got %s", c.ValuationRate)}
	}

	if c.ValuationDecimals < 0 || c.ValuationDecimals > 77 {
		return &types.ConfigError{Field: "VALUATION_DECIMALS", Message: fmt.Sprintf("must be between 0 and 77, got %d", c.ValuationDecimals)}
	}

	if c.QuoteConcurrency < 1 || c.QuoteConcurrency > 6 {
		return &types.ConfigError{Field: "QUOTE_CONCURRENCY", Message: fmt.Sprintf("must be between 1 and 6, got %d", c.QuoteConcurrency)}
	}

	if c.QuoteTimeout <= 0 {
		return &types.ConfigError{Field: "QUOTE_TIMEOUT", Message: "must be positive"}
	}

	if c.BreakerFailureThreshold <= 0 {
		return &types.ConfigError{Field: "BREAKER_FAILURE_THRESHOLD", Message: "must be positive"}
	}

	if c.BreakerCooldown <= 0 {
		return &types.ConfigError{Field: "BREAKER_COOLDOWN", Message: "must be positive"}
	}

	if c.StorageMode != "console" && c.StorageMode != "postgres" {
		return &types.ConfigError{Field: "STORAGE_MODE", Message: fmt.Sprintf("must be 'console' or 'postgres', got %q", c.StorageMode)}
	}

	return nil
}

// ValidateChain checks the settings needed to talk to the router.
func (c *Config) ValidateChain() error {
	if c.EthRPCURL == "" {
		return &types.ConfigError{Field: "ETH_RPC_URL", Message: "cannot be empty"}
	}

	if !common.IsHexAddress(c.RouterAddress) {
		return &types.ConfigError{Field: "ROUTER_ADDRESS", Message: fmt.Sprintf("not a valid address: %q", c.RouterAddress)}
	}

	if c.FactoryAddress != "" && !common.IsHexAddress(c.FactoryAddress) {
		return &types.ConfigError{Field: "FACTORY_ADDRESS", Message: fmt.Sprintf("not a valid address: %q", c.FactoryAddress)}
	}

	return nil
}

// StaleAfter returns the health staleness window.
func (c *Config) StaleAfter() time.Duration {
	if c.HealthStaleAfter > 0 {
		return c.HealthStaleAfter
	}
	return 3 * c.PollInterval
}

// parseTokenList splits a comma-separated address list and checksums each entry.
func parseTokenList(raw string) ([]types.Token, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	tokens := make([]types.Token, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !common.IsHexAddress(part) {
			return nil, &types.ConfigError{Field: "TOKEN_LIST", Message: fmt.Sprintf("entry %d is not a valid address: %q", i, part)}
		}
		tokens = append(tokens, types.Token(common.HexToAddress(part).Hex()))
	}

	return tokens, nil
}

func normalizeAddress(raw string) string {
	raw = strings.TrimSpace(raw)
	if !common.IsHexAddress(raw) {
		return raw
	}
	return common.HexToAddress(raw).Hex()
}

func appendErr(errs []error, err error) []error {
	if err != nil {
		return append(errs, err)
	}
	return errs
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

// maxSeconds is the largest whole number of seconds a time.Duration can hold.
const maxSeconds = math.MaxInt64 / int64(time.Second)

// getSecondsOrDefault accepts either a whole number of seconds ("600") or a Go duration ("10m").
func getSecondsOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}

	seconds, err := strconv.ParseInt(value, 10, 64)
	if err == nil {
		if seconds > maxSeconds || seconds < -maxSeconds {
			return 0, &types.ConfigError{Field: key, Message: fmt.Sprintf("out of range: %q", value)}
		}
		return time.Duration(seconds) * time.Second, nil
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, &types.ConfigError{Field: key, Message: fmt.Sprintf("not a number of seconds or duration: %q", value)}
	}

	return duration, nil
}

// Money and amounts must never silently fall back to a default.
func getDecimalOrDefault(key string, defaultValue string) (decimal.Decimal, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		value = defaultValue
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, &types.ConfigError{Field: key, Message: fmt.Sprintf("not a decimal: %q", value)}
	}

	return d, nil
}

func getBigIntOrDefault(key string, defaultValue string) (*big.Int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		value = defaultValue
	}

	n, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, &types.ConfigError{Field: key, Message: fmt.Sprintf("not an integer: %q", value)}
	}

	return n, nil
}
