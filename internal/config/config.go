package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"suibot/internal/sui"
)

// Bot modes select which command modules are registered.
const (
	ModeBalance = "balance"
	ModeGame    = "game"
	ModeAll     = "all"
)

var (
	ErrInvalidMode    = errors.New("invalid bot mode")
	ErrUnknownNetwork = errors.New("unknown sui network")
)

var networkEndpoints = map[string]string{
	"localnet": "http://127.0.0.1:9000",
	"devnet":   "https://fullnode.devnet.sui.io:443",
	"testnet":  "https://fullnode.testnet.sui.io:443",
	"mainnet":  "https://fullnode.mainnet.sui.io:443",
}

type Config struct {
	LogLevel string  `env:"LOG_LEVEL" env-default:"info"`
	LogDir   string  `env:"LOG_DIR" env-default:"logs"`
	Mode     string  `env:"BOT_MODE" env-default:"game"`
	Discord  Discord `env-prefix:"DISCORD_"`
	Sui      Sui     `env-prefix:"SUI_"`
}

type Discord struct {
	Token          string `env:"TOKEN" env-required:"true"`
	GuildID        string `env:"GUILD_ID"`
	ShardCount     int    `env:"SHARD_COUNT" env-default:"1"`
	RemoveCommands bool   `env:"REMOVE_COMMANDS" env-default:"true"`
}

type Sui struct {
	Address     string        `env:"ADDRESS" env-required:"true"`
	Network     string        `env:"NETWORK" env-default:"localnet"`
	RPCURL      string        `env:"RPC_URL"`
	RPCTimeout  time.Duration `env:"RPC_TIMEOUT" env-default:"15s"`
	MaxAttempts int           `env:"RPC_MAX_ATTEMPTS" env-default:"1"`
	PageLimit   int           `env:"COINS_PAGE_LIMIT" env-default:"0"`

	owner sui.Address
}

// Load reads the optional dotenv file, then the process environment, and validates the result.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate normalises the config and rejects values the bot cannot start with.
func (c *Config) Validate() error {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	switch c.Mode {
	case ModeBalance, ModeGame, ModeAll:
	default:
		return fmt.Errorf("%w: %q (want %s, %s or %s)", ErrInvalidMode, c.Mode, ModeBalance, ModeGame, ModeAll)
	}

	if strings.TrimSpace(c.Discord.Token) == "" {
		return errors.New("DISCORD_TOKEN is required")
	}
	if c.Discord.ShardCount < 1 {
		return fmt.Errorf("DISCORD_SHARD_COUNT must be at least 1, got %d", c.Discord.ShardCount)
	}

	owner, err := sui.ParseAddress(c.Sui.Address)
	if err != nil {
		return fmt.Errorf("SUI_ADDRESS: %w", err)
	}
	if owner.IsZero() {
		return fmt.Errorf("SUI_ADDRESS: %w: zero address owns no coins", sui.ErrInvalidAddress)
	}
	c.Sui.owner = owner

	if _, err := c.Sui.Endpoint(); err != nil {
		return err
	}
	if c.Sui.RPCTimeout <= 0 {
		return fmt.Errorf("SUI_RPC_TIMEOUT must be positive, got %s", c.Sui.RPCTimeout)
	}
	if c.Sui.MaxAttempts < 1 {
		return fmt.Errorf("SUI_RPC_MAX_ATTEMPTS must be at least 1, got %d", c.Sui.MaxAttempts)
	}
	if c.Sui.PageLimit < 0 {
		return fmt.Errorf("SUI_COINS_PAGE_LIMIT must not be negative, got %d", c.Sui.PageLimit)
	}

	return nil
}

// Owner is the parsed Address; it is the zero address until Validate succeeds.
func (s *Sui) Owner() sui.Address {
	return s.owner
}

// Endpoint returns RPCURL when set, otherwise the full node URL of Network.
func (s *Sui) Endpoint() (string, error) {
	if raw := strings.TrimSpace(s.RPCURL); raw != "" {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return "", fmt.Errorf("SUI_RPC_URL %q is not a valid http(s) URL", raw)
		}
		return raw, nil
	}

	endpoint, ok := networkEndpoints[strings.ToLower(strings.TrimSpace(s.Network))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownNetwork, s.Network)
	}
	return endpoint, nil
}

// Modules reports whether the balance and game command sets are enabled.
func (c *Config) Modules() (balance, game bool) {
	return c.Mode == ModeBalance || c.Mode == ModeAll, c.Mode == ModeGame || c.Mode == ModeAll
}
