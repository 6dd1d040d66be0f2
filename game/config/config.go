package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Defaults for every tunable. All values are fixed at process start;
// nothing here is hot-reloadable.
const (
	DefaultHost               = "localhost"
	DefaultPort               = 3001
	DefaultMaxConcurrentRooms = 3
	DefaultRoomCooldown       = 5 * time.Second
	DefaultGracePeriod        = 30 * time.Second
	DefaultTurnTimeout        = 30 * time.Second
)

// Config carries the server's operational knobs. Board geometry and
// fleet composition are fixed game rules and live as constants in the
// engine package.
type Config struct {
	Host string
	Port int

	// MaxConcurrentRooms caps simultaneous active games.
	MaxConcurrentRooms int

	// RoomCooldown is how long a destroyed room's id is quarantined so
	// late messages referencing it are not confused with unknown ids.
	RoomCooldown time.Duration

	// GracePeriod is how long a disconnected player may reconnect
	// before being evicted from their room.
	GracePeriod time.Duration

	// TurnTimeout is how long the current player has to attack before
	// the turn passes to the opponent.
	TurnTimeout time.Duration
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		Host:               DefaultHost,
		Port:               DefaultPort,
		MaxConcurrentRooms: DefaultMaxConcurrentRooms,
		RoomCooldown:       DefaultRoomCooldown,
		GracePeriod:        DefaultGracePeriod,
		TurnTimeout:        DefaultTurnTimeout,
	}
}

// FromEnv returns the default configuration with any environment
// overrides applied. Callers load .env files before this runs.
func FromEnv() *Config {
	c := Default()
	c.Host = getEnv("HOST", c.Host)
	c.Port = getEnvInt("PORT", c.Port)
	c.MaxConcurrentRooms = getEnvInt("MAX_CONCURRENT_ROOMS", c.MaxConcurrentRooms)
	c.RoomCooldown = getEnvDuration("ROOM_COOLDOWN", c.RoomCooldown)
	c.GracePeriod = getEnvDuration("GRACE_PERIOD", c.GracePeriod)
	c.TurnTimeout = getEnvDuration("TURN_TIMEOUT", c.TurnTimeout)
	return c
}

// Validate rejects configurations the coordinator cannot run with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.MaxConcurrentRooms < 1 {
		return fmt.Errorf("max concurrent rooms must be positive, got %d", c.MaxConcurrentRooms)
	}
	if c.GracePeriod <= 0 || c.TurnTimeout <= 0 || c.RoomCooldown < 0 {
		return fmt.Errorf("timers must be positive")
	}
	return nil
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
