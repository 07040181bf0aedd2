package utils

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	port         string
	databasePath string
	dev          bool

	sessionExpire time.Duration

	discordGuildID  string
	discordAppToken string
	discordClientID string

	location *time.Location

	reminderLead     time.Duration
	reminderInterval time.Duration

	metricCollectionInterval time.Duration
}

// NewConfig reads the process env and exits when a required value is missing
// or malformed.
func NewConfig() *Config {
	config, err := LoadConfig(os.Getenv)
	if err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	return config
}

// LoadConfig builds a Config from any env lookup.
func LoadConfig(getenv func(string) string) (*Config, error) {
	var errs []error
	duration := func(key, fallback string) time.Duration {
		raw := getenv(key)
		if raw == "" {
			raw = fallback
		}
		value, err := time.ParseDuration(raw)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
			return 0
		case value <= 0:
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", key, raw))
			return 0
		}
		slog.Debug("env", key, raw, "duration", value)
		return value
	}
	required := func(key string) string {
		value := getenv(key)
		if value == "" {
			errs = append(errs, fmt.Errorf("%s is not set", key))
		}
		return value
	}

	config := &Config{
		port: func() string {
			port := getenv("PORT")
			if port == "" {
				port = "8080"
			}
			slog.Debug("env", "PORT", port)
			return port
		}(),
		databasePath: func() string {
			path := getenv("DATABASE_PATH")
			if path == "" {
				path = "./sqlite.db"
			}
			slog.Debug("env", "DATABASE_PATH", path)
			return filepath.Clean(path)
		}(),
		dev: func() bool {
			dev := getenv("DEV") == "true"
			slog.Debug("env", "DEV", dev)
			return dev
		}(),

		sessionExpire: duration("SESSION_EXPIRE", "168h"), // 1 week

		discordGuildID: func() string {
			discordGuildID := getenv("DISCORD_GUILD_ID")
			if discordGuildID == "" {
				slog.Warn("DISCORD_GUILD_ID is not set, commands will be registered globally")
			}
			slog.Debug("env", "DISCORD_GUILD_ID", discordGuildID)
			return discordGuildID
		}(),
		discordAppToken: func() string {
			discordAppToken := required("DISCORD_APP_TOKEN")
			if len(discordAppToken) > 3 {
				slog.Debug("env", "DISCORD_APP_TOKEN", discordAppToken[0:3]+"...")
			}
			return discordAppToken
		}(),
		discordClientID: func() string {
			discordClientID := required("DISCORD_CLIENT_ID")
			slog.Debug("env", "DISCORD_CLIENT_ID", discordClientID)
			return discordClientID
		}(),

		location: func() *time.Location {
			timezoneStr := getenv("TIMEZONE")
			switch timezoneStr {
			case "":
				slog.Warn("TIMEZONE is not set, using local timezone", "timezone", time.Local)
				return time.Local
			case "UTC":
				return time.UTC
			}
			loc, err := time.LoadLocation(timezoneStr)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid TIMEZONE %q: %w", timezoneStr, err))
				return time.Local
			}
			slog.Debug("env", "TIMEZONE", timezoneStr)
			return loc
		}(),

		reminderLead:     duration("REMINDER_LEAD", "15m"),
		reminderInterval: duration("REMINDER_INTERVAL", "30s"),

		metricCollectionInterval: duration("METRIC_COLLECTION_INTERVAL", "10s"),
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("LoadConfig: %v", errs)
	}
	return config, nil
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get DATABASE_PATH env, default to ./sqlite.db
func (c *Config) GetDatabasePath() string {
	return c.databasePath
}

// Get DEV env. In dev mode POST /auth returns the session secret in the body
// instead of a cookie.
func (c *Config) GetDev() bool {
	return c.dev
}

// Get SESSION_EXPIRE env
func (c *Config) GetSessionExpire() time.Duration {
	return c.sessionExpire
}

// Get DISCORD_GUILD_ID env
func (c *Config) GetDiscordGuildID() string {
	return c.discordGuildID
}

// Get DISCORD_APP_TOKEN env
func (c *Config) GetDiscordAppToken() string {
	return c.discordAppToken
}

// Get DISCORD_CLIENT_ID env
func (c *Config) GetDiscordClientID() string {
	return c.discordClientID
}

// Get TIMEZONE env
func (c *Config) GetLocation() *time.Location {
	return c.location
}

// Get REMINDER_LEAD env
func (c *Config) GetReminderLead() time.Duration {
	return c.reminderLead
}

// Get REMINDER_INTERVAL env
func (c *Config) GetReminderInterval() time.Duration {
	return c.reminderInterval
}

// Get METRIC_COLLECTION_INTERVAL env
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}
