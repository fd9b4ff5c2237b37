// Package config reads process settings from the environment, loading a .env
// file first when one is present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"wordduel/pkg/lexicon"
	"wordduel/pkg/match"
)

type Config struct {
	LogLevel zerolog.Level
	// Addr is where host mode serves /ws.
	Addr string
	// PeerURL is the websocket URL join mode dials.
	PeerURL string
	Name    string

	Tier          lexicon.Tier
	Rounds        int
	RoundDuration time.Duration
	BotSkill      float64

	WordsFile     string
	BlocklistFile string
	HistoryDSN    string
	DailySalt     string
}

// Load reads the configuration. Unset variables take their defaults; set but
// invalid ones are an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:          getEnv("WORDDUEL_ADDR", ":5175"),
		PeerURL:       getEnv("WORDDUEL_PEER_URL", "ws://localhost:5175/ws"),
		Name:          getEnv("WORDDUEL_NAME", "player"),
		WordsFile:     os.Getenv("WORDDUEL_WORDS_FILE"),
		BlocklistFile: os.Getenv("WORDDUEL_BLOCKLIST_FILE"),
		HistoryDSN:    getEnv("WORDDUEL_HISTORY_DSN", "./data/history.db"),
		DailySalt:     getEnv("WORDDUEL_DAILY_SALT", "wordduel"),
	}

	var err error
	if cfg.LogLevel, err = zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if cfg.Tier, err = lexicon.ParseTier(os.Getenv("WORDDUEL_TIER")); err != nil {
		return Config{}, fmt.Errorf("WORDDUEL_TIER: %w", err)
	}
	if v := os.Getenv("WORDDUEL_ROUNDS"); v != "" {
		if cfg.Rounds, err = strconv.Atoi(v); err != nil || cfg.Rounds < 1 {
			return Config{}, fmt.Errorf("WORDDUEL_ROUNDS: invalid value %q", v)
		}
	}
	if v := os.Getenv("WORDDUEL_ROUND_DURATION"); v != "" {
		if cfg.RoundDuration, err = time.ParseDuration(v); err != nil {
			return Config{}, fmt.Errorf("WORDDUEL_ROUND_DURATION: %w", err)
		}
	}
	cfg.BotSkill = 0.7
	if v := os.Getenv("WORDDUEL_BOT_SKILL"); v != "" {
		if cfg.BotSkill, err = strconv.ParseFloat(v, 64); err != nil || cfg.BotSkill < 0 || cfg.BotSkill > 1 {
			return Config{}, fmt.Errorf("WORDDUEL_BOT_SKILL: invalid value %q", v)
		}
	}
	return cfg, nil
}

// Match returns the tier defaults with the configured overrides applied.
func (c Config) Match() match.Config {
	mc := match.DefaultConfig(c.Tier)
	if c.Rounds > 0 {
		mc.TotalRounds = c.Rounds
	}
	if c.RoundDuration > 0 {
		mc.RoundDuration = c.RoundDuration
	}
	return mc
}

// Lexicon returns the options for loading the configured word lists.
func (c Config) Lexicon(logger *zerolog.Logger) lexicon.Options {
	return lexicon.Options{
		Tier:          c.Tier,
		WordsFile:     c.WordsFile,
		BlocklistFile: c.BlocklistFile,
		Logger:        logger,
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
