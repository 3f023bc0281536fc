package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath      string
	OutputDir   string
	PersistRuns bool

	VocabPath         string
	DescriptionColumn string
	DetectSampleRows  int
	InputEncoding     string
	KeywordScope      string

	LogLevel  string
	LogFormat string

	WatchDir          string
	WatchIntervalSec  int
	WatchOutputFormat string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:      getEnv("DB_PATH", filepath.Join(cwd, "data", "runs.db")),
		OutputDir:   getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		PersistRuns: getEnvBool("PERSIST_RUNS", true),

		VocabPath:         getEnv("VOCAB_PATH", ""),
		DescriptionColumn: getEnv("DESCRIPTION_COLUMN", "Description"),
		DetectSampleRows:  getEnvInt("DETECT_SAMPLE_ROWS", 50),
		InputEncoding:     strings.ToLower(getEnv("INPUT_ENCODING", "utf-8")),
		KeywordScope:      strings.ToLower(getEnv("KEYWORD_SCOPE", "all")),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "console")),

		WatchDir:          getEnv("WATCH_DIR", filepath.Join(cwd, "inbox")),
		WatchIntervalSec:  getEnvInt("WATCH_INTERVAL_SEC", 30),
		WatchOutputFormat: strings.ToLower(getEnv("WATCH_OUTPUT_FORMAT", "xlsx")),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func (c Config) Validate() error {
	switch c.InputEncoding {
	case "utf-8", "utf8", "latin-1", "latin1", "iso-8859-1":
	default:
		return fmt.Errorf("unsupported INPUT_ENCODING: %s", c.InputEncoding)
	}
	switch c.KeywordScope {
	case "all", "last":
	default:
		return fmt.Errorf("unsupported KEYWORD_SCOPE: %s", c.KeywordScope)
	}
	switch c.WatchOutputFormat {
	case "", "csv", "xlsx":
	default:
		return fmt.Errorf("unsupported WATCH_OUTPUT_FORMAT: %s", c.WatchOutputFormat)
	}
	if c.PersistRuns {
		if err := c.Require("DB_PATH", c.DBPath); err != nil {
			return err
		}
	}
	return c.Require("DESCRIPTION_COLUMN", c.DescriptionColumn)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
