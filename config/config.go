package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"coralwatch-cleaner/palette"
	"coralwatch-cleaner/services"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	SourcePath    string
	SourceSheet   string
	SnapshotPath  string
	CSVOutputPath string
	PalettePath   string

	ColorStrategy string
	GroupBy       string
	RequireDate   bool
	PhotoFallback string
	ColorFormat   string
	VaryingFields string

	LogLevel string

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	MaxRetries       int
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		SourcePath:    getEnv("SOURCE_XLSX_PATH", "downloaded_data/data.xlsx"),
		SourceSheet:   getEnv("SOURCE_SHEET", "CoralWatch Random Survey"),
		SnapshotPath:  getEnv("SNAPSHOT_PATH", "coral_data.db"),
		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "clean_data.csv"),
		PalettePath:   getEnv("PALETTE_PATH", ""),

		ColorStrategy: getEnv("COLOR_STRATEGY", string(services.StrategyPerFamily)),
		GroupBy:       getEnv("GROUP_BY", string(services.GroupByActivityCoral)),
		RequireDate:   getEnvBool("REQUIRE_DATE", true),
		PhotoFallback: getEnv("PHOTO_FALLBACK", string(services.PhotoPlaceholder)),
		ColorFormat:   getEnv("COLOR_FORMAT", string(palette.FormatHex)),
		VaryingFields: getEnv("VARYING_FIELDS", string(services.VaryingList)),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "coralwatch"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "coralwatch"),
		PostgresDB:       getEnv("POSTGRES_DB", "coralwatch"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		MaxRetries:       getEnvInt("MAX_RETRIES", 5),
	}
}

// PipelineOptions converts the policy settings into pipeline options,
// rejecting unknown names.
func (c *Config) PipelineOptions() (services.Options, error) {
	strategy, err := services.ParseColorStrategy(c.ColorStrategy)
	if err != nil {
		return services.Options{}, fmt.Errorf("config: %w", err)
	}
	groupBy, err := services.ParseGroupBy(c.GroupBy)
	if err != nil {
		return services.Options{}, fmt.Errorf("config: %w", err)
	}
	fallback, err := services.ParsePhotoFallback(c.PhotoFallback)
	if err != nil {
		return services.Options{}, fmt.Errorf("config: %w", err)
	}
	format, err := palette.ParseFormat(c.ColorFormat)
	if err != nil {
		return services.Options{}, fmt.Errorf("config: %w", err)
	}
	varying, err := services.ParseVaryingPolicy(c.VaryingFields)
	if err != nil {
		return services.Options{}, fmt.Errorf("config: %w", err)
	}
	return services.Options{
		Varying:       varying,
		Strategy:      strategy,
		GroupBy:       groupBy,
		RequireDate:   c.RequireDate,
		PhotoFallback: fallback,
		ColorFormat:   format,
	}, nil
}

// Validate checks that every policy name is known and paths are set.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SnapshotPath) == "" {
		return fmt.Errorf("config: snapshot path must not be empty")
	}
	if strings.TrimSpace(c.CSVOutputPath) == "" {
		return fmt.Errorf("config: csv output path must not be empty")
	}
	_, err := c.PipelineOptions()
	return err
}

// Palette returns the override palette when PalettePath is set, otherwise
// the built-in one.
func (c *Config) Palette() (*palette.Palette, error) {
	if c.PalettePath == "" {
		return palette.Default(), nil
	}
	return palette.LoadFile(c.PalettePath)
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
