package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/musclequiz/internal/catalog"
	"github.com/hrygo/musclequiz/internal/timezone"
)

// Profile is the configuration shared by the CLI and the local server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where musclequiz stores progress
	DSN string
	// Driver is the storage driver (sqlite, postgres, redis or memory)
	Driver string
	// Version is the current version of the binary
	Version string

	// Timezone is the IANA zone whose midnight rolls the daily challenge over.
	Timezone string
	// CatalogPath is an optional YAML catalog; empty uses the embedded one.
	CatalogPath string
	// DefaultRegion is the study deck filter used when no progress exists.
	DefaultRegion string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv fills unset fields from MUSCLEQUIZ_* environment variables.
// Values already set on the profile (e.g. from flags) take precedence.
func (p *Profile) FromEnv() {
	setString := func(field *string, key, defaultValue string) {
		if *field == "" {
			*field = getEnvOrDefault(key, defaultValue)
		}
	}

	setString(&p.Mode, "MUSCLEQUIZ_MODE", "dev")
	setString(&p.Addr, "MUSCLEQUIZ_ADDR", "")
	setString(&p.Data, "MUSCLEQUIZ_DATA", "")
	setString(&p.DSN, "MUSCLEQUIZ_DSN", "")
	setString(&p.Driver, "MUSCLEQUIZ_DRIVER", "sqlite")
	setString(&p.Timezone, "MUSCLEQUIZ_TIMEZONE", "UTC")
	setString(&p.CatalogPath, "MUSCLEQUIZ_CATALOG", "")
	setString(&p.DefaultRegion, "MUSCLEQUIZ_DEFAULT_REGION", string(catalog.RegionAll))
	setString(&p.LogLevel, "MUSCLEQUIZ_LOG_LEVEL", "info")

	if p.Port == 0 {
		if port, err := strconv.Atoi(os.Getenv("MUSCLEQUIZ_PORT")); err == nil {
			p.Port = port
		} else {
			p.Port = 8081
		}
	}
}

// Location returns the canonical daily timezone.
func (p *Profile) Location() *time.Location {
	loc, err := timezone.ParseTimezone(p.Timezone)
	if err != nil {
		slog.Warn("invalid timezone, using UTC", slog.String("timezone", p.Timezone))
	}
	return loc
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if !timezone.IsValidTimezone(p.Timezone) {
		return errors.Errorf("invalid timezone %q", p.Timezone)
	}
	if p.DefaultRegion == "" {
		p.DefaultRegion = string(catalog.RegionAll)
	}
	region, err := catalog.ParseRegion(p.DefaultRegion)
	if err != nil {
		return errors.Wrap(err, "invalid default region")
	}
	p.DefaultRegion = string(region)

	switch p.Driver {
	case "memory":
		return nil
	case "postgres", "redis":
		if p.DSN == "" {
			return errors.Errorf("dsn is required for driver %s", p.Driver)
		}
		return nil
	case "sqlite":
	default:
		return errors.Errorf("unknown driver %q", p.Driver)
	}

	if p.Data == "" {
		if p.Mode == "prod" {
			if runtime.GOOS == "windows" {
				p.Data = filepath.Join(os.Getenv("ProgramData"), "musclequiz")
			} else {
				p.Data = "/var/opt/musclequiz"
			}
		} else {
			p.Data = "."
		}
	}
	if _, err := os.Stat(p.Data); os.IsNotExist(err) {
		if err := os.MkdirAll(p.Data, 0o770); err != nil {
			slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
			return err
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.DSN == "" {
		dbFile := fmt.Sprintf("musclequiz_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
