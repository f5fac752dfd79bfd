package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/musclequiz/internal/catalog"
	"github.com/hrygo/musclequiz/internal/observability"
	"github.com/hrygo/musclequiz/internal/profile"
	"github.com/hrygo/musclequiz/server"
	"github.com/hrygo/musclequiz/store"
	"github.com/hrygo/musclequiz/store/db"
	"github.com/hrygo/musclequiz/store/db/memory"
)

// version is set at build time.
var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "musclequiz",
	Short:         "Muscle identification quiz with a daily challenge and a study deck",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quiz API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		s, err := server.NewServer(ctx, app.profile, app.store, app.catalog, app.logger)
		if err != nil {
			_ = app.store.Close()
			return err
		}
		printGreetings(cmd, app)
		return s.Start(ctx)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("musclequiz %s\n", version)
	},
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 8081)
	viper.SetDefault("timezone", "UTC")
	viper.SetDefault("default-region", string(catalog.RegionAll))
	viper.SetDefault("log-level", "info")

	flags := rootCmd.PersistentFlags()
	flags.String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	flags.String("addr", "", "address of server")
	flags.Int("port", 8081, "port of server")
	flags.String("data", "", "data directory")
	flags.String("driver", "sqlite", "storage driver: sqlite, postgres, redis or memory")
	flags.String("dsn", "", "storage dsn")
	flags.String("timezone", "UTC", "IANA timezone whose midnight starts a new daily challenge")
	flags.String("catalog", "", "path to a YAML catalog (defaults to the built-in one)")
	flags.String("default-region", string(catalog.RegionAll), "study region used when no progress is stored")
	flags.String("log-level", "info", "log level: debug, info, warn or error")

	for _, name := range []string{"mode", "addr", "port", "data", "driver", "dsn", "timezone", "catalog", "default-region", "log-level"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("musclequiz")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(serveCmd, versionCmd, dailyCmd, studyCmd, catalogCmd)
}

// app bundles what every subcommand needs.
type app struct {
	profile *profile.Profile
	catalog *catalog.Catalog
	store   *store.Store
	// storage names the driver in use, "memory" after a fallback.
	storage string
	logger  *slog.Logger
}

func newApp(ctx context.Context) (*app, error) {
	prof := &profile.Profile{
		Mode:          viper.GetString("mode"),
		Addr:          viper.GetString("addr"),
		Port:          viper.GetInt("port"),
		Data:          viper.GetString("data"),
		Driver:        viper.GetString("driver"),
		DSN:           viper.GetString("dsn"),
		Timezone:      viper.GetString("timezone"),
		CatalogPath:   viper.GetString("catalog"),
		DefaultRegion: viper.GetString("default-region"),
		LogLevel:      viper.GetString("log-level"),
		Version:       version,
	}
	prof.FromEnv()
	if err := prof.Validate(); err != nil {
		return nil, err
	}

	level, err := observability.ParseLevel(prof.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := observability.NewLogger(os.Stderr, prof.Mode, level)
	slog.SetDefault(logger)

	cat, err := loadCatalog(prof)
	if err != nil {
		return nil, err
	}

	st, storage := openStore(ctx, prof, logger)
	return &app{
		profile: prof,
		catalog: cat,
		store:   st,
		storage: storage,
		logger:  logger,
	}, nil
}

func loadCatalog(prof *profile.Profile) (*catalog.Catalog, error) {
	if prof.CatalogPath == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(prof.CatalogPath)
}

// openStore opens the configured driver and returns it with the name of the
// driver in use. When it cannot be opened or migrated the game still runs on an
// in-memory store.
func openStore(ctx context.Context, prof *profile.Profile, logger *slog.Logger) (*store.Store, string) {
	driver, err := db.NewDBDriver(prof)
	if err != nil {
		logger.Warn("failed to open storage, progress will not persist",
			slog.String("driver", prof.Driver),
			slog.String("error", err.Error()),
		)
		return store.New(memory.NewDB()), memoryDriver
	}

	s := store.New(driver)
	if err := s.Migrate(ctx); err != nil {
		logger.Warn("failed to migrate storage, progress will not persist",
			slog.String("driver", prof.Driver),
			slog.String("error", err.Error()),
		)
		_ = s.Close()
		return store.New(memory.NewDB()), memoryDriver
	}
	return s, prof.Driver
}

const memoryDriver = "memory"

func printGreetings(cmd *cobra.Command, a *app) {
	prof := a.profile
	if a.storage != prof.Driver {
		cmd.Printf("Storage: %s unavailable, progress is kept in memory only\n", prof.Driver)
	}
	if prof.IsDev() {
		cmd.Printf("Development mode is enabled\n")
		cmd.Printf("Storage: %s (%s)\n", a.storage, prof.DSN)
	}
	cmd.Printf("musclequiz %s started on %s:%d\n", prof.Version, prof.Addr, prof.Port)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
