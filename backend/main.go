package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"academy/backend/config"
	"academy/backend/controllers"
	"academy/backend/ledger"
	"academy/backend/middleware"
	"academy/backend/routes"
	"academy/backend/seed"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	cfg    *config.Config
	logger *zap.Logger

	seedOnServe bool
)

var rootCmd = &cobra.Command{
	Use:           "academy",
	Short:         "Learning platform backend: courses, XP, levels and streaks",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger = utils.InitLogger(utils.LoggerConfig{
			Format:       cfg.LogFormat,
			Level:        cfg.LogLevel,
			EnableColors: cfg.LogFormat != "json",
		})
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		if seedOnServe {
			if err := runSeed(db); err != nil {
				return err
			}
		}

		client, closeLedger, err := newLedgerClient(cmd.Context(), db)
		if err != nil {
			return err
		}
		defer closeLedger()

		app := fiber.New(fiber.Config{AppName: "academy"})
		app.Use(cors.New(cors.Config{
			AllowOrigins: strings.Join(cfg.AllowedOrigins(), ","),
			AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + middleware.SignerKeyHeader,
		}))
		app.Use(middleware.LoggingMiddleware(logger))
		routes.SetupRoutes(app, db, cfg, client, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("listening", zap.String("port", cfg.ServerPort), zap.String("ledger", cfg.LedgerMode))
			errCh <- app.Listen(":" + cfg.ServerPort)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Migrate the database and load the starter catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		return runSeed(db)
	},
}

var levelCmd = &cobra.Command{
	Use:   "level <xp>",
	Short: "Print the level view for an XP amount",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		xp, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("xp must be a non-negative integer: %w", err)
		}
		return printJSON(cmd, controllers.NewLevelView(cfg.Curve(), xp))
	},
}

var streakCmd = &cobra.Command{
	Use:   "streak <days>",
	Short: "Print the milestone view for a streak length",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		days, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("days must be a non-negative integer: %w", err)
		}
		streak := uint32(days)
		return printJSON(cmd, controllers.NewStreakView(cfg.Milestones(), streak, streak, 0))
	},
}

func init() {
	serveCmd.Flags().BoolVar(&seedOnServe, "seed", false, "Load the starter catalog before serving")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(levelCmd)
	rootCmd.AddCommand(streakCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openDatabase() (*gorm.DB, error) {
	db, err := utils.InitDB(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := utils.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func runSeed(db *gorm.DB) error {
	created, err := seed.Apply(db)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	logger.Info("catalog seeded", zap.Int("created", created), zap.Int("catalog", len(seed.Slugs())))
	return nil
}

// newLedgerClient builds the configured ledger and, when REDIS_ADDR is set
// and reachable, wraps it in the read-through cache.
func newLedgerClient(ctx context.Context, db *gorm.DB) (ledger.Client, func(), error) {
	var client ledger.Client
	switch cfg.LedgerMode {
	case "indexer":
		ic := ledger.DefaultIndexerConfig(cfg.IndexerURL)
		ic.Timeout = cfg.IndexerTimeout
		client = ledger.NewIndexerClient(ic, logger)
	default:
		client = ledger.NewStoreClient(db, ledger.StoreConfig{
			Curve:      cfg.Curve(),
			Milestones: cfg.Milestones(),
			DailyXPCap: cfg.DailyXPCap,
		}, logger)
	}

	if cfg.RedisAddr == "" {
		return client, func() {}, nil
	}

	rdb, err := newRedisClient(cfg.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis not available, ledger cache disabled", zap.Error(err))
		_ = rdb.Close()
		return client, func() {}, nil
	}

	logger.Info("ledger cache enabled", zap.Duration("ttl", cfg.CacheTTL))
	return ledger.NewCachedClient(client, rdb, cfg.CacheTTL, logger), func() { _ = rdb.Close() }, nil
}

func newRedisClient(addr string) (*redis.Client, error) {
	if strings.Contains(addr, "://") {
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_ADDR: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: addr}), nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
