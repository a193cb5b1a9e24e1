package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/username/bdays/internal/config"
	"github.com/username/bdays/internal/registry"
	"github.com/username/bdays/pkg/calendar"
)

var (
	configPath string
	noCache    bool
	logger     = zap.NewNop()
	cfg        *config.Config
	v          *viper.Viper
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v = config.New()
	noCache = false

	rootCmd := &cobra.Command{
		Use:           "bdays",
		Short:         "Business day calculator",
		Long:          "Holiday checks, business day adjustment and business day counting against holiday calendars",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadWith(v, configPath)
			if err != nil {
				return err
			}
			if noCache {
				cfg.Cache.Enabled = false
			}

			if cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err != nil {
					logger = initLogger(cfg.Log.Level) // Fallback to console
				}
			} else {
				logger = initLogger(cfg.Log.Level)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Config file path (default: bdays.yaml in ., $HOME/.bdays, /etc/bdays)")
	flags.String("calendar", "", "Holiday calendar name (see 'bdays calendars')")
	flags.String("holidays-file", "", "File with extra holidays, one YYYY-MM-DD per line")
	flags.String("cache-from", "", "First date of the precomputed range")
	flags.String("cache-to", "", "Last date of the precomputed range")
	flags.BoolVar(&noCache, "no-cache", false, "Evaluate the calendar day by day instead of precomputing it")
	flags.String("log-level", "", "Log level: debug, info, warn or error")

	_ = v.BindPFlag("calendar.name", flags.Lookup("calendar"))
	_ = v.BindPFlag("calendar.holidays_file", flags.Lookup("holidays-file"))
	_ = v.BindPFlag("cache.from", flags.Lookup("cache-from"))
	_ = v.BindPFlag("cache.to", flags.Lookup("cache-to"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))

	rootCmd.AddCommand(
		isCmd(),
		adjustCmd(),
		advanceCmd(),
		betweenCmd(),
		countCmd(),
		easterCmd(),
		holidaysCmd(),
		calendarsCmd(),
		serveCmd(),
	)

	return rootCmd
}

// loadHolidays returns the configured holiday rule set.
func loadHolidays() (calendar.HolidayCalendar, error) {
	return registry.New(logger).Build(cfg.Calendar.Name, cfg.Calendar.HolidaysFile)
}

// loadCalendar returns the configured calendar, precomputed over the cache
// range unless caching is disabled.
func loadCalendar() (calendar.BusinessCalendar, error) {
	h, err := loadHolidays()
	if err != nil {
		return nil, err
	}
	if !cfg.Cache.Enabled {
		return calendar.New(h), nil
	}

	from, to, err := cfg.Cache.Range()
	if err != nil {
		return nil, err
	}
	cache, err := calendar.NewCache(h, from, to, calendar.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to build calendar cache for %v..%v (narrow it with --cache-from/--cache-to or use --no-cache): %w", from, to, err)
	}
	return cache, nil
}

func initLogger(level string) *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = zap.NewAtomicLevelAt(parseLevel(level))

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	return logger
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		parseLevel(level),
	)

	return zap.New(core), nil
}

func parseLevel(level string) zapcore.Level {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return zapLevel
}
