package cli

import (
	"log/slog"
	"os"
	"strings"

	"course-quiz-engine/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

type rootOptions struct {
	configPath string
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "quiz-engine",
		Short:        "Course quiz scheduling, attempts, grading and reports",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			setupLogging(cfg)
			return nil
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.configPath, "config", envConfig, "path to YAML config")
	f.String("storage", "", "snapshot storage driver (sqlite, postgres)")
	f.String("sqlite-path", "", "SQLite database path")
	f.String("postgres-url", "", "Postgres connection URL")
	f.Int("snapshot-keep", 0, "snapshots kept after each save; 0 keeps all")
	f.String("redis-addr", "", "Redis address; empty disables Redis")
	f.String("reports-dir", "", "directory for report files")
	f.String("report-format", "", "report file format (txt, xlsx)")
	f.Bool("shuffle", true, "randomize question and option order per attempt")
	f.String("log-level", "", "log level (debug, info, warn, error)")
	f.String("log-format", "", "log format (text, json)")

	cmd.AddCommand(
		newSeedCmd(opts),
		newAddUserCmd(opts),
		newAddCourseCmd(opts),
		newEnrollCmd(opts),
		newAddQuestionCmd(opts),
		newQuestionsCmd(opts),
		newCreateQuizCmd(opts),
		newQuizzesCmd(opts),
		newTakeCmd(opts),
		newSubmitExpiredCmd(opts),
		newResultsCmd(opts),
		newAttendanceCmd(opts),
		newAnalyticsCmd(opts),
		newMyResultsCmd(opts),
		newMigrateCmd(opts),
	)
	return cmd
}

// loadConfig reads .env and the YAML file, then lets QUIZ_* variables and
// explicitly set flags override it. Validation runs on the merged result.
func loadConfig(cmd *cobra.Command, path string) (config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())
	v.SetEnvPrefix("QUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("redis-password")
	_ = v.BindEnv("redis-db")
	_ = v.BindEnv("redis-ttl")
	_ = v.BindEnv("roster-ttl")
	_ = v.BindEnv("snapshot-keep")

	overrides := map[string]*string{
		"storage":        &cfg.Storage.Driver,
		"sqlite-path":    &cfg.Storage.SQLite.Path,
		"postgres-url":   &cfg.Storage.Postgres.URL,
		"redis-addr":     &cfg.Redis.Addr,
		"redis-password": &cfg.Redis.Password,
		"redis-ttl":      &cfg.Redis.TTL,
		"roster-ttl":     &cfg.Roster.TTL,
		"reports-dir":    &cfg.Reports.Dir,
		"report-format":  &cfg.Reports.Format,
		"log-level":      &cfg.Log.Level,
		"log-format":     &cfg.Log.Format,
	}
	for key, dst := range overrides {
		if v.IsSet(key) && v.GetString(key) != "" {
			*dst = v.GetString(key)
		}
	}
	if v.IsSet("snapshot-keep") {
		cfg.Storage.Keep = v.GetInt("snapshot-keep")
	}
	if v.IsSet("redis-db") {
		cfg.Redis.DB = v.GetInt("redis-db")
	}
	if v.IsSet("shuffle") {
		cfg.Quiz.Shuffle = v.GetBool("shuffle")
	}
	return cfg, cfg.Validate()
}

func setupLogging(cfg config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(cfg.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))
}
