package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pyama86/YASE/domain/entity"
	"github.com/pyama86/YASE/domain/repository"
	"github.com/pyama86/YASE/escalation"
	"github.com/pyama86/YASE/paths"
	"github.com/slack-go/slack"
	"github.com/spf13/cobra"
)

var (
	configPath string
	dryRun     bool
	verbose    bool
	interval   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "yase",
	Short: "yase escalates tracker issues that sit in a status for too long",
	Run: func(cmd *cobra.Command, args []string) {
		if err := run(); err != nil {
			slog.Error("Failed to run command", slog.Any("error", err))
			os.Exit(1)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// デフォルトはホームディレクトリのyase.toml
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Error("Failed to get user home directory", slog.Any("error", err))
		os.Exit(1)
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", path.Join(home, "yase.toml"), "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "evaluate rules without escalating or recording history")
	rootCmd.Flags().DurationVar(&interval, "interval", 0, "run repeatedly at this interval until interrupted")
}

func validateEnv() error {
	requiredEnv := []string{
		"JIRA_URL",
		"JIRA_USERNAME",
		"JIRA_API_TOKEN",
	}
	for _, env := range requiredEnv {
		if os.Getenv(env) == "" {
			return fmt.Errorf("environment variable %s is required but not set", env)
		}
	}
	return nil
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
	if _, err := os.Stat(".env"); err == nil {
		err := godotenv.Load()
		if err != nil {
			log.Fatal("Error loading .env file")
		}
	}

	if err := validateEnv(); err != nil {
		return err
	}

	cfg, err := repository.NewConfigRepository(configPath)
	if err != nil {
		return err
	}

	escalator, err := newEscalator(cfg)
	if err != nil {
		return err
	}

	if interval <= 0 {
		return runOnce(ctx, escalator)
	}

	// ティッカー駆動で定期実行する
	slog.Info("Running on interval", slog.Duration("interval", interval))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := runOnce(ctx, escalator); err != nil {
		slog.Error("Escalation cycle failed", slog.Any("error", err))
	}
	for {
		select {
		case <-ctx.Done():
			slog.Info("Shutting down")
			return nil
		case <-ticker.C:
			if err := runOnce(ctx, escalator); err != nil {
				slog.Error("Escalation cycle failed", slog.Any("error", err))
			}
		}
	}
}

func runOnce(ctx context.Context, escalator *escalation.Escalator) error {
	count, err := escalator.ProcessRules(ctx)
	if err != nil {
		return err
	}
	slog.Info("Escalated issues", slog.Int("count", count))
	return nil
}

func newEscalator(cfg *repository.Config) (*escalation.Escalator, error) {
	jiraRepository, err := repository.NewJiraRepository(
		os.Getenv("JIRA_URL"),
		os.Getenv("JIRA_USERNAME"),
		os.Getenv("JIRA_API_TOKEN"),
	)
	if err != nil {
		return nil, err
	}

	historyRepository, err := newHistoryRepository(cfg)
	if err != nil {
		return nil, err
	}

	registry := paths.Registry{}
	registry.Register(entity.PathTypeJiraComment, paths.NewJiraComment(jiraRepository))

	if os.Getenv("SLACK_BOT_TOKEN") != "" {
		slackRepository := repository.NewSlackRepository(slack.New(os.Getenv("SLACK_BOT_TOKEN")))
		registry.Register(entity.PathTypeSlackDM, paths.NewSlackDM(slackRepository))
	}

	if os.Getenv("PAGERDUTY_ROUTING_KEY") != "" {
		registry.Register(entity.PathTypePagerDuty, paths.NewPagerDuty(os.Getenv("PAGERDUTY_ROUTING_KEY")))
	}

	if os.Getenv("EMAIL_SENDER") != "" && os.Getenv("EMAIL_PASSWORD") != "" {
		smtpServer := os.Getenv("EMAIL_SMTP_SERVER")
		if smtpServer == "" {
			smtpServer = "smtp.gmail.com"
		}
		smtpPort := 587
		if os.Getenv("EMAIL_SMTP_PORT") != "" {
			port, err := strconv.Atoi(os.Getenv("EMAIL_SMTP_PORT"))
			if err != nil {
				return nil, err
			}
			smtpPort = port
		}
		registry.Register(entity.PathTypeEmail, paths.NewEmail(
			os.Getenv("EMAIL_SENDER"),
			os.Getenv("EMAIL_PASSWORD"),
			smtpServer,
			smtpPort,
		))
	}

	repo := repository.NewRepository(cfg, historyRepository)

	var sink repository.EscalationLogger
	if sumoRepository := repository.NewSumoRepository(); sumoRepository != nil {
		sink = sumoRepository
	}

	return escalation.New(repo, jiraRepository, registry, sink, dryRun), nil
}

func newHistoryRepository(cfg *repository.Config) (repository.EscalationHistoryRepository, error) {
	if os.Getenv("ESCALATION_HISTORY_BACKEND") == "dynamo" {
		return repository.NewDynamoDBRepository()
	}
	return repository.NewHistoryRepository(cfg.HistoryFilePath()), nil
}
