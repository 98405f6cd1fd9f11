package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/naka-gawa/timesheet/internal/config"
	"github.com/naka-gawa/timesheet/internal/domain"
	"github.com/naka-gawa/timesheet/internal/gateway"
	"github.com/naka-gawa/timesheet/internal/publish"
	"github.com/naka-gawa/timesheet/internal/report"
	"github.com/naka-gawa/timesheet/internal/usecase"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Writes the monthly time reports of the configured repositories",
	Long: `Aggregates the durations logged this month in the configured repositories,
writes one markdown report per repository plus a master README, and outputs a
JSON summary. Optionally closes the tracked issues and pushes the reports.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		summaries, err := runReport(ctx, cmd)
		if summaries != nil {
			// Marshal the results into a pretty-printed JSON string.
			jsonData, marshalErr := json.MarshalIndent(summaries, "", "  ")
			if marshalErr != nil {
				fmt.Fprintf(os.Stderr, "Failed to marshal results to JSON: %v\n", marshalErr)
				os.Exit(1)
			}
			fmt.Println(string(jsonData))
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringP("config", "c", "", "Path to a YAML configuration file")
	reportCmd.Flags().StringSliceP("repositories", "r", nil, "Repositories to report on (owner/name or URL)")
	reportCmd.Flags().String("current-repository", "", "Repository holding the time tracking issues (default: git remote origin)")
	reportCmd.Flags().String("template", "", "Repository report template, relative to --template-dir")
	reportCmd.Flags().String("master-template", "", "Master README template, relative to --template-dir")
	reportCmd.Flags().String("template-dir", "", "Directory holding the templates (default .github)")
	reportCmd.Flags().String("output-dir", "", "Directory the reports are written to (default .)")
	reportCmd.Flags().String("timezone", "", "IANA time zone deciding the reported month (default UTC)")
	reportCmd.Flags().String("duration-format", "", "Duration format pattern (default hh:mm:ss)")
	reportCmd.Flags().Bool("close-issues", false, "Close the tracked issues once reported")
	reportCmd.Flags().Bool("xlsx", false, "Also export the breakdown as an xlsx workbook")
	reportCmd.Flags().Bool("push", false, "Commit and push the written reports")
	reportCmd.Flags().String("push-branch", "", "Branch the reports are pushed to")
}

func runReport(ctx context.Context, cmd *cobra.Command) ([]usecase.Summary, error) {
	_ = godotenv.Load()

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	verbose, _ := cmd.InheritedFlags().GetBool("verbose")
	logger, err := newLogger(cfg.LogLevel, verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	mapper, err := cfg.Mapper()
	if err != nil {
		return nil, err
	}
	window := domain.NewWindow(time.Now(), loc)

	publisher := publish.NewPublisher(".", nil, logger)
	current, err := currentRepository(ctx, cfg, publisher)
	if err != nil {
		return nil, err
	}

	// Inject dependencies and run the main business logic.
	githubGateway, err := gateway.NewGitHubGateway(gateway.Options{
		Token:          cfg.Token,
		AppID:          cfg.AppID,
		InstallationID: cfg.InstallationID,
		PrivateKeyPath: cfg.PrivateKeyPath,
		APIBaseURL:     cfg.APIBaseURL,
		Timeout:        cfg.RequestTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}

	logger.Info("starting report",
		zap.String("month", window.Now.Month().String()),
		zap.String("current_repository", current.Path()),
		zap.Strings("repositories", cfg.Repositories),
	)

	aggregator := usecase.NewAggregator(githubGateway, mapper, window, current, logger)
	reporter := usecase.NewReporter(aggregator, githubGateway, publisher, logger)
	return reporter.Run(ctx, cfg.Repositories, usecase.ReportOptions{
		Layout:         report.Layout{Root: cfg.OutputDir, Window: window},
		TemplateDir:    cfg.TemplateDir,
		Template:       cfg.Template,
		MasterTemplate: cfg.MasterTemplate,
		DurationFormat: cfg.DurationFormat,
		CloseIssues:    cfg.CloseIssues,
		Workbook:       cfg.XLSX,
		Push:           cfg.Push,
		PushBranch:     cfg.PushBranch,
	})
}

// applyFlags overrides the configuration with every flag set on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	str := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	boolean := func(name string, dst *bool) {
		if flags.Changed(name) {
			*dst, _ = flags.GetBool(name)
		}
	}

	if flags.Changed("repositories") {
		cfg.Repositories, _ = flags.GetStringSlice("repositories")
	}
	str("current-repository", &cfg.CurrentRepository)
	str("template", &cfg.Template)
	str("master-template", &cfg.MasterTemplate)
	str("template-dir", &cfg.TemplateDir)
	str("output-dir", &cfg.OutputDir)
	str("timezone", &cfg.Timezone)
	str("duration-format", &cfg.DurationFormat)
	boolean("close-issues", &cfg.CloseIssues)
	boolean("xlsx", &cfg.XLSX)
	boolean("push", &cfg.Push)
	str("push-branch", &cfg.PushBranch)
}

// currentRepository is the configured current repository, or the origin of the working copy.
func currentRepository(ctx context.Context, cfg *config.Config, publisher *publish.Publisher) (domain.Repository, error) {
	ref := cfg.CurrentRepository
	if ref == "" {
		origin, err := publisher.OriginURL(ctx)
		if err != nil {
			return domain.Repository{}, fmt.Errorf("failed to resolve current repository: %w", err)
		}
		ref = origin
	}
	repo, err := domain.ParseRepository(ref)
	if err != nil {
		return domain.Repository{}, fmt.Errorf("failed to resolve current repository: %w", err)
	}
	return repo, nil
}
