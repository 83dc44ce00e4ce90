package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/plant-healthcheck/planthealth/internal/config"
	"github.com/plant-healthcheck/planthealth/internal/database"
	"github.com/plant-healthcheck/planthealth/internal/inspection"
	"github.com/plant-healthcheck/planthealth/internal/logging"
	"github.com/plant-healthcheck/planthealth/internal/model"
	"github.com/plant-healthcheck/planthealth/internal/queue"
	"github.com/plant-healthcheck/planthealth/internal/repository"
	"github.com/plant-healthcheck/planthealth/internal/scoring"
	"github.com/plant-healthcheck/planthealth/internal/seed"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "planthealth: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "planthealth",
		Short: "Plant HealthCheck inspection tooling",
		Long: `planthealth manages industrial equipment inspections: it seeds a database
with equipment and checklist-template fixtures, creates and completes
checklists through the scoring engine, and reports fleet statistics.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newSeedCmd(),
		newCreateCmd(),
		newCompleteCmd(),
		newStatsCmd(),
		newHistoryCmd(),
		newAlertsCmd(),
	)
	return cmd
}

// setup loads config and opens the database; every subcommand starts here.
func setup(ctx context.Context) (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return cfg, pool, nil
}

func newSeedCmd() *cobra.Command {
	var (
		rngSeed    int64
		checklists int
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import fixtures and generate a plausible inspection history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, pool, err := setup(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			log := logging.New("seed", cfg.LogLevel)

			seeder := seed.New(
				repository.NewEquipmentRepository(pool),
				repository.NewTemplateRepository(pool),
				repository.NewChecklistRepository(pool),
				repository.NewAlertRepository(pool),
				rngSeed, log,
			)
			if checklists > 0 {
				seeder.Checklists = checklists
			}
			return seeder.Run(ctx)
		},
	}
	cmd.Flags().Int64Var(&rngSeed, "rng-seed", 42, "Seed for the history generator")
	cmd.Flags().IntVar(&checklists, "checklists", 0, "Historical checklists to generate (default 127)")
	return cmd
}

func newCreateCmd() *cobra.Command {
	var (
		equipmentID   string
		templateID    string
		inspectorID   string
		inspectorName string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a pending checklist for an equipment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, pool, err := setup(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc, closeQueue := newService(cfg, pool)
			defer closeQueue()

			c, err := svc.Create(ctx, equipmentID, templateID, inspectorID, inspectorName, time.Now().UTC())
			if err != nil {
				return err
			}
			fmt.Printf("checklist %d created (%d items)\n", c.ID, c.TotalItems)
			return nil
		},
	}
	cmd.Flags().StringVar(&equipmentID, "equipment", "", "Equipment id")
	cmd.Flags().StringVar(&templateID, "template", "", "Template id")
	cmd.Flags().StringVar(&inspectorID, "inspector-id", "", "Inspector id")
	cmd.Flags().StringVar(&inspectorName, "inspector-name", "", "Inspector display name")
	_ = cmd.MarkFlagRequired("equipment")
	_ = cmd.MarkFlagRequired("template")
	_ = cmd.MarkFlagRequired("inspector-id")
	_ = cmd.MarkFlagRequired("inspector-name")
	return cmd
}

func newCompleteCmd() *cobra.Command {
	var (
		responsesFile string
		notes         string
		lenient       bool
	)
	cmd := &cobra.Command{
		Use:   "complete <checklist-id>",
		Short: "Complete a checklist from a responses JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var id int64
			if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
				return fmt.Errorf("invalid checklist id %q", args[0])
			}

			data, err := os.ReadFile(responsesFile)
			if err != nil {
				return fmt.Errorf("read responses: %w", err)
			}
			var responses model.ResponseSet
			if err := json.Unmarshal(data, &responses); err != nil {
				return fmt.Errorf("decode responses: %w", err)
			}

			cfg, pool, err := setup(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc, closeQueue := newServiceWithPolicy(cfg, pool, lenient)
			defer closeQueue()

			res, err := svc.Complete(ctx, id, responses, notes, time.Now().UTC())
			if err != nil {
				return err
			}
			out, _ := json.MarshalIndent(res, "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&responsesFile, "responses", "r", "", "Path to a JSON file mapping item ids to answers")
	cmd.Flags().StringVar(&notes, "notes", "", "Inspector notes")
	cmd.Flags().BoolVar(&lenient, "lenient", false, "Treat type-mismatched answers as unanswered instead of failing")
	_ = cmd.MarkFlagRequired("responses")
	return cmd
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print fleet dashboard statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, pool, err := setup(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			stats, err := repository.NewStatsRepository(pool).Dashboard(ctx, time.Now().UTC())
			if err != nil {
				return err
			}
			out, _ := json.MarshalIndent(stats, "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "history <equipment-id>",
		Short: "Print an equipment's per-day inspection score history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, pool, err := setup(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			history, err := repository.NewChecklistRepository(pool).HealthHistory(ctx, args[0], days)
			if err != nil {
				return err
			}
			out, _ := json.MarshalIndent(history, "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "Trailing period in days")
	return cmd
}

func newAlertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List and triage maintenance alerts",
	}

	var equipmentID string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List active alerts, critical first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, pool, err := setup(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			alerts := repository.NewAlertRepository(pool)
			counts, err := alerts.CountActiveBySeverity(ctx)
			if err != nil {
				return err
			}
			active, err := alerts.ListActive(ctx, equipmentID)
			if err != nil {
				return err
			}
			for sev, n := range counts {
				fmt.Printf("%s: %d\n", sev, n)
			}
			out, _ := json.MarshalIndent(active, "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}
	listCmd.Flags().StringVar(&equipmentID, "equipment", "", "Filter by equipment id")

	ackCmd := &cobra.Command{
		Use:   "ack <alert-id>",
		Short: "Acknowledge an active alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, pool, err := setup(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			return repository.NewAlertRepository(pool).Acknowledge(ctx, args[0])
		},
	}

	var notes string
	resolveCmd := &cobra.Command{
		Use:   "resolve <alert-id>",
		Short: "Resolve an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, pool, err := setup(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			return repository.NewAlertRepository(pool).Resolve(ctx, args[0], notes)
		},
	}
	resolveCmd.Flags().StringVar(&notes, "notes", "", "Resolution notes")

	cmd.AddCommand(listCmd, ackCmd, resolveCmd)
	return cmd
}

func newService(cfg *config.Config, pool *pgxpool.Pool) (*inspection.Service, func()) {
	return newServiceWithPolicy(cfg, pool, false)
}

func newServiceWithPolicy(cfg *config.Config, pool *pgxpool.Pool, lenient bool) (*inspection.Service, func()) {
	log := logging.New("cli", cfg.LogLevel)
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	engine := scoring.New()
	if lenient {
		engine = scoring.NewWithPolicy(scoring.PolicyLenient)
	}
	svc := inspection.NewService(
		repository.NewChecklistRepository(pool),
		repository.NewTemplateRepository(pool),
		repository.NewEquipmentRepository(pool),
		queue.NewDispatcher(client),
		engine,
		cfg.AlertThreshold,
		log,
	)
	return svc, func() { _ = client.Close() }
}
