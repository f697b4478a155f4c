package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mcdev12/capspace/go/internal/db"
	"github.com/mcdev12/capspace/go/internal/deadline"
	"github.com/mcdev12/capspace/go/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var cfg Config

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("capspace failed")
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "capspace",
		Short: "Roster economy transaction engine",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(); err != nil {
				log.Warn().Err(err).Msg("could not load .env file")
			}
			cfg = loadConfig()
			setupLogging(cfg.LogLevel)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newRunDeadlineCmd(),
		newDeadlineStatusCmd(),
		newValidateRosterCmd(),
		newCreateSeasonPicksCmd(),
		newUpdateSettingsCmd(),
		newResolveAuctionCmd(),
		newProcessTradeCmd(),
	)
	return root
}

// withServices opens the database and wires the apps for a one-shot command.
func withServices(ctx context.Context, fn func(*Services) error) error {
	database, err := setupDatabase(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer database.Close()

	base, err := loadRules(cfg.RulesFile)
	if err != nil {
		return err
	}
	return fn(setupServices(database, base, metrics.NoOp{}, cfg.DeadlineWorkers))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the deadline consumer with health and metrics endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			database, err := setupDatabase(ctx, cfg.DB)
			if err != nil {
				return err
			}
			defer database.Close()

			base, err := loadRules(cfg.RulesFile)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewDBStatsCollector(database, "capspace"))
			prom := metrics.NewPrometheus(reg)
			services := setupServices(database, base, prom, cfg.DeadlineWorkers)

			nc, js, err := deadline.Connect(cfg.NATSURL)
			if err != nil {
				return err
			}
			defer nc.Close()

			consumer, err := deadline.NewConsumer(ctx, js, services.Runner, cfg.DeadlineWorkers)
			if err != nil {
				return err
			}
			go func() {
				if err := consumer.Run(ctx); err != nil {
					log.Error().Err(err).Msg("deadline consumer failed")
					stop()
				}
			}()

			server := setupServer(cfg.Port, prom)
			go func() {
				log.Info().Str("addr", server.Addr).Msg("server starting")
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error().Err(err).Msg("server failed")
					stop()
				}
			}()

			<-ctx.Done()
			log.Info().Msg("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("server shutdown failed")
			}
			return nil
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := setupDatabase(cmd.Context(), cfg.DB)
			if err != nil {
				return err
			}
			defer database.Close()
			return db.Migrate(database, cfg.DB.Database)
		},
	}
}

func newRunDeadlineCmd() *cobra.Command {
	var publish bool
	cmd := &cobra.Command{
		Use:   "run-deadline <deadline-id>",
		Short: "Run a deadline's batch work now, or publish its trigger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if publish {
				nc, js, err := deadline.Connect(cfg.NATSURL)
				if err != nil {
					return err
				}
				defer nc.Close()
				if _, err := deadline.EnsureStream(cmd.Context(), js); err != nil {
					return err
				}
				if err := deadline.Publish(cmd.Context(), js, id); err != nil {
					return err
				}
				log.Info().Int64("deadline_id", id).Msg("published deadline trigger")
				return nil
			}

			return withServices(cmd.Context(), func(s *Services) error {
				sum, err := s.Runner.Run(cmd.Context(), id)
				if sum != nil {
					if perr := printJSON(sum); perr != nil {
						return perr
					}
				}
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&publish, "publish", false, "publish the trigger to JetStream instead of running in process")
	return cmd
}

func newDeadlineStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deadline-status <deadline-id>",
		Short: "Show a deadline and the recorded outcome of each of its units",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withServices(cmd.Context(), func(s *Services) error {
				d, err := s.Deadlines.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				units, err := s.Deadlines.Units(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(map[string]any{"deadline": d, "units": units})
			})
		},
	}
}

func newValidateRosterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-roster <team-id> <deadline-id>",
		Short: "Report a team's cap and roster limits at a deadline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			teamID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid team id %q: %w", args[0], err)
			}
			deadlineID, err := parseID(args[1])
			if err != nil {
				return err
			}
			return withServices(cmd.Context(), func(s *Services) error {
				rep, err := s.Rosters.ValidateTeam(cmd.Context(), teamID, deadlineID)
				if err != nil {
					return err
				}
				return printJSON(rep)
			})
		},
	}
}

func newResolveAuctionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve-auction <auction-id>",
		Short: "Close an auction whose fixed end has passed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withServices(cmd.Context(), func(s *Services) error {
				res, err := s.Auctions.Resolve(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(res)
			})
		},
	}
}

func newProcessTradeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process-trade <trade-id>",
		Short: "Complete a proposed trade without waiting for acceptances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withServices(cmd.Context(), func(s *Services) error {
				t, err := s.Trades.Process(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(t)
			})
		},
	}
}


func newCreateSeasonPicksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-season-picks <league-id> <season-end-year>",
		Short: "Create every team's draft picks for a season",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			leagueID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid league id %q: %w", args[0], err)
			}
			season, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid season %q: %w", args[1], err)
			}
			return withServices(cmd.Context(), func(s *Services) error {
				picks, err := s.Picks.CreateSeasonPicks(cmd.Context(), leagueID, season)
				if err != nil {
					return err
				}
				return printJSON(picks)
			})
		},
	}
}

func newUpdateSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update-league-settings <league-id> <settings.json>",
		Short: "Replace a league's rule overrides",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			leagueID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid league id %q: %w", args[0], err)
			}
			settings, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read settings: %w", err)
			}
			return withServices(cmd.Context(), func(s *Services) error {
				league, err := s.Leagues.UpdateSettings(cmd.Context(), leagueID, settings)
				if err != nil {
					return err
				}
				return printJSON(league)
			})
		},
	}
}
