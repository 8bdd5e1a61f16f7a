package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/iwvelando/payment-plan/internal/config"
	"github.com/iwvelando/payment-plan/internal/listing"
	"github.com/iwvelando/payment-plan/internal/schedule"
	"github.com/iwvelando/payment-plan/internal/server"
	"github.com/iwvelando/payment-plan/internal/session"
	"github.com/iwvelando/payment-plan/pkg/constants"
	"github.com/iwvelando/payment-plan/pkg/datetime"
	"github.com/iwvelando/payment-plan/pkg/mathutil"
	"github.com/iwvelando/payment-plan/pkg/output"
	"github.com/iwvelando/payment-plan/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// hintFor returns the layout hint for structural parse failures.
func hintFor(err error) string {
	var headerErr *schedule.MalformedHeaderError
	var tableErr *schedule.MalformedTableError
	if errors.As(err, &headerErr) || errors.As(err, &tableErr) {
		return schedule.FormatHint
	}
	return ""
}

func syncLogger(logger *zap.Logger) {
	_ = logger.Sync()
}

// planFlag resolves --plan, falling back to the configured default.
func planFlag(value string, conf *config.Configuration) (schedule.Scenario, error) {
	if strings.TrimSpace(value) == "" {
		value = conf.Parsing.DefaultPlan
	}
	return schedule.ParseScenario(value)
}

// render writes a schedule in the requested output format.
func render(w io.Writer, s *schedule.Schedule, plan schedule.Scenario, format string) error {
	switch format {
	case constants.OutputFormatCSV:
		return output.WriteCSV(w, s)
	case constants.OutputFormatXLSX:
		return output.WriteXLSX(w, s)
	default:
		return output.PrettyFormat(w, schedule.Select(s, plan))
	}
}

// exportFile writes a schedule to path in the format its extension names.
func exportFile(path string, s *schedule.Schedule) error {
	format, err := validation.ExportFormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := render(f, s, schedule.OnTime, format); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// readSchedule parses a payment plan file with the given profile, or the
// configured one when empty.
func readSchedule(logger *zap.Logger, op, path, profile string, conf *config.Configuration) (*schedule.Schedule, error) {
	if profile == "" {
		profile = conf.Parsing.Profile
	}
	if err := validation.ValidateProfile(profile); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	res, err := schedule.Parse(data, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	schedule.LogResult(logger, op, res)
	return res.Schedule, nil
}

func newShowCmd(g *globalOptions) *cobra.Command {
	var plan, profile, outputFormat string

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Show a payment plan file under the chosen plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger, err := g.setup(cmd)
			if err != nil {
				return err
			}
			defer syncLogger(logger)

			// CLI override takes precedence over config
			format := conf.Output.Format
			if outputFormat != "" {
				format = outputFormat
			}
			if err := validation.ValidateOutputFormat(format); err != nil {
				return err
			}

			scenario, err := planFlag(plan, conf)
			if err != nil {
				return err
			}

			s, err := readSchedule(logger, "main.show", args[0], profile, conf)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), s, scenario, format)
		},
	}

	cmd.Flags().StringVarP(&plan, "plan", "p", "", "plan to show: minimum, on_time, maximum")
	cmd.Flags().StringVar(&profile, "profile", "", "file layout: auto, a, b")
	cmd.Flags().StringVarP(&outputFormat, "output-format", "o", "", "type of output override: pretty, csv, xlsx")
	return cmd
}

func newGenerateCmd(g *globalOptions) *cobra.Command {
	var total, first, out, outputFormat string
	var count, interval int

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an evenly split payment plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, logger, err := g.setup(cmd)
			if err != nil {
				return err
			}
			defer syncLogger(logger)

			totalAmount, err := mathutil.ParseAmount(total)
			if err != nil {
				return &schedule.InvalidParameterError{Param: "total amount", Value: total, Reason: "is not a number"}
			}
			firstDate, err := datetime.ParseDate(first)
			if err != nil {
				return &schedule.InvalidParameterError{Param: "first payment date", Value: first, Reason: err.Error()}
			}

			s, err := schedule.Generate(schedule.GenerateParams{
				TotalAmount:      totalAmount,
				InstallmentCount: count,
				FirstPaymentDate: firstDate,
				IntervalMonths:   interval,
			})
			if err != nil {
				return err
			}
			logger.Info("schedule generated",
				zap.String("op", "main.generate"),
				zap.Int("installments", count),
				zap.Int("intervalMonths", interval),
			)

			if out != "" {
				return exportFile(out, s)
			}

			format := conf.Output.Format
			if outputFormat != "" {
				format = outputFormat
			}
			if err := validation.ValidateOutputFormat(format); err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), s, schedule.OnTime, format)
		},
	}

	cmd.Flags().StringVar(&total, "total", "", "total amount to split, e.g. 100000 or 100.000,50")
	cmd.Flags().IntVar(&count, "count", 1, "number of installments")
	cmd.Flags().StringVar(&first, "first", "", "first payment date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&interval, "interval", 1, "months between installments")
	cmd.Flags().StringVar(&out, "out", "", "write the plan to a .csv or .xlsx file")
	cmd.Flags().StringVarP(&outputFormat, "output-format", "o", "", "type of output override: pretty, csv, xlsx")
	_ = cmd.MarkFlagRequired("total")
	_ = cmd.MarkFlagRequired("first")
	return cmd
}

func newExportCmd(g *globalOptions) *cobra.Command {
	var out, profile string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Convert a payment plan file to the canonical CSV or Excel layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger, err := g.setup(cmd)
			if err != nil {
				return err
			}
			defer syncLogger(logger)

			s, err := readSchedule(logger, "main.export", args[0], profile, conf)
			if err != nil {
				return err
			}
			if err := exportFile(out, s); err != nil {
				return err
			}
			logger.Info("schedule exported",
				zap.String("op", "main.export"),
				zap.String("path", out),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "destination .csv or .xlsx file")
	cmd.Flags().StringVar(&profile, "profile", "", "file layout: auto, a, b")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newServeCmd(g *globalOptions) *cobra.Command {
	var serverConfig, address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web UI and HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}

			srvConf, err := server.LoadConfig(serverConfig)
			if err != nil {
				return err
			}
			if address != "" {
				srvConf.Address = address
			}

			conf, err = srvConf.Effective(*conf)
			if err != nil {
				return err
			}
			logger, err := initializeLogger(conf.Logging, g.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer syncLogger(logger)

			plan, err := schedule.ParseScenario(conf.Parsing.DefaultPlan)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store := session.NewStore(logger)
			go sweepSessions(ctx, store, srvConf.SessionIdleDuration())

			handler := server.NewHandler(logger, server.Options{
				MaxUploadSize: srvConf.UploadSizeBytes(),
				Version:       version,
				Store:         store,
				Listing: listing.NewClient(logger, listing.Options{
					UserAgent: conf.Listing.UserAgent,
					Timeout:   conf.Listing.Timeout,
					SMSNumber: conf.Listing.SMSNumber,
				}),
				Profile:     conf.Parsing.Profile,
				DefaultPlan: plan,
			})

			return runServer(ctx, logger, &http.Server{
				Addr:         srvConf.Address,
				Handler:      handler,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  60 * time.Second,
			})
		},
	}

	cmd.Flags().StringVar(&serverConfig, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&address, "address", "", "listen address override")
	return cmd
}

// runServer serves until ctx is cancelled, then shuts down gracefully.
func runServer(ctx context.Context, logger *zap.Logger, srv *http.Server) error {
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("op", "main.serve"),
			zap.String("address", srv.Addr),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down server", zap.String("op", "main.serve"))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error during server shutdown: %w", err)
	}
	return nil
}

// sweepSessions drops idle sessions until ctx is cancelled.
func sweepSessions(ctx context.Context, store *session.Store, idle time.Duration) {
	period := idle / 4
	if period < time.Minute {
		period = time.Minute
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			store.Sweep(idle)
		}
	}
}

func newListingCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "listing <url>",
		Short: "Read a vehicle listing and print its damage record SMS query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger, err := g.setup(cmd)
			if err != nil {
				return err
			}
			defer syncLogger(logger)

			client := listing.NewClient(logger, listing.Options{
				UserAgent: conf.Listing.UserAgent,
				Timeout:   conf.Listing.Timeout,
				SMSNumber: conf.Listing.SMSNumber,
			})
			l, err := client.Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printListing(cmd.OutOrStdout(), l)
		},
	}
}

func printListing(w io.Writer, l *listing.Listing) error {
	flag := func(b *bool) string {
		switch {
		case b == nil:
			return "not stated"
		case *b:
			return "yes"
		default:
			return "no"
		}
	}
	value := func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	}

	_, err := fmt.Fprintf(w, "Title:     %s\nPlate:     %s\nPainted:   %s\nReplaced:  %s\nSMS query: %s\n",
		value(l.Title), value(l.Plate), flag(l.Painted), flag(l.Replaced), value(l.SMSQuery))
	return err
}
