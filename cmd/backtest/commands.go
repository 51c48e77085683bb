package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/odds-backtester/internal/backtest"
	"github.com/yourusername/odds-backtester/internal/datasource"
	"github.com/yourusername/odds-backtester/internal/features"
	"github.com/yourusername/odds-backtester/internal/metrics"
	"github.com/yourusername/odds-backtester/internal/models"
	"github.com/yourusername/odds-backtester/internal/repository"
	"github.com/yourusername/odds-backtester/internal/service"
)

var (
	runDomains []string
	runTimeout time.Duration

	oddsHome, oddsDraw, oddsAway float64
	auxValues                    map[string]string
	featuresDomain               string

	verdictDomain string
	verdictLimit  int
)

func init() {
	runCmd.Flags().StringSliceVarP(&runDomains, "domain", "d", nil, "Validate only these domains (default: all configured)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Abort the run after this long (0 disables)")

	featuresCmd.Flags().Float64Var(&oddsHome, "home", 0, "Decimal odds for a home win")
	featuresCmd.Flags().Float64Var(&oddsDraw, "draw", 0, "Decimal odds for a draw")
	featuresCmd.Flags().Float64Var(&oddsAway, "away", 0, "Decimal odds for an away win")
	featuresCmd.Flags().StringToStringVar(&auxValues, "aux", nil, "Auxiliary statistics, e.g. home_form=2.1")
	featuresCmd.Flags().StringVar(&featuresDomain, "domain", "", "Also print this domain's model prediction")
	_ = featuresCmd.MarkFlagRequired("home")
	_ = featuresCmd.MarkFlagRequired("draw")
	_ = featuresCmd.MarkFlagRequired("away")

	verdictsCmd.Flags().StringVarP(&verdictDomain, "domain", "d", "", "Only show verdicts for this domain")
	verdictsCmd.Flags().IntVarP(&verdictLimit, "limit", "n", 20, "Maximum number of verdicts")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run holdout validation for the configured domains",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if runTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, runTimeout)
			defer cancel()
		}
		return runValidation(ctx, cmd)
	},
}

func runValidation(ctx context.Context, cmd *cobra.Command) error {
	metrics.InitRegistry()

	repo, err := repository.NewVerdictRepository(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open verdict store: %w", err)
	}
	if repo != nil {
		defer repo.Close()
	}

	registry, err := service.BuildRegistry(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build classifier registry: %w", err)
	}

	svc, err := service.NewValidationService(cfg, registry, datasource.NewFactory(log), repo, log)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"domains":    cfg.DomainIDs(),
		"classifier": cfg.Classifier.Mode,
		"storage":    cfg.Storage.Driver,
	}).Info("Starting validation run")

	result, err := svc.Run(ctx, runDomains...)
	if result != nil {
		for _, report := range result.Reports {
			fmt.Fprintln(cmd.OutOrStdout(), backtest.GenerateConsoleReport(report))
		}
	}
	if err != nil {
		return err
	}

	if path := cfg.Metrics.Textfile; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			log.WithError(err).Warn("Failed to write metrics textfile")
		}
	}

	if !result.AllPassed {
		log.Warn("One or more domains failed validation")
		return errValidationFailed
	}
	log.Info("All domains passed validation")
	return nil
}

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Print the normalized feature vector for an odds triple",
	RunE: func(cmd *cobra.Command, args []string) error {
		normalizer, err := features.NewNormalizer(cfg.Features.AuxDefaults)
		if err != nil {
			return err
		}

		aux := make(map[string]float64, len(auxValues))
		for name, raw := range auxValues {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fmt.Errorf("aux %s: %w", name, err)
			}
			aux[name] = v
		}

		fv, err := normalizer.Normalize(models.OddsTriple{Home: oddsHome, Draw: oddsDraw, Away: oddsAway}, aux)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		values := fv.Values()
		for i, name := range fv.Names() {
			fmt.Fprintf(out, "%-22s %.6f\n", name, values[i])
		}

		if featuresDomain == "" {
			return nil
		}
		registry, err := service.BuildRegistry(cfg, log)
		if err != nil {
			return err
		}
		d, _ := cfg.Domain(featuresDomain)
		classifier, err := registry.Lookup(featuresDomain, d.ModelVersion)
		if err != nil {
			return err
		}
		dist, err := classifier.Predict(cmd.Context(), fv)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nModel %s (%s): home=%.4f draw=%.4f away=%.4f\n",
			featuresDomain, classifier.Version(), dist.Home, dist.Draw, dist.Away)
		return nil
	},
}

var verdictsCmd = &cobra.Command{
	Use:   "verdicts",
	Short: "List stored validation verdicts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo, err := repository.NewVerdictRepository(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to open verdict store: %w", err)
		}
		if repo == nil {
			return fmt.Errorf("storage driver %q keeps no verdict history", cfg.Storage.Driver)
		}
		defer repo.Close()

		records, err := repo.List(ctx, verdictDomain, verdictLimit)
		if err != nil {
			return err
		}
		rows := make([]models.VerdictRecord, 0, len(records))
		for _, r := range records {
			rows = append(rows, *r)
		}

		backtest.WriteVerdictTable(cmd.OutOrStdout(), rows)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "backtest %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}
