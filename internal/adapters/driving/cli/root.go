// Package cli provides the cobra command tree for polidigest.
package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/polidigest/internal/core/ports/driving"
	"github.com/custodia-labs/polidigest/internal/logger"
)

// Services holds the driving ports and handlers the commands call.
type Services struct {
	Analysis driving.AnalysisService
	Settings driving.SettingsService

	// Metrics serves the Prometheus registry. Optional.
	Metrics http.Handler

	// Close releases provider connections. Optional.
	Close func() error
}

// WireFunc builds the services for a config directory.
// An empty directory selects the default location.
type WireFunc func(configDir string) (*Services, error)

var (
	version = "dev"

	verbose   bool
	configDir string

	wire     WireFunc
	closeFns []func() error

	analysisService driving.AnalysisService
	settingsService driving.SettingsService
	metricsHandler  http.Handler
)

var rootCmd = &cobra.Command{
	Use:   "polidigest",
	Short: "Summarise and score insurance policy documents",
	Long: `polidigest turns an insurance policy document into a condensed summary,
the key facts it contains (policy number, dates, amounts) and a rule-based
compliance score.

Summarisation needs an LLM provider ('polidigest settings llm').
Entity extraction and compliance scoring work without one.`,
	SilenceUsage:      true,
	PersistentPreRunE: initialise,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.polidigest)")
}

// SetVersion sets the version reported by 'polidigest version'.
func SetVersion(v string) {
	version = v
}

// SetWiring registers the function that builds services before a command runs.
func SetWiring(fn WireFunc) {
	wire = fn
}

// SetServices injects services directly, bypassing the wiring function.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	analysisService = s.Analysis
	settingsService = s.Settings
	metricsHandler = s.Metrics
	if s.Close != nil {
		closeFns = append(closeFns, s.Close)
	}
}

// Execute runs the command tree and releases services afterwards.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	return errors.Join(err, shutdown())
}

func initialise(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if wire == nil || cmd == versionCmd || analysisService != nil {
		return nil
	}

	services, err := wire(configDir)
	if err != nil {
		return err
	}
	SetServices(services)
	return nil
}

func shutdown() error {
	var errs []error
	for _, fn := range closeFns {
		errs = append(errs, fn())
	}
	closeFns = nil
	return errors.Join(errs...)
}
