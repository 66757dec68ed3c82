package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/san-kum/qdynsim/internal/logger"
	"github.com/spf13/cobra"
)

var (
	dataDir   string
	logLevel  string
	logPretty bool
	log       zerolog.Logger

	// run flags
	configFile  string
	preset      string
	solverName  string
	integrator  string
	numSites    int
	fock        string
	excitations int
	duration    float64
	numPoints   int
	dt          float64
	tolerance   float64
	timeDep     bool
	ntraj       int
	nsubsteps   int
	seed        uint64
	params      []string
	live        bool
	quiet       bool

	// inspection flags
	series  string
	xSeries string
	ySeries string
	outPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "qdynsim",
		Short:         "qubit-oscillator time evolution lab",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = logger.New(logger.Config{Level: logLevel, Pretty: logPretty})
			logger.SetGlobalLogger(log)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".qdynsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logPretty, "log-pretty", true, "human-readable log output")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a solve and store its expectation values",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSolve,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&live, "live", false, "show a live view while solving")
	runCmd.Flags().BoolVar(&quiet, "quiet", false, "no progress bar")

	compareCmd := &cobra.Command{
		Use:   "compare [model] [integrator1] [integrator2] ...",
		Short: "compare integrators on the same model",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	addRunFlags(compareCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot expectation values and measurement records",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&xSeries, "x", "", "series for the phase-plane x axis")
	plotCmd.Flags().StringVar(&ySeries, "y", "", "series for the phase-plane y axis")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of an expectation series",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&series, "series", "", "series label (default: first)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export expectation values to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <run_id>.csv)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportMsgpackCmd := &cobra.Command{
		Use:   "export-msgpack [run_id]",
		Short: "export a run to MessagePack",
		Args:  cobra.ExactArgs(1),
		RunE:  exportMsgpack,
	}
	exportMsgpackCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <run_id>.msgpack)")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE:  listPresets,
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list models and integrators",
		RunE:  listModels,
	}

	rootCmd.AddCommand(runCmd, compareCmd, listCmd, plotCmd, analyzeCmd, exportCSVCmd, exportJSONCmd, exportMsgpackCmd, presetsCmd, modelsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&solverName, "solver", "sesolve", "sesolve, mesolve or smesolve")
	cmd.Flags().StringVar(&integrator, "integrator", "rk45", "integrator")
	cmd.Flags().IntVar(&numSites, "sites", 1, "number of sites")
	cmd.Flags().StringVar(&fock, "fock", "2", "fock truncation, one value or a comma-separated list per site")
	cmd.Flags().IntVar(&excitations, "excitations", 0, "excitation cap for qubit-only models, 0 keeps only the vacuum (default sites²)")
	cmd.Flags().Float64Var(&duration, "time", 1.0, "duration")
	cmd.Flags().IntVar(&numPoints, "points", 101, "number of output times")
	cmd.Flags().Float64Var(&dt, "dt", 1e-3, "fixed step size")
	cmd.Flags().Float64Var(&tolerance, "tol", 1e-8, "adaptive step tolerance")
	cmd.Flags().BoolVar(&timeDep, "time-dep", false, "use the model's time-dependent hamiltonian")
	cmd.Flags().IntVar(&ntraj, "ntraj", 4, "stochastic trajectories")
	cmd.Flags().IntVar(&nsubsteps, "nsubsteps", 41, "stochastic substeps per output interval")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (stochastic runs)")
	cmd.Flags().StringArrayVar(&params, "param", nil, "model parameter name=value (repeatable)")
}
