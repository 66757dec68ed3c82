package main

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/qdynsim/internal/config"
	"github.com/san-kum/qdynsim/internal/experiment"
	"github.com/san-kum/qdynsim/internal/solver"
	"github.com/san-kum/qdynsim/internal/storage"
	"github.com/san-kum/qdynsim/internal/viz"
	"github.com/spf13/cobra"
)

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if model != "" {
		cfg.Model = model
	}

	if preset != "" {
		p := config.GetPreset(cfg.Model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Model))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if model != "" && loaded.Model != model {
			log.Warn().Str("config", loaded.Model).Str("arg", model).Msg("model argument overrides config file")
			loaded.Model = model
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("solver") {
		cfg.Solver = solverName
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("sites") {
		cfg.NumSites = numSites
	}
	if flags.Changed("fock") {
		f, err := config.ParseFock(fock)
		if err != nil {
			return nil, err
		}
		cfg.Fock = f
	}
	if flags.Changed("excitations") {
		cfg.Excitations = config.ExcitationCap(excitations)
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("points") {
		cfg.NumPoints = numPoints
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("tol") {
		cfg.Tolerance = tolerance
	}
	if flags.Changed("time-dep") {
		cfg.TimeDep = timeDep
	}
	if flags.Changed("ntraj") {
		cfg.NTraj = ntraj
	}
	if flags.Changed("nsubsteps") {
		cfg.NSubsteps = nsubsteps
	}
	if flags.Changed("seed") {
		s := seed
		cfg.Seed = &s
	}
	if err := cfg.SetParams(params); err != nil {
		return nil, err
	}

	// Stochastic runs always record the seed they used.
	if cfg.Stochastic() && cfg.Seed == nil {
		s := rand.Uint64()
		cfg.Seed = &s
	}

	return cfg, cfg.Validate()
}

func runSolve(cmd *cobra.Command, args []string) error {
	model := ""
	if len(args) > 0 {
		model = args[0]
	}
	cfg, err := resolveConfig(cmd, model)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exp := experiment.New(cfg).WithLogger(log)
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return err
	}

	start := time.Now()
	var out *experiment.Outcome
	if live {
		out, err = runLive(ctx, cfg, exp)
	} else {
		if !quiet {
			exp.AddOptions(solver.WithProgress(viz.NewProgress(os.Stderr, cfg.Solver)))
		}
		out, err = exp.Run(ctx, nil)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := saveOutcome(st, cfg, exp, out)
	if err != nil {
		return err
	}
	log.Info().Str("run", runID).Dur("elapsed", elapsed).Msg("run stored")

	fmt.Println(viz.HeaderStyle.Render(fmt.Sprintf("%s (%s)", cfg.Model, out.Solver)))
	printRow("run id", runID)
	printRow("elapsed", elapsed.Round(time.Millisecond).String())
	printRow("points", fmt.Sprint(len(out.Times)))
	if out.Stochastic != nil {
		printRow("trajectories", fmt.Sprint(len(out.Stochastic.Trajectories)))
		printRow("seed", fmt.Sprint(*cfg.Seed))
	} else {
		printRow("steps", fmt.Sprintf("%d (%d rejected)", out.Stats.Steps, out.Stats.Rejected))
	}

	fmt.Println("\nfinal expectation values:")
	last := len(out.Times) - 1
	for i, label := range out.Labels {
		printRow(label, fmt.Sprintf("%+.6f", out.Expect[i][last]))
	}

	if len(out.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		names := make([]string, 0, len(out.Metrics))
		for name := range out.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			printRow(name, fmt.Sprintf("%.6g", out.Metrics[name]))
		}
	}
	return nil
}

func printRow(label, value string) {
	fmt.Println("  " + viz.MetricLabel.Render(label) + viz.MetricValue.Render(value))
}

func runLive(ctx context.Context, cfg *config.Config, exp *experiment.Experiment) (*experiment.Outcome, error) {
	pr := exp.Problem()
	prog := tea.NewProgram(viz.NewLiveModel(cfg.Model, pr.Labels))
	rep := viz.NewLiveReporter(prog.Send, pr.EOps, cfg.Solver == "sesolve")
	exp.AddOptions(solver.WithProgress(rep), solver.WithObserver(rep))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		out    *experiment.Outcome
		runErr error
		done   = make(chan struct{})
	)
	go func() {
		defer close(done)
		out, runErr = exp.Run(ctx, nil)
		prog.Send(viz.Finished(runErr))
	}()

	if _, err := prog.Run(); err != nil {
		cancel()
		<-done
		return nil, err
	}
	// Quitting the view early cancels the solve.
	cancel()
	<-done
	return out, runErr
}

func saveOutcome(st *storage.Store, cfg *config.Config, exp *experiment.Experiment, out *experiment.Outcome) (string, error) {
	meta := storage.RunMetadata{
		Model:      cfg.Model,
		Solver:     out.Solver,
		Integrator: cfg.Integrator,
		NumSites:   cfg.NumSites,
		Dim:        exp.Problem().H.H0.N(),
		Duration:   cfg.Duration,
		NumPoints:  cfg.NumPoints,
		Dt:         cfg.Dt,
		Seed:       cfg.Seed,
		Params:     cfg.Params,
		Metrics:    out.Metrics,
		Steps:      out.Stats.Steps,
		Rejected:   out.Stats.Rejected,
	}
	if cfg.Stochastic() {
		meta.NTraj = cfg.NTraj
		meta.NSubsteps = cfg.NSubsteps
	}

	expect := storage.Series{Times: out.Times, Labels: out.Labels, Values: out.Expect}
	var measurement storage.Series
	if len(out.MeasurementLabels) > 0 {
		measurement = storage.Transpose(out.Times[1:], out.MeasurementLabels, out.Measurement)
	}
	return st.Save(meta, expect, measurement)
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	model, names := args[0], args[1:]

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tSTEPS\tREJECTED\tTIME\tMAX |Δ| VS FIRST")

	base, err := resolveConfig(cmd, model)
	if err != nil {
		return err
	}

	var reference [][]float64
	for _, name := range names {
		cfg := base.Clone()
		cfg.Integrator = name

		exp := experiment.New(cfg).WithLogger(log)
		if err := exp.Setup(experiment.NewRegistry()); err != nil {
			return err
		}

		start := time.Now()
		out, err := exp.Run(cmd.Context(), nil)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		elapsed := time.Since(start)

		if reference == nil {
			reference = out.Expect
		}
		diff := 0.0
		for i := range out.Expect {
			for k := range out.Expect[i] {
				diff = math.Max(diff, math.Abs(out.Expect[i][k]-reference[i][k]))
			}
		}

		fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%.3e\n", name, out.Stats.Steps, out.Stats.Rejected, elapsed.Round(time.Microsecond), diff)
	}

	return w.Flush()
}
