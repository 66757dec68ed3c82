package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/qdynsim/internal/analysis"
	"github.com/san-kum/qdynsim/internal/config"
	"github.com/san-kum/qdynsim/internal/experiment"
	"github.com/san-kum/qdynsim/internal/storage"
	"github.com/san-kum/qdynsim/internal/viz"
	"github.com/spf13/cobra"
)

const maxPlots = 6

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tSOLVER\tTIME\tSITES\tDIM\tDURATION\tPOINTS\tINTEG")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%.2f\t%d\t%s\n",
			run.ID,
			run.Model,
			run.Solver,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.NumSites,
			run.Dim,
			run.Duration,
			run.NumPoints,
			run.Integrator,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	expect, err := st.LoadExpect(runID)
	if err != nil {
		return err
	}
	if len(expect.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Println(viz.HeaderStyle.Render(meta.ID))
	fmt.Printf("model: %s (%s)\n", meta.Model, meta.Solver)
	fmt.Printf("samples: %d over [%g, %g]\n", len(expect.Times), expect.Times[0], expect.Times[len(expect.Times)-1])
	fmt.Println(viz.Separator(60) + "\n")

	if xSeries != "" || ySeries != "" {
		return plotPhase(expect)
	}

	for i, label := range expect.Labels {
		if i == maxPlots {
			fmt.Printf("(%d more series not shown)\n", len(expect.Labels)-maxPlots)
			break
		}
		plotSeries(expect.Values[i], fmt.Sprintf("<%s> vs time", label))
	}

	if len(meta.Measurement) > 0 {
		meas, err := st.LoadMeasurement(runID)
		if err != nil {
			return err
		}
		for i, label := range meas.Labels {
			plotSeries(meas.Values[i], fmt.Sprintf("homodyne record %s", label))
		}
	}
	return nil
}

func plotSeries(data []float64, caption string) {
	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	fmt.Println(graph)
	fmt.Println()
}

func plotPhase(expect storage.Series) error {
	x, ok := expect.Column(xSeries)
	if !ok {
		return fmt.Errorf("unknown series %q (available: %v)", xSeries, expect.Labels)
	}
	y, ok := expect.Column(ySeries)
	if !ok {
		return fmt.Errorf("unknown series %q (available: %v)", ySeries, expect.Labels)
	}

	portrait, err := analysis.NewPhasePortrait(xSeries, x, ySeries, y)
	if err != nil {
		return err
	}
	fmt.Print(analysis.PhasePortraitToASCII(portrait, 60, 24))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	expect, err := st.LoadExpect(runID)
	if err != nil {
		return err
	}
	if len(expect.Labels) == 0 {
		return fmt.Errorf("run %s has no expectation values", runID)
	}

	label := series
	if label == "" {
		label = expect.Labels[0]
	}
	data, ok := expect.Column(label)
	if !ok {
		return fmt.Errorf("unknown series %q (available: %v)", label, expect.Labels)
	}

	step, err := analysis.UniformStep(expect.Times)
	if err != nil {
		return err
	}

	fmt.Println(viz.HeaderStyle.Render("frequency analysis: " + meta.ID))
	fmt.Printf("model: %s, series: %s\n", meta.Model, label)
	fmt.Println(viz.Separator(60) + "\n")

	spec := analysis.PowerSpectrum(data, step)
	if len(spec.Power) > 1 {
		graph := asciigraph.Plot(spec.Power[1:],
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("amplitude spectrum of <%s>", label)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	freq, err := analysis.DominantFrequency(data, step)
	if err != nil {
		return err
	}
	fmt.Printf("dominant frequency: %.4f (resolution %.4f)\n", freq, 1/(float64(len(data))*step))
	if freq > 0 {
		fmt.Printf("period: %.4f\n", 1.0/freq)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	expect, err := st.LoadExpect(runID)
	if err != nil {
		return err
	}

	path := outPath
	if path == "" {
		path = runID + ".csv"
	}
	if err := storage.WriteCSV(path, expect); err != nil {
		return err
	}

	fmt.Printf("exported %d rows to %s\n", len(expect.Times), path)
	return nil
}

func loadExport(runID string) (storage.ExportData, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return storage.ExportData{}, err
	}
	expect, err := st.LoadExpect(runID)
	if err != nil {
		return storage.ExportData{}, err
	}
	var measurement storage.Series
	if len(meta.Measurement) > 0 {
		if measurement, err = st.LoadMeasurement(runID); err != nil {
			return storage.ExportData{}, err
		}
	}
	return storage.NewExportData(*meta, expect, measurement), nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	data, err := loadExport(args[0])
	if err != nil {
		return err
	}

	if outPath == "" {
		return storage.ExportJSONTo(os.Stdout, data)
	}
	if err := storage.ExportJSON(outPath, data); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "exported to %s\n", outPath)
	return nil
}

func exportMsgpack(cmd *cobra.Command, args []string) error {
	data, err := loadExport(args[0])
	if err != nil {
		return err
	}

	path := outPath
	if path == "" {
		path = args[0] + ".msgpack"
	}
	if err := storage.ExportMsgpack(path, data); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	presets := config.ListPresets(args[0])
	if len(presets) == 0 {
		fmt.Printf("no presets for model: %s\n", args[0])
		return nil
	}
	fmt.Printf("presets for %s:\n", args[0])
	for _, p := range presets {
		cfg := config.GetPreset(args[0], p)
		fmt.Printf("  %-10s %s, %d site(s), t=%g\n", p, cfg.Solver, cfg.NumSites, cfg.Duration)
	}
	return nil
}

func listModels(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	fmt.Println("models:")
	for _, m := range reg.ListModels() {
		fmt.Printf("  %-16s presets: %v\n", m, config.ListPresets(m))
	}
	fmt.Printf("integrators: %v\n", reg.ListIntegrators())
	fmt.Printf("stochastic integrators: %v\n", reg.ListStochasticIntegrators())
	return nil
}
