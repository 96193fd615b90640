package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/barneshut/internal/automation"
	"github.com/san-kum/barneshut/internal/barneshut"
	"github.com/san-kum/barneshut/internal/experiment"
	"github.com/san-kum/barneshut/internal/export"
	"github.com/san-kum/barneshut/internal/sim"
	"github.com/san-kum/barneshut/internal/storage"
	"github.com/san-kum/barneshut/internal/telemetry"
	"github.com/san-kum/barneshut/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if saveName != "" {
		name = saveName
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var observers []sim.Observer
	if metricsAddr != "" {
		collector := telemetry.NewCollector()
		observers = append(observers, collector)
		go func() {
			if err := collector.Serve(ctx, metricsAddr); err != nil {
				log.WithError(err).Error("metrics server failed")
			}
		}()
		log.WithField("addr", metricsAddr).Info("serving metrics")
	}

	runLog := log.WithField("run", name)
	exp.Setup(runLog, observers...)

	result, runErr := exp.Run(ctx)
	if result == nil {
		return runErr
	}
	var simErr *sim.SimulationError
	if runErr != nil && !errors.As(runErr, &simErr) && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	final, _ := result.Final()
	fmt.Printf("bodies: %d\n", exp.Set().Len())
	fmt.Printf("steps: %d/%d\n", result.StepsTaken, cfg.Steps)
	fmt.Printf("simulated time: %g\n", result.Time)
	fmt.Printf("elapsed: %v\n", result.Elapsed)
	fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)
	fmt.Printf("tree: %d nodes, depth %d\n", final.Nodes, final.Depth)
	for _, k := range sortedKeys(result.Metrics) {
		fmt.Printf("%s: %.4g\n", k, result.Metrics[k])
	}

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.SaveResult(exp.Metadata(name), result)
		if err != nil {
			return err
		}
		fmt.Printf("saved: %s\n", id)
	}

	return runErr
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}
	// the simulator keeps its silent logger while the view owns the terminal
	exp.Setup(nil)

	m := viz.NewModel(exp.Simulator(), exp.Set(), cfg.Dt, name)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}
	exp.Setup(log.WithField("run", name))

	if _, err := exp.Run(context.Background()); err != nil {
		return err
	}

	p := exp.Simulator().Params()
	bodies := exp.Set().Bodies()
	// the simulator's tree predates the last integration
	tree := barneshut.Build(bodies, p)

	opts := export.DefaultFrameOptions()
	opts.Width, opts.Height = imgSize, imgSize
	opts.Tree = drawTree
	svg := export.FrameToSVG(bodies, tree, p, opts)
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{"file": outFile, "bodies": len(bodies)}).Info("snapshot written")
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	r := &automation.Runner{Log: log, Workers: workers}
	if !noSave {
		r.Store = storage.New(dataDir)
		if err := r.Store.Init(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, runErr := r.RunScenario(ctx, scenario)

	w := newTable()
	fmt.Fprintln(w, "STEP\tNAME\tTHETA\tSTEPS\tELAPSED\tDRIFT\tRUN")
	for _, res := range results {
		fmt.Fprintf(w, "%d\t%s\t%g\t%d\t%v\t%.3e\t%s\n",
			res.Step,
			res.Name,
			res.Result.Theta,
			res.Result.StepsTaken,
			res.Result.Elapsed.Round(time.Millisecond),
			res.Result.EnergyDrift,
			res.RunID,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}
