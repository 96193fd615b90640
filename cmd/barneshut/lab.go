package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/barneshut/internal/analysis"
	"github.com/san-kum/barneshut/internal/barneshut"
	"github.com/san-kum/barneshut/internal/compute"
	"github.com/san-kum/barneshut/internal/config"
	"github.com/san-kum/barneshut/internal/layout"
)

func parseFloats(s string) ([]float64, error) {
	var out []float64
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", f, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list")
	}
	return out, nil
}

func runAccuracy(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	thetas, err := parseFloats(thetaList)
	if err != nil {
		return fmt.Errorf("--thetas: %w", err)
	}

	set, err := cfg.NewSet()
	if err != nil {
		return err
	}

	fmt.Printf("force accuracy for %s (%d bodies)\n\n", name, set.Len())
	reports := analysis.ThetaSweep(set.Bodies(), cfg.Params(), thetas)

	w := newTable()
	fmt.Fprintln(w, "THETA\tMEAN ERR\tMAX ERR\tNODES\tTREE\tDIRECT\tSPEEDUP")
	mean := make([]float64, len(reports))
	for i, r := range reports {
		mean[i] = r.MeanError
		fmt.Fprintf(w, "%.2f\t%.3e\t%.3e\t%d\t%v\t%v\t%.1fx\n",
			r.Theta, r.MeanError, r.MaxError, r.Nodes,
			r.TreeTime.Round(time.Microsecond), r.DirectTime.Round(time.Microsecond), r.Speedup())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(mean) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(mean,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption("mean relative error by theta"),
		))
	}
	return nil
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sizes, err := parseFloats(sizeList)
	if err != nil {
		return fmt.Errorf("--sizes: %w", err)
	}

	fmt.Printf("benchmarking %s layout, theta %.2f\n\n", cfg.Layout.Name, cfg.Engine.Theta)
	w := newTable()
	fmt.Fprintln(w, "BODIES\t"+strings.ToUpper(strings.Join(compute.Names(), "\t"))+"\tSPEEDUP")

	for _, size := range sizes {
		c := cfg.Clone()
		c.Bodies = nil
		c.Layout.Count = int(size)
		set, err := c.NewSet()
		if err != nil {
			return fmt.Errorf("%s with %d bodies: %w", name, int(size), err)
		}

		times := make(map[string]time.Duration)
		cols := make([]string, 0, len(compute.Names()))
		for _, backend := range compute.Names() {
			b, err := compute.Get(backend, cfg.Workers)
			if err != nil {
				return err
			}
			times[backend] = timeForces(b, set.Bodies(), c.Params())
			cols = append(cols, times[backend].Round(time.Microsecond).String())
		}

		speedup := 0.0
		if t := times["tree"]; t > 0 {
			speedup = float64(times["direct"]) / float64(t)
		}
		fmt.Fprintf(w, "%d\t%s\t%.1fx\n", set.Len(), strings.Join(cols, "\t"), speedup)
	}

	return w.Flush()
}

// timeForces reports the best of three evaluations.
func timeForces(b compute.Backend, bodies []*barneshut.Body, p barneshut.Params) time.Duration {
	best := time.Duration(0)
	for i := 0; i < 3; i++ {
		start := time.Now()
		b.Forces(bodies, p)
		if d := time.Since(start); best == 0 || d < best {
			best = d
		}
	}
	return best
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := newTable()
	fmt.Fprintln(w, "PRESET\tLAYOUT\tBODIES\tDT\tSTEPS\tTHETA")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		src, count := p.Layout.Name, p.Layout.Count
		if len(p.Bodies) > 0 {
			src, count = "explicit", len(p.Bodies)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%d\t%.2f\n", name, src, count, p.Dt, p.Steps, p.Engine.Theta)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	w = newTable()
	fmt.Fprintln(w, "LAYOUT\tDESCRIPTION")
	for _, name := range layout.Names() {
		fmt.Fprintf(w, "%s\t%s\n", name, layout.Describe(name))
	}
	return w.Flush()
}
