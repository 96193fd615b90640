package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/barneshut/internal/barneshut"
	"github.com/san-kum/barneshut/internal/integrators"
)

// Sweep runs an independent copy of set under each opening threshold and
// returns the results in the order of thetas. Metrics are not shared with the
// copies; observers are.
func (s *Simulator) Sweep(ctx context.Context, set *barneshut.Set, cfg Config, thetas []float64) ([]*Result, error) {
	results := make([]*Result, len(thetas))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, theta := range thetas {
		i, theta := i, theta
		g.Go(func() error {
			p := s.params
			p.Theta = theta

			integ, err := integrators.Get(s.integ.Name())
			if err != nil {
				return err
			}

			run := New(p)
			run.SetWorkers(s.workers)
			run.SetIntegrator(integ)
			run.SetLogger(s.log.WithField("sweep", i))
			for _, o := range s.observers {
				run.AddObserver(o)
			}

			res, err := run.Run(ctx, set.Clone(), cfg)
			results[i] = res
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
