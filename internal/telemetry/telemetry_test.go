package telemetry

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/barneshut/internal/barneshut"
	"github.com/san-kum/barneshut/internal/sim"
)

func TestCollector_OnStep(t *testing.T) {
	c := NewCollector()
	c.OnStep(sim.StepInfo{Step: 1, Time: 0.5, Bodies: 10, Tree: barneshut.Stats{Nodes: 21, MaxDepth: 4}, Duration: time.Millisecond})
	c.OnStep(sim.StepInfo{Step: 2, Time: 1.0, Bodies: 10, Tree: barneshut.Stats{Nodes: 25, MaxDepth: 5}, Duration: time.Millisecond})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.steps))
	assert.Equal(t, 10.0, testutil.ToFloat64(c.bodies))
	assert.Equal(t, 25.0, testutil.ToFloat64(c.nodes))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.depth))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.simTime))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	c.OnStep(sim.StepInfo{Step: 1, Bodies: 3})

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, name := range []string{
		"barneshut_steps_total 1",
		"barneshut_bodies 3",
		"barneshut_step_duration_seconds_count 1",
		"barneshut_tree_nodes",
	} {
		assert.Contains(t, body, name)
	}
}

func TestCollector_WithSimulator(t *testing.T) {
	p := barneshut.DefaultParams()
	set := barneshut.NewSet(p)
	set.Add(barneshut.Point{X: 0, Y: 0}, 1)
	set.Add(barneshut.Point{X: 10, Y: 0}, 1)
	set.Add(barneshut.Point{X: 0, Y: 10}, 1)

	c := NewCollector()
	s := sim.New(p)
	s.AddObserver(c)

	_, err := s.Run(context.Background(), set, sim.Config{Dt: 1, Steps: 4})
	require.NoError(t, err)
	assert.Equal(t, 4.0, testutil.ToFloat64(c.steps))
	assert.Greater(t, testutil.ToFloat64(c.nodes), 0.0)
}

func TestCollector_Serve(t *testing.T) {
	c := NewCollector()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "barneshut_steps_total 0"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServe_BadAddress(t *testing.T) {
	c := NewCollector()
	assert.Error(t, c.Serve(context.Background(), "256.0.0.1:bad"))
}
