package promstats

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/phanxgames/sway"
)

const ms = int64(time.Millisecond)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	out := make(map[string]*dto.Metric, len(families))
	for _, mf := range families {
		if len(mf.GetMetric()) != 1 {
			t.Fatalf("%s has %d series", mf.GetName(), len(mf.GetMetric()))
		}
		out[mf.GetName()] = mf.GetMetric()[0]
	}
	return out
}

func TestObserverCountsTicks(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := New(reg)
	svc := sway.NewRenderService(sway.NewRenderContext(sway.WithTickObserver(obs)), nil)
	obs.WithService(svc)

	p := sway.DefaultTimingProtocol()
	p.Duration = 100 * time.Millisecond
	p.FrameRate = sway.FrameRateRange{Min: 30, Max: 120, Preferred: 90}
	tx := sway.NewTransaction(1)
	tx.Add(&sway.CreateNode{Node: sway.ID{Owner: 1, Counter: 1}})
	tx.Add(&sway.AddModifier{Node: sway.ID{Owner: 1, Counter: 1}, Property: sway.ID{Owner: 1, Counter: 2}, Type: sway.ModifierAlpha, Value: sway.Float(0)})
	tx.Add(&sway.CreateAnimation{Node: sway.ID{Owner: 1, Counter: 1}, Spec: sway.AnimationSpec{
		ID: sway.ID{Owner: 1, Counter: 10}, Kind: sway.AnimationCurve, Property: sway.ID{Owner: 1, Counter: 2}, Protocol: p,
		Curve: sway.CurveLinear, Additive: true, Origin: sway.Float(0), Start: sway.Float(0), End: sway.Float(1),
	}})
	// Unknown node: dropped.
	tx.Add(&sway.PauseAnimation{Node: sway.ID{Owner: 1, Counter: 99}, Animation: sway.ID{Owner: 1, Counter: 10}})
	if err := svc.Apply(context.Background(), tx); err != nil {
		t.Fatal(err)
	}

	svc.Tick(0)
	m := gather(t, reg)
	if got := m["sway_running"].GetGauge().GetValue(); got != 1 {
		t.Errorf("running = %v after first tick, want 1", got)
	}
	if got := m["sway_animations"].GetGauge().GetValue(); got != 1 {
		t.Errorf("animations = %v, want 1", got)
	}
	if got := m["sway_preferred_frame_rate"].GetGauge().GetValue(); got != 90 {
		t.Errorf("preferred frame rate = %v, want 90", got)
	}

	svc.Tick(50 * ms)
	svc.Tick(100 * ms)
	m = gather(t, reg)
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"ticks", m["sway_ticks_total"].GetCounter().GetValue(), 3},
		{"finished", m["sway_finished_animations_total"].GetCounter().GetValue(), 1},
		{"nodes", m["sway_animating_nodes"].GetGauge().GetValue(), 1},
		{"running", m["sway_running"].GetGauge().GetValue(), 0},
		{"dropped", m["sway_dropped_commands"].GetGauge().GetValue(), 1},
		{"tick samples", float64(m["sway_tick_duration_seconds"].GetHistogram().GetSampleCount()), 3},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestObserveTickIdle(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := New(reg)
	obs.ObserveTick(sway.TickStats{})
	m := gather(t, reg)
	if got := m["sway_ticks_total"].GetCounter().GetValue(); got != 1 {
		t.Errorf("ticks = %v, want 1", got)
	}
	if got := m["sway_preferred_frame_rate"].GetGauge().GetValue(); got != 0 {
		t.Errorf("preferred frame rate = %v, want 0", got)
	}
	if _, ok := m["sway_dropped_commands"]; ok {
		t.Error("dropped gauge registered without a service")
	}
}

func TestNewRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	defer func() {
		if recover() == nil {
			t.Error("second registration on the same registry did not panic")
		}
	}()
	New(reg)
}
