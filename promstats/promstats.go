// Package promstats exports render-side tick statistics to Prometheus.
package promstats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/phanxgames/sway"
)

// Observer is a sway.TickObserver. Install it with sway.WithTickObserver.
type Observer struct {
	ticks        prometheus.Counter
	finished     prometheus.Counter
	nodes        prometheus.Gauge
	animations   prometheus.Gauge
	running      prometheus.Gauge
	frameRate    prometheus.Gauge
	tickDuration prometheus.Histogram
	reg          prometheus.Registerer
}

// New registers the tick metrics with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Observer {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Observer{
		reg: reg,
		ticks: f.NewCounter(prometheus.CounterOpts{
			Name: "sway_ticks_total",
			Help: "Render context ticks",
		}),
		finished: f.NewCounter(prometheus.CounterOpts{
			Name: "sway_finished_animations_total",
			Help: "Animations that reached the finished state",
		}),
		nodes: f.NewGauge(prometheus.GaugeOpts{
			Name: "sway_animating_nodes",
			Help: "Nodes ticked in the last frame",
		}),
		animations: f.NewGauge(prometheus.GaugeOpts{
			Name: "sway_animations",
			Help: "Animations attached to the nodes ticked in the last frame",
		}),
		running: f.NewGauge(prometheus.GaugeOpts{
			Name: "sway_running",
			Help: "1 while another frame is needed",
		}),
		frameRate: f.NewGauge(prometheus.GaugeOpts{
			Name: "sway_preferred_frame_rate",
			Help: "Highest frame rate preferred by a running animation, 0 for no preference",
		}),
		tickDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sway_tick_duration_seconds",
			Help:    "Wall time spent in one tick",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.016},
		}),
	}
}

// WithService also exports the number of commands svc has dropped.
func (o *Observer) WithService(svc *sway.RenderService) *Observer {
	promauto.With(o.reg).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "sway_dropped_commands",
		Help: "Commands dropped because they could not be applied",
	}, func() float64 { return float64(svc.Dropped()) })
	return o
}

// ObserveTick records one tick.
func (o *Observer) ObserveTick(s sway.TickStats) {
	o.ticks.Inc()
	o.finished.Add(float64(s.Finished))
	o.nodes.Set(float64(s.Nodes))
	o.animations.Set(float64(s.Animations))
	if s.Running {
		o.running.Set(1)
	} else {
		o.running.Set(0)
	}
	o.frameRate.Set(float64(s.FrameRate.Preferred))
	o.tickDuration.Observe(s.Elapsed.Seconds())
}
