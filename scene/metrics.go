package scene

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sceneCulls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sowilo_scene_culls_total",
		Help: "The total number of visibility culling passes.",
	})

	sceneVisibleObjects = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sowilo_scene_visible_objects",
		Help: "The number of objects marked visible by the last culling pass.",
	})
)

func instrumentCull(visibleObjects int) {
	sceneCulls.Inc()
	sceneVisibleObjects.Set((float64)(visibleObjects))
}
