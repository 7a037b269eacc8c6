package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusCollector struct {
	// Gauges
	connectionsActive prometheus.Gauge
	roomsActive       prometheus.Gauge

	// Counters
	connectionsTotal prometheus.Counter
	messagesRelayed  *prometheus.CounterVec
	messagesDropped  *prometheus.CounterVec
	filesUploaded    prometheus.Counter
	bytesUploaded    prometheus.Counter
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		connectionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "videonet_connections_active",
			Help: "Number of currently connected signaling clients",
		}),

		roomsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "videonet_rooms_active",
			Help: "Number of rooms with at least one member",
		}),

		connectionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "videonet_connections_total",
			Help: "Total number of signaling connections accepted",
		}),

		messagesRelayed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "videonet_messages_relayed_total",
			Help: "Total number of signaling messages relayed, by event type",
		}, []string{"type"}),

		messagesDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "videonet_messages_dropped_total",
			Help: "Total number of signaling messages dropped, by reason",
		}, []string{"reason"}),

		filesUploaded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "videonet_files_uploaded_total",
			Help: "Total number of files uploaded to the asset store",
		}),

		bytesUploaded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "videonet_files_uploaded_bytes_total",
			Help: "Total bytes uploaded to the asset store",
		}),
	}
}

func (c *PrometheusCollector) ConnectionOpened() {
	c.connectionsTotal.Inc()
	c.connectionsActive.Inc()
}

func (c *PrometheusCollector) ConnectionClosed() {
	c.connectionsActive.Dec()
}

func (c *PrometheusCollector) SetActiveRooms(count int) {
	c.roomsActive.Set(float64(count))
}

func (c *PrometheusCollector) MessageRelayed(eventType string) {
	c.messagesRelayed.WithLabelValues(eventType).Inc()
}

func (c *PrometheusCollector) MessageDropped(reason string) {
	c.messagesDropped.WithLabelValues(reason).Inc()
}

func (c *PrometheusCollector) FileUploaded(size int64) {
	c.filesUploaded.Inc()
	c.bytesUploaded.Add(float64(size))
}
