package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ConnectionsActive  prometheus.Gauge
	RoomMembers        *prometheus.GaugeVec
	EventsPublished    *prometheus.CounterVec
	EventsDelivered    *prometheus.CounterVec
	EventsDropped      *prometheus.CounterVec
	JournalAppends     prometheus.Counter
	JournalDrops       prometheus.Counter
	ProductsWritten    prometheus.Counter
	PurchasesCreated   prometheus.Counter
	RequestLatency     *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		ConnectionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_ws_connections_active",
			Help: "Number of live websocket connections",
		}),
		RoomMembers: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "storefront_ws_room_members",
			Help: "Number of connections joined to each named room",
		}, []string{"room"}),
		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_events_published_total",
			Help: "Domain events accepted by the broadcaster, by kind",
		}, []string{"kind"}),
		EventsDelivered: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_events_delivered_total",
			Help: "Event frames handed to connection write pumps, by kind",
		}, []string{"kind"}),
		EventsDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_events_dropped_total",
			Help: "Event frames dropped because a connection buffer was full",
		}, []string{"kind"}),
		JournalAppends: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storefront_journal_appends_total",
			Help: "Envelopes appended to the Kafka event journal",
		}),
		JournalDrops: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storefront_journal_drops_total",
			Help: "Envelopes dropped because the journal buffer was full",
		}),
		ProductsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storefront_products_written_total",
			Help: "Catalog create/update/delete operations applied",
		}),
		PurchasesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storefront_purchases_created_total",
			Help: "Purchases recorded",
		}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
