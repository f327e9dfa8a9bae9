// Package metrics exposes Prometheus collectors for the HTTP layer and the
// listing lifecycle.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kitchenware"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	ItemsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "items_created_total",
		Help:      "Listings created.",
	})

	ItemsDeactivated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "items_deactivated_total",
		Help:      "Listings soft deleted.",
	})

	ImagesAttached = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "item_images_attached_total",
		Help:      "Images attached to listings.",
	})

	PermissionDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "permission_denied_total",
		Help:      "Mutations rejected by the authorization gate.",
	}, []string{"operation"})

	BlobDeletes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "media_blob_deletes_total",
		Help:      "Blob deletions by reason and result.",
	}, []string{"reason", "result"})

	OrphanBlobsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "media_orphans_swept_total",
		Help:      "Unreferenced blobs removed by the sweeper.",
	})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
