// Package observability exposes Prometheus instrumentation for the download
// and loading pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics must be global for registration
var (
	// DownloadsTotal tracks the number of remote file fetches
	DownloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "allsky_downloads_total",
			Help: "Total number of remote file fetches",
		},
		[]string{"mission", "status"}, // status: success, failed
	)

	// DownloadBytesTotal tracks the number of bytes fetched from the archive
	DownloadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "allsky_download_bytes_total",
			Help: "Total number of bytes fetched from the remote archive",
		},
		[]string{"mission"},
	)

	// CacheHitsTotal tracks downloads skipped because the file already exists locally
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "allsky_cache_hits_total",
			Help: "Downloads skipped because the local file already exists",
		},
		[]string{"mission"},
	)

	// FramesDecodedTotal tracks decoded image frames
	FramesDecodedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "allsky_frames_decoded_total",
			Help: "Total number of image frames decoded",
		},
		[]string{"mission", "station"},
	)

	// ListingsTotal tracks remote directory listing requests
	ListingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "allsky_listings_total",
			Help: "Total number of remote directory listing requests",
		},
		[]string{"status"}, // status: success, failed, empty
	)
)
