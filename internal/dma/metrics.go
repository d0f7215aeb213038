package dma

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WriteMetrics writes r to path in the Prometheus text format, for the
// node_exporter textfile collector. The file is replaced atomically.
func WriteMetrics(path string, r *Result) error {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	labels := []string{"device", "mode"}

	throughput := factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gpudiag_dma_throughput_megabytes_per_second",
		Help: "Host to device throughput of the last DMA test",
	}, labels)
	elapsed := factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gpudiag_dma_elapsed_seconds",
		Help: "Wall time of the last DMA test",
	}, labels)
	buffer := factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gpudiag_dma_buffer_bytes",
		Help: "Buffer size of the last DMA test",
	}, labels)
	trials := factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gpudiag_dma_trial_duration_seconds",
		Help:    "Time spent issuing one send/recv trial",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 16),
	}, labels)

	lv := []string{r.Device, r.Mode()}
	throughput.WithLabelValues(lv...).Set(r.Speed())
	elapsed.WithLabelValues(lv...).Set(r.Elapsed.Seconds())
	buffer.WithLabelValues(lv...).Set(float64(r.BufferSize))
	obs := trials.WithLabelValues(lv...)
	for _, d := range r.TrialTimes {
		obs.Observe(d.Seconds())
	}
	return prometheus.WriteToTextfile(path, reg)
}
