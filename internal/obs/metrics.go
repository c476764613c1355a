package obs

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"docledger/internal/ledger"
)

// Recorder counts ledger operations on a private registry, so repeated
// construction in tests never collides with the default registry.
type Recorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	buildInfo  *prometheus.GaugeVec
}

var _ ledger.Metrics = (*Recorder)(nil)

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_operations_total",
				Help: "Total number of ledger operations by result code.",
			},
			[]string{"operation", "code"},
		),
		buildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "docledger_build_info",
				Help: "docledger build information.",
			},
			[]string{"version"},
		),
	}
	r.registry.MustRegister(r.operations, r.buildInfo)
	return r
}

// ObserveOperation increments the counter for operation and code.
func (r *Recorder) ObserveOperation(operation ledger.TransactionType, code uint) {
	r.operations.WithLabelValues(string(operation), strconv.FormatUint(uint64(code), 10)).Inc()
}

// SetBuildInfo sets docledger_build_info{version} to 1.
func (r *Recorder) SetBuildInfo(version string) {
	r.buildInfo.WithLabelValues(version).Set(1)
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// WriteTextfile writes all metrics in the text exposition format for the
// node_exporter textfile collector. The write is atomic.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
