package infrastructure

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"offgascli/pkg/contracts"
)

// RegisterRuntimeCollectors adds Go runtime, process and build metrics to reg.
func RegisterRuntimeCollectors(reg prometheus.Registerer) error {
	buildInfo := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "offgas_build_info",
		Help: "Build information of the running binary",
	}, []string{"version", "commit"})
	buildInfo.WithLabelValues(contracts.Version, contracts.GitCommit).Set(1)

	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		buildInfo,
	} {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return nil
}
