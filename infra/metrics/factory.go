package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/evmobility/urbanev/core/metrics"
)

// NewSink builds the metrics sink described by the config. An empty sink
// list yields a NopSink; several sinks are combined into a MultiSink. A nil
// registerer defaults to the global Prometheus registerer.
func NewSink(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var sinks []coremetrics.MetricsSink
	for _, name := range cfg.Sinks {
		switch name {
		case "prometheus":
			s, err := NewPromSinkWithRegistry(reg)
			if err != nil {
				return nil, fmt.Errorf("prometheus sink: %w", err)
			}
			sinks = append(sinks, s)
		case "influx":
			sinks = append(sinks, NewInfluxSinkWithFallback(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket))
		}
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return NewMultiSink(sinks...), nil
	}
}
