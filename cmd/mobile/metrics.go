package main

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// logMetrics writes every gathered sample to log at debug level.
func logMetrics(ctx context.Context, log *slog.Logger, g prometheus.Gatherer) {
	if !log.Enabled(ctx, slog.LevelDebug) {
		return
	}
	families, err := g.Gather()
	if err != nil {
		log.WarnContext(ctx, "failed to gather client metrics", "error", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			attrs := []any{"metric", mf.GetName()}
			for _, lp := range m.GetLabel() {
				attrs = append(attrs, lp.GetName(), lp.GetValue())
			}
			attrs = append(attrs, sampleAttrs(mf.GetType(), m)...)
			log.DebugContext(ctx, "client metric", attrs...)
		}
	}
}

func sampleAttrs(kind dto.MetricType, m *dto.Metric) []any {
	switch kind {
	case dto.MetricType_COUNTER:
		return []any{"value", m.GetCounter().GetValue()}
	case dto.MetricType_GAUGE:
		return []any{"value", m.GetGauge().GetValue()}
	case dto.MetricType_HISTOGRAM:
		h := m.GetHistogram()
		return []any{"count", h.GetSampleCount(), "sum", h.GetSampleSum()}
	default:
		return nil
	}
}
