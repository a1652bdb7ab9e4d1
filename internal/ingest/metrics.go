package ingest

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the prometheus instruments of the ingestion pipeline.
type Metrics struct {
	DocumentsIngested    *prometheus.CounterVec
	FilesRejected        *prometheus.CounterVec
	ExtractionFallbacks  prometheus.Counter
	NormalizationSkipped prometheus.Counter
}

// NewMetrics creates and registers the ingestion metrics.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		DocumentsIngested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_documents_total",
				Help: "Total number of document records written, by ingestion path.",
			},
			[]string{"path"},
		),
		FilesRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_files_rejected_total",
				Help: "Total number of files rejected during validation, by reason.",
			},
			[]string{"reason"},
		),
		ExtractionFallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ingest_extraction_fallbacks_total",
				Help: "Total number of files that received default metadata after an extraction failure.",
			},
		),
		NormalizationSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ingest_connector_documents_skipped_total",
				Help: "Total number of connector documents skipped because normalization failed.",
			},
		),
	}

	for _, c := range []prometheus.Collector{
		m.DocumentsIngested,
		m.FilesRejected,
		m.ExtractionFallbacks,
		m.NormalizationSkipped,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}
