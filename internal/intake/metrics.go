package intake

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filesStagedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fabintake_files_staged_total",
			Help: "Files that passed validation and were staged.",
		},
		[]string{"device"},
	)

	filesRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fabintake_files_rejected_total",
			Help: "Files rejected during ingest, by reason.",
		},
		[]string{"device", "reason"},
	)

	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fabintake_submissions_total",
			Help: "Submission attempts by outcome (success, failure, empty).",
		},
		[]string{"device", "priority", "outcome"},
	)
)

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrOversizeFile):
		return "oversize"
	case errors.Is(err, ErrUnsupportedType):
		return "unsupported_type"
	default:
		return "other"
	}
}
