// Package metrics exposes prometheus counters for engagement activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VotesCast counts votes by direction.
	VotesCast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arena_votes_cast_total",
		Help: "Number of votes cast, labeled by direction.",
	}, []string{"direction"})

	// TopicRotations counts daily topic regenerations by source.
	TopicRotations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "topic_rotations_total",
		Help: "Number of daily topic regenerations, labeled by source (ai or fallback).",
	}, []string{"source"})

	// ArenaSessions counts arena sessions seeded.
	ArenaSessions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arena_sessions_total",
		Help: "Number of arena sessions seeded.",
	})

	// VideosSubmitted counts catalog submissions.
	VideosSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "videos_submitted_total",
		Help: "Number of videos submitted to the catalog.",
	})
)
