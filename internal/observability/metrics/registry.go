package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Refresh run metrics
var (
	// RefreshRunsTotal counts refresh runs by outcome:
	// success, partial, no_notes, no_summaries, config_error, scan_error, aborted.
	RefreshRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refresher_runs_total",
			Help: "Total number of refresh runs by outcome",
		},
		[]string{"outcome"},
	)

	// RefreshDuration measures the wall time of a whole refresh run.
	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "refresher_run_duration_seconds",
			Help:    "Refresh run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// CandidatesFound is the number of matching notes in the last scan.
	CandidatesFound = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "refresher_candidates",
			Help: "Number of candidate notes found by the last scan",
		},
	)

	// NotesSelectedTotal counts notes picked by the sampler, by policy.
	NotesSelectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refresher_notes_selected_total",
			Help: "Total number of notes selected for summarization",
		},
		[]string{"policy"},
	)
)

// Per-note metrics
var (
	// NoteOutcomesTotal counts per-note results:
	// success, read_error, empty, summarize_error, canceled.
	NoteOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refresher_note_outcomes_total",
			Help: "Total number of summarized notes by outcome",
		},
		[]string{"outcome"},
	)

	// NoteSummarizationDuration measures the time spent on one note, read included.
	NoteSummarizationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "refresher_note_duration_seconds",
			Help:    "Time taken to read and summarize a single note",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	// NoteChunks records how many chunks each note was split into.
	NoteChunks = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "refresher_note_chunks",
			Help:    "Number of chunks per summarized note",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34},
		},
	)
)
