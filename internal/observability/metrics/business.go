package metrics

import (
	"time"
)

// Run outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomePartial     = "partial"
	OutcomeNoNotes     = "no_notes"
	OutcomeNoSummaries = "no_summaries"
	OutcomeConfigError = "config_error"
	OutcomeScanError   = "scan_error"
	OutcomeAborted     = "aborted"
)

// Note outcomes.
const (
	NoteSuccess        = "success"
	NoteReadError      = "read_error"
	NoteEmpty          = "empty"
	NoteSummarizeError = "summarize_error"
	NoteCanceled       = "canceled"
)

// RecordRefreshRun records the outcome and duration of one refresh run.
func RecordRefreshRun(outcome string, duration time.Duration) {
	RefreshRunsTotal.WithLabelValues(outcome).Inc()
	RefreshDuration.Observe(duration.Seconds())
}

// RecordScan records the candidate count of the latest scan.
func RecordScan(candidates int) {
	CandidatesFound.Set(float64(candidates))
}

// RecordSelection counts the notes picked for a run.
func RecordSelection(policy string, selected int) {
	NotesSelectedTotal.WithLabelValues(policy).Add(float64(selected))
}

// RecordNoteOutcome records the result for one note.
func RecordNoteOutcome(outcome string, duration time.Duration) {
	NoteOutcomesTotal.WithLabelValues(outcome).Inc()
	NoteSummarizationDuration.Observe(duration.Seconds())
}

// RecordChunks records how many chunks a note produced.
func RecordChunks(n int) {
	NoteChunks.Observe(float64(n))
}
