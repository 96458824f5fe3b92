// Package presenter renders refresh runs: pending state, the summaries with
// links back to their notes, or a single error message. Implementations
// target the terminal, JSON consumers, Slack and Discord.
package presenter

import (
	"context"
	"errors"
	"sync"

	"daily-refresher/internal/domain/entity"
)

// Presenter receives the states of a refresh run.
type Presenter interface {
	ShowPending(ctx context.Context) error
	ShowResults(ctx context.Context, results []entity.SummaryResult) error
	ShowError(ctx context.Context, message string) error
}

// Multi fans every call out to its presenters in order. All presenters are
// called even when one fails; the failures are joined.
type Multi []Presenter

// ShowPending implements Presenter.
func (m Multi) ShowPending(ctx context.Context) error {
	return m.each(func(p Presenter) error { return p.ShowPending(ctx) })
}

// ShowResults implements Presenter.
func (m Multi) ShowResults(ctx context.Context, results []entity.SummaryResult) error {
	return m.each(func(p Presenter) error { return p.ShowResults(ctx, results) })
}

// ShowError implements Presenter.
func (m Multi) ShowError(ctx context.Context, message string) error {
	return m.each(func(p Presenter) error { return p.ShowError(ctx, message) })
}

func (m Multi) each(fn func(Presenter) error) error {
	var errs []error
	for _, p := range m {
		if err := fn(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Call kinds captured by Recorder.
const (
	CallPending = "pending"
	CallResults = "results"
	CallError   = "error"
)

// Call is one call captured by Recorder.
type Call struct {
	Kind    string
	Results []entity.SummaryResult
	Message string
}

// Recorder captures presenter calls. It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

// ShowPending implements Presenter.
func (r *Recorder) ShowPending(context.Context) error {
	r.add(Call{Kind: CallPending})
	return nil
}

// ShowResults implements Presenter.
func (r *Recorder) ShowResults(_ context.Context, results []entity.SummaryResult) error {
	r.add(Call{Kind: CallResults, Results: append([]entity.SummaryResult(nil), results...)})
	return nil
}

// ShowError implements Presenter.
func (r *Recorder) ShowError(_ context.Context, message string) error {
	r.add(Call{Kind: CallError, Message: message})
	return nil
}

func (r *Recorder) add(c Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

// Calls returns a copy of the captured calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Kinds returns the kinds of the captured calls in order.
func (r *Recorder) Kinds() []string {
	calls := r.Calls()
	kinds := make([]string, len(calls))
	for i, c := range calls {
		kinds[i] = c.Kind
	}
	return kinds
}

// Last returns the last final call (results or error), if any.
func (r *Recorder) Last() (Call, bool) {
	calls := r.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Kind != CallPending {
			return calls[i], true
		}
	}
	return Call{}, false
}

// Reset forgets the captured calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

var (
	_ Presenter = Multi(nil)
	_ Presenter = (*Recorder)(nil)
)
