// Package pipeline drives the seven ledger stages as an explicit state
// machine. RunStage executes one stage synchronously; Steps wraps it in an
// iterator that yields after every stage so callers can show progress, and
// can start from any stage when the caller already holds its input.
package pipeline

import (
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/farmledger/internal/balance"
	"github.com/cleared-dev/farmledger/internal/model"
	"github.com/cleared-dev/farmledger/internal/money"
	"github.com/cleared-dev/farmledger/internal/schema"
	"github.com/cleared-dev/farmledger/internal/split"
	"github.com/cleared-dev/farmledger/internal/standardize"
	"github.com/cleared-dev/farmledger/internal/strict"
	"github.com/cleared-dev/farmledger/internal/synth"
	"github.com/cleared-dev/farmledger/internal/taxmkt"
)

// State is everything the stages hand to each other. Each stage reads the
// fields its predecessor wrote:
//
//	settings     Raw -> Validated
//	assets       Validated -> Validated (pending) + Synthesized
//	standardize  Validated + Synthesized -> Accts
//	splits, assert, balances  Accts -> Accts
//	separate     Accts -> Final
type State struct {
	Raw         []model.RawAccount
	Validated   []model.ValidatedRawAccount
	Synthesized []model.Account
	Accts       []model.Account
	Final       *model.FinalAccounts

	// Errors lists the non-fatal account errors outstanding after the last
	// stage, "account: message" each.
	Errors []string
}

// Progress is yielded after each stage.
type Progress struct {
	Step   Step // the stage that just ran
	Errors []string
	State  State
	Done   bool
}

// Runner executes stages. The zero value is not usable; call NewRunner.
type Runner struct {
	logger  *slog.Logger
	epsilon decimal.Decimal
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger stage boundaries are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithEpsilon sets the tolerance for balance comparisons.
func WithEpsilon(eps decimal.Decimal) Option {
	return func(r *Runner) { r.epsilon = eps }
}

// NewRunner creates a Runner that logs nowhere and compares to the cent.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		epsilon: money.Epsilon,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// RunStage executes one stage against st and returns the next state. An
// error is returned only by the stages that cannot continue past bad data
// (assert and balances); it is a *model.MultiError listing every failure.
func (r *Runner) RunStage(step Step, st State) (State, error) {
	var err error
	switch step {
	case StepSettings:
		st.Validated = schema.Validate(st.Raw)
		st.Errors = rawErrors(st.Validated)
	case StepAssets:
		res := synth.Synthesize(st.Validated, r.epsilon)
		st.Validated = res.Pending
		st.Synthesized = res.Synthesized
		st.Errors = append(rawErrors(st.Validated), accountErrors(st.Synthesized)...)
	case StepStandardize:
		accts := standardize.Accounts(st.Validated)
		st.Accts = append(accts, model.CloneAccounts(st.Synthesized)...)
		st.Errors = accountErrors(st.Accts)
	case StepSplits:
		st.Accts = split.Accounts(st.Accts)
		st.Errors = accountErrors(st.Accts)
	case StepAssert:
		st.Accts, err = strict.Assert(st.Accts)
		st.Errors = messages(err)
	case StepBalances:
		st.Accts, err = balance.Validate(st.Accts, r.epsilon)
		st.Errors = messages(err)
	case StepSeparate:
		final := taxmkt.Separate(st.Accts, r.epsilon)
		st.Final = &final
		st.Errors = nil
	case StepDone:
	default:
		return st, fmt.Errorf("unknown step %d", int(step))
	}

	r.logger.Info("stage complete", "step", step.String(), "accounts", count(step, st), "errors", len(st.Errors))
	for _, msg := range st.Errors {
		r.logger.Warn("account error", "step", step.String(), "error", msg)
	}
	return st, err
}

// Steps runs every stage from from through separate, yielding after each.
// The final yield has Done set and State.Final filled. A stage error is
// yielded with the partial progress and ends the sequence. Callers may stop
// iterating at any time; nothing outside the returned states is touched.
func (r *Runner) Steps(st State, from Step) iter.Seq2[Progress, error] {
	return func(yield func(Progress, error) bool) {
		for step := from; step < StepDone; step = step.Next() {
			next, err := r.RunStage(step, st)
			st = next
			p := Progress{Step: step, Errors: st.Errors, State: st}
			if err != nil {
				yield(p, err)
				return
			}
			if !yield(p, nil) {
				return
			}
		}
		yield(Progress{Step: StepDone, State: st, Done: true}, nil)
	}
}

// Run takes raw accounts through every stage.
func (r *Runner) Run(raw []model.RawAccount) (model.FinalAccounts, error) {
	return r.Resume(State{Raw: raw}, StepSettings)
}

// Resume runs the pipeline from a later stage using a state the caller
// already holds, e.g. after reloading a single edited sheet.
func (r *Runner) Resume(st State, from Step) (model.FinalAccounts, error) {
	for p, err := range r.Steps(st, from) {
		if err != nil {
			return model.FinalAccounts{}, fmt.Errorf("%s: %w", p.Step, err)
		}
		if p.Done {
			if p.State.Final == nil {
				return model.FinalAccounts{}, fmt.Errorf("resumed at %s without separated accounts", from)
			}
			return *p.State.Final, nil
		}
	}
	return model.FinalAccounts{}, fmt.Errorf("pipeline stopped before completion")
}

func count(step Step, st State) int {
	switch step {
	case StepSettings:
		return len(st.Validated)
	case StepAssets:
		return len(st.Validated) + len(st.Synthesized)
	}
	return len(st.Accts)
}

func rawErrors(accts []model.ValidatedRawAccount) []string {
	var out []string
	for _, a := range accts {
		for _, m := range a.Errors {
			out = append(out, fmt.Sprintf("%s: %s", a.Name, m))
		}
	}
	return out
}

func accountErrors(accts []model.Account) []string {
	var out []string
	for _, a := range accts {
		for _, m := range a.Errors {
			out = append(out, fmt.Sprintf("%s: %s", a.Name, m))
		}
	}
	return out
}

func messages(err error) []string {
	if err == nil {
		return nil
	}
	if me, ok := err.(*model.MultiError); ok {
		return me.Messages()
	}
	return []string{err.Error()}
}
