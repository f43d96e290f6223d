// Package task iterates a job over every configured account and aggregates
// the per-account outcomes into one report.
package task

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/mys-helper/internal/model"
)

// Fn is one task applied to one account. The returned line is the
// account's entry in the aggregated report; a non-nil error marks the
// account as failed and its text is included in the report.
type Fn func(ctx context.Context, a *model.Account) (string, error)

// Runner executes tasks account by account, in configuration order, one at
// a time. A failing or panicking account never stops the remaining ones.
type Runner struct {
	pacing time.Duration
	sleep  func(time.Duration)
	log    *zap.Logger
}

// NewRunner builds a runner. Pacing is slept between consecutive accounts
// (not before the first or after the last).
func NewRunner(pacing time.Duration, log *zap.Logger) *Runner {
	return &Runner{pacing: pacing, sleep: time.Sleep, log: log}
}

// Run applies fn to every account. With no accounts it returns a skipped
// result without touching the network.
func (r *Runner) Run(ctx context.Context, name string, accounts []*model.Account, fn Fn) model.TaskResult {
	res := model.TaskResult{Name: name}
	if len(accounts) == 0 {
		res.Lines = append(res.Lines, "no accounts configured")
		return res
	}
	for i, a := range accounts {
		if i > 0 {
			r.sleep(r.pacing)
		}
		if err := ctx.Err(); err != nil {
			res.AddFailure(fmt.Sprintf("account %s: cancelled: %v", a.UID, err))
			continue
		}
		line, err := r.runOne(ctx, a, fn)
		if err != nil {
			r.log.Warn("task failed for account",
				zap.String("task", name),
				zap.String("uid", a.UID),
				zap.Error(err),
			)
			res.AddFailure(fmt.Sprintf("account %s: %v", a.UID, err))
			continue
		}
		res.AddSuccess(line)
	}
	return res
}

// runOne isolates a single account, converting a panic into a plain error
// so the loop can move on.
func (r *Runner) runOne(ctx context.Context, a *model.Account, fn Fn) (line string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn(ctx, a)
}
