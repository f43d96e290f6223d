package verify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/mys-helper/internal/model"
)

// maxSolveAttempts bounds the solve-and-retry loop of one action.
const maxSolveAttempts = 3

// Action is one privileged platform request. It is first invoked with a
// nil challenge and verification; when the platform demands verification
// it returns a non-nil challenge alongside a NeedVerify status.
type Action func(ctx context.Context, chal *model.Challenge, v *model.Verification) (model.ActionStatus, *model.Challenge)

// ChallengeResolver is what the executor needs from a Resolver.
type ChallengeResolver interface {
	Resolve(ctx context.Context, a *model.Account, chal *model.Challenge) Outcome
}

// Executor runs privileged actions with a rate-limit cooldown and a
// bounded verification retry loop.
type Executor struct {
	resolver ChallengeResolver
	cooldown time.Duration
	sleep    func(time.Duration)
	log      *zap.Logger
}

// NewExecutor builds an executor. The cooldown is slept after every single
// action invocation, successful or not.
func NewExecutor(resolver ChallengeResolver, cooldown time.Duration, log *zap.Logger) *Executor {
	return &Executor{
		resolver: resolver,
		cooldown: cooldown,
		sleep:    time.Sleep,
		log:      log,
	}
}

// Do invokes the action, solving verification demands as they come. At
// most maxSolveAttempts resolve rounds are spent; a round that fails to
// resolve does not re-invoke the action. The final status still carries
// NeedVerify when the loop is exhausted. The last unresolved challenge is
// returned alongside for the caller to report.
func (e *Executor) Do(ctx context.Context, a *model.Account, action Action) (model.ActionStatus, *model.Challenge) {
	st, chal := action(ctx, nil, nil)
	e.sleep(e.cooldown)
	if !st.NeedVerify {
		return st, nil
	}

	for i := 0; i < maxSolveAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return st, chal
		}
		out := e.resolver.Resolve(ctx, a, chal)
		if out.Kind != Resolved {
			e.log.Debug("verification not resolved",
				zap.String("uid", a.UID),
				zap.Int("attempt", i+1),
				zap.Bool("solver_unavailable", out.Kind == SolverUnavailable),
			)
			continue
		}
		var next *model.Challenge
		st, next = action(ctx, chal, &out.Verification)
		e.sleep(e.cooldown)
		if !st.NeedVerify {
			return st, nil
		}
		if next != nil {
			chal = next
		}
	}
	return st, chal
}
