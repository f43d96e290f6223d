package verify

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/mys-helper/internal/model"
)

type fakeResolver struct {
	outcomes []Outcome
	calls    int
}

func (f *fakeResolver) Resolve(_ context.Context, _ *model.Account, _ *model.Challenge) Outcome {
	f.calls++
	if len(f.outcomes) == 0 {
		return Outcome{Kind: Unresolved}
	}
	out := f.outcomes[0]
	f.outcomes = f.outcomes[1:]
	return out
}

func newTestExecutor(res ChallengeResolver) (*Executor, *int) {
	e := NewExecutor(res, time.Second, zap.NewNop())
	sleeps := 0
	e.sleep = func(time.Duration) { sleeps++ }
	return e, &sleeps
}

func TestExecutor_CleanSuccess_SingleCallSingleCooldown(t *testing.T) {
	t.Parallel()

	res := &fakeResolver{}
	e, sleeps := newTestExecutor(res)

	calls := 0
	st, _ := e.Do(context.Background(), &model.Account{UID: "1"}, func(_ context.Context, chal *model.Challenge, v *model.Verification) (model.ActionStatus, *model.Challenge) {
		calls++
		if chal != nil || v != nil {
			t.Fatalf("first invocation must pass nil challenge and verification")
		}
		return model.StatusOK(), nil
	})
	if !st.OK() {
		t.Fatalf("want success, got %+v", st)
	}
	if calls != 1 || *sleeps != 1 || res.calls != 0 {
		t.Fatalf("calls=%d sleeps=%d resolver=%d", calls, *sleeps, res.calls)
	}
}

func TestExecutor_ResolverNeverResolves_ActionCalledOnce(t *testing.T) {
	t.Parallel()

	res := &fakeResolver{outcomes: []Outcome{
		{Kind: Unresolved}, {Kind: SolverUnavailable}, {Kind: Unresolved},
	}}
	e, sleeps := newTestExecutor(res)

	calls := 0
	st, chal := e.Do(context.Background(), &model.Account{UID: "1"}, func(_ context.Context, _ *model.Challenge, _ *model.Verification) (model.ActionStatus, *model.Challenge) {
		calls++
		return model.ActionStatus{NeedVerify: true}, &model.Challenge{Gt: "g", Challenge: "c"}
	})
	if calls != 1 {
		t.Fatalf("action must be invoked exactly once, got %d", calls)
	}
	if *sleeps != 1 {
		t.Fatalf("cooldown must fire exactly once, got %d", *sleeps)
	}
	if res.calls != maxSolveAttempts {
		t.Fatalf("resolver calls: want %d, got %d", maxSolveAttempts, res.calls)
	}
	if !st.NeedVerify {
		t.Fatalf("exhausted loop must still report NeedVerify: %+v", st)
	}
	if chal == nil {
		t.Fatalf("unresolved challenge must be handed back")
	}
}

func TestExecutor_ResolvedRetrySucceeds(t *testing.T) {
	t.Parallel()

	res := &fakeResolver{outcomes: []Outcome{
		{Kind: Resolved, Verification: model.Verification{Validate: "v", Seccode: "v|jordan"}},
	}}
	e, sleeps := newTestExecutor(res)

	calls := 0
	st, _ := e.Do(context.Background(), &model.Account{UID: "1"}, func(_ context.Context, chal *model.Challenge, v *model.Verification) (model.ActionStatus, *model.Challenge) {
		calls++
		if calls == 1 {
			return model.ActionStatus{NeedVerify: true}, &model.Challenge{Gt: "g", Challenge: "c"}
		}
		if chal == nil || v == nil || v.Validate != "v" {
			t.Fatalf("retry must carry challenge and verification, got %+v %+v", chal, v)
		}
		return model.StatusOK(), nil
	})
	if !st.OK() {
		t.Fatalf("want success after solve, got %+v", st)
	}
	if calls != 2 {
		t.Fatalf("want 2 action calls, got %d", calls)
	}
	if *sleeps != 2 {
		t.Fatalf("cooldown after every invocation: want 2, got %d", *sleeps)
	}
}

func TestExecutor_BoundedAtFourActionCalls(t *testing.T) {
	t.Parallel()

	resolved := Outcome{Kind: Resolved, Verification: model.Verification{Validate: "v"}}
	res := &fakeResolver{outcomes: []Outcome{resolved, resolved, resolved, resolved, resolved}}
	e, _ := newTestExecutor(res)

	calls := 0
	st, _ := e.Do(context.Background(), &model.Account{UID: "1"}, func(_ context.Context, _ *model.Challenge, _ *model.Verification) (model.ActionStatus, *model.Challenge) {
		calls++
		// Always demand verification again with a fresh challenge.
		return model.ActionStatus{NeedVerify: true}, &model.Challenge{Gt: "g", Challenge: "c"}
	})
	if calls != 1+maxSolveAttempts {
		t.Fatalf("action calls: want %d, got %d", 1+maxSolveAttempts, calls)
	}
	if res.calls != maxSolveAttempts {
		t.Fatalf("resolver calls: want %d, got %d", maxSolveAttempts, res.calls)
	}
	if !st.NeedVerify {
		t.Fatalf("final status must keep NeedVerify: %+v", st)
	}
}
