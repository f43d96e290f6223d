// Package verify drives human-verification challenges: a Resolver that
// hands challenges to an external solving service, and an Executor that
// wraps privileged platform actions in a bounded solve-and-retry loop.
package verify

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/and161185/mys-helper/internal/config"
	"github.com/and161185/mys-helper/internal/model"
)

// OutcomeKind classifies one resolve attempt.
type OutcomeKind int

const (
	// Unresolved means no solver is configured or the challenge was not
	// solvable as given; the caller must not retry the action with it.
	Unresolved OutcomeKind = iota
	// SolverUnavailable means the solver was contacted and failed
	// (transport error, malformed reply, empty validate).
	SolverUnavailable
	// Resolved carries a usable verification.
	Resolved
)

// Outcome is the result of one resolve attempt. Verification is only
// meaningful when Kind is Resolved.
type Outcome struct {
	Kind         OutcomeKind
	Verification model.Verification
}

// Resolver submits challenges to the configured solving endpoint.
type Resolver struct {
	http *resty.Client
	pref config.Preference
	log  *zap.Logger
}

// NewResolver builds a resolver over the tool preferences. The per-call
// timeout matches the platform client's.
func NewResolver(cfg config.Config, log *zap.Logger) *Resolver {
	return &Resolver{
		http: resty.New().SetTimeout(cfg.Preference.Timeout()),
		pref: cfg.Preference,
		log:  log,
	}
}

// solverFor picks the endpoint and extra parameters for an account: the
// tool-wide solver when the global flag is set, the account's own otherwise.
func (r *Resolver) solverFor(a *model.Account) (string, map[string]string) {
	if r.pref.GlobalSolver {
		return r.pref.SolverURL, r.pref.SolverParams
	}
	return a.SolverURL, a.SolverParams
}

// Resolve asks the solving service for a verification. With no solver
// configured or an incomplete challenge it returns Unresolved without any
// network traffic. Solver-side problems are logged and reported as
// SolverUnavailable, never raised.
func (r *Resolver) Resolve(ctx context.Context, a *model.Account, chal *model.Challenge) Outcome {
	endpoint, params := r.solverFor(a)
	if endpoint == "" || chal.Empty() {
		return Outcome{Kind: Unresolved}
	}

	body := make(map[string]string, len(r.pref.SolverBody))
	for k, v := range r.pref.SolverBody {
		v = strings.ReplaceAll(v, "{gt}", chal.Gt)
		v = strings.ReplaceAll(v, "{challenge}", chal.Challenge)
		body[k] = v
	}

	req := r.http.R().SetContext(ctx).
		SetQueryParams(map[string]string{"gt": chal.Gt, "challenge": chal.Challenge}).
		SetBody(body)
	for k, v := range params {
		req.SetQueryParam(k, v)
	}
	resp, err := req.Post(endpoint)
	if err != nil {
		r.log.Warn("solver request failed", zap.Error(err))
		return Outcome{Kind: SolverUnavailable}
	}

	var reply struct {
		Validate string `json:"validate"`
		Seccode  string `json:"seccode"`
		Data     struct {
			Validate string `json:"validate"`
			Seccode  string `json:"seccode"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &reply); err != nil {
		r.log.Warn("solver reply malformed", zap.Error(err))
		return Outcome{Kind: SolverUnavailable}
	}
	validate, seccode := reply.Validate, reply.Seccode
	if validate == "" {
		validate, seccode = reply.Data.Validate, reply.Data.Seccode
	}
	if validate == "" {
		r.log.Warn("solver reply missing validate")
		return Outcome{Kind: SolverUnavailable}
	}
	if seccode == "" {
		seccode = validate + "|jordan"
	}
	return Outcome{
		Kind:         Resolved,
		Verification: model.Verification{Validate: validate, Seccode: seccode},
	}
}
