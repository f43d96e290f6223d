// Package login implements the credential bootstrap chain: a QR login
// ticket is issued and polled, then the confirmed game token is traded
// through the cascade of token exchanges until the session is usable.
package login

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/mys-helper/internal/config"
	"github.com/and161185/mys-helper/internal/device"
	"github.com/and161185/mys-helper/internal/model"
	"github.com/and161185/mys-helper/internal/platform"
)

// FailKind classifies a failed bootstrap.
type FailKind string

const (
	FailIncorrectReturn    FailKind = "incorrect_return"
	FailQRExpired          FailKind = "qr_expired"
	FailQRTimeout          FailKind = "qr_timeout"
	FailMissingAccountID   FailKind = "missing_account_id"
	FailMissingSToken      FailKind = "missing_stoken"
	FailMissingCookieToken FailKind = "missing_cookie_token"
	FailMissingFingerprint FailKind = "missing_fingerprint"
	FailNetworkError       FailKind = "network_error"
	FailUnknown            FailKind = "unknown"
)

// Failure describes why a bootstrap did not produce a usable session.
// It is a status value, not an error: expected outcomes of talking to
// the platform.
type Failure struct {
	Kind    FailKind
	Message string
}

func fail(kind FailKind, msg string) *Failure {
	return &Failure{Kind: kind, Message: msg}
}

// failFromStatus maps a platform status to the matching failure.
func failFromStatus(st model.ActionStatus, step string) *Failure {
	switch st.Reason() {
	case model.ReasonNetworkError:
		return fail(FailNetworkError, step+": network error")
	case model.ReasonIncorrectReturn:
		return fail(FailIncorrectReturn, step+": malformed platform response")
	case model.ReasonNone:
		return fail(FailUnknown, step+": failed")
	default:
		return fail(FailIncorrectReturn, step+": "+string(st.Reason()))
	}
}

// Platform is the slice of the API adapter the chain needs.
type Platform interface {
	FetchQRLogin(ctx context.Context, deviceID string) (ticket, qrURL string, st model.ActionStatus)
	QueryQRLogin(ctx context.Context, ticket, deviceID string) (platform.QRScan, model.ActionStatus)
	GetDeviceFP(ctx context.Context, deviceID string) (string, model.ActionStatus)
	GetTokenByGameToken(ctx context.Context, uid, gameToken string) (model.SessionTokens, model.ActionStatus)
	GetCookieTokenByGameToken(ctx context.Context, uid, gameToken string) (model.SessionTokens, model.ActionStatus)
	GetLTokenBySToken(ctx context.Context, tokens *model.SessionTokens, deviceID string) (model.SessionTokens, model.ActionStatus)
	GetCookieTokenBySToken(ctx context.Context, tokens *model.SessionTokens, deviceID string) (model.SessionTokens, model.ActionStatus)
}

// Saver persists an account snapshot.
type Saver interface {
	SaveAccount(ctx context.Context, a *model.Account) error
}

// Chain runs the bootstrap state machine. Partial progress is persisted
// after every successful token mutation, so an interrupted bootstrap
// leaves a resumable account record behind.
type Chain struct {
	api   Platform
	store Saver
	pref  config.Preference
	log   *zap.Logger

	// OnQR receives the scannable login URL once the ticket is issued.
	OnQR func(qrURL string)

	sleep func(time.Duration)
}

// NewChain builds a bootstrap chain.
func NewChain(api Platform, store Saver, pref config.Preference, log *zap.Logger) *Chain {
	return &Chain{
		api:   api,
		store: store,
		pref:  pref,
		log:   log,
		sleep: time.Sleep,
	}
}

// Bootstrap runs the full credential exchange for a fresh account bound to
// the given device identifier. The returned account is also persisted; on
// failure it holds whatever partial progress was made.
func (c *Chain) Bootstrap(ctx context.Context) (*model.Account, *Failure) {
	idIOS, idAndroid := device.NewPair()
	a := &model.Account{
		DeviceIDiOS:     idIOS,
		DeviceIDAndroid: idAndroid,
		Platform:        model.PlatformIOS,
	}
	deviceID := a.DeviceID()

	ticket, qrURL, st := c.api.FetchQRLogin(ctx, deviceID)
	if !st.OK() {
		return a, failFromStatus(st, "qrcode fetch")
	}
	if c.OnQR != nil {
		c.OnQR(qrURL)
	}

	scan, f := c.pollScan(ctx, ticket, deviceID)
	if f != nil {
		return a, f
	}

	a.UID = scan.UID
	a.Tokens.AccountID = scan.UID
	c.persist(ctx, a)

	fp, st := c.api.GetDeviceFP(ctx, deviceID)
	if !st.OK() {
		return a, fail(FailMissingFingerprint, "device fingerprint exchange failed")
	}
	a.DeviceFP = fp
	c.persist(ctx, a)

	toks, st := c.api.GetTokenByGameToken(ctx, scan.UID, scan.GameToken)
	if !st.OK() {
		return a, c.missing(a)
	}
	a.Tokens.Merge(toks)
	c.persist(ctx, a)

	if a.Tokens.STokenV2 != "" {
		// The v2 super-token unlocks two independent derivations; a
		// failure of one does not block the other.
		if lt, st := c.api.GetLTokenBySToken(ctx, &a.Tokens, deviceID); st.OK() {
			a.Tokens.Merge(lt)
			c.persist(ctx, a)
		} else {
			c.log.Warn("ltoken exchange failed", zap.String("reason", string(st.Reason())))
		}
		if ct, st := c.api.GetCookieTokenBySToken(ctx, &a.Tokens, deviceID); st.OK() {
			a.Tokens.Merge(ct)
			c.persist(ctx, a)
		} else {
			c.log.Warn("cookie token exchange failed", zap.String("reason", string(st.Reason())))
		}
	} else {
		if ct, st := c.api.GetCookieTokenByGameToken(ctx, scan.UID, scan.GameToken); st.OK() {
			a.Tokens.Merge(ct)
			c.persist(ctx, a)
		} else {
			c.log.Warn("cookie token exchange failed", zap.String("reason", string(st.Reason())))
		}
	}

	if f := c.missing(a); f != nil {
		return a, f
	}
	return a, nil
}

// pollScan polls the ticket until confirmation, expiry or budget exhaustion.
func (c *Chain) pollScan(ctx context.Context, ticket, deviceID string) (platform.QRScan, *Failure) {
	attempts := c.pref.QRAttempts()
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return platform.QRScan{}, fail(FailUnknown, "cancelled while waiting for scan")
		}
		scan, st := c.api.QueryQRLogin(ctx, ticket, deviceID)
		if !st.OK() {
			return platform.QRScan{}, failFromStatus(st, "qrcode query")
		}
		switch scan.Stat {
		case platform.QRConfirmed:
			return scan, nil
		case platform.QRExpired:
			return platform.QRScan{}, fail(FailQRExpired, "login qrcode expired, request a new one")
		}
		c.sleep(c.pref.QRInterval())
	}
	return platform.QRScan{}, fail(FailQRTimeout, "login qrcode was not scanned in time")
}

// missing names the first required session field still absent, in fixed
// order: account id, super-token, cookie-token, fingerprint. Returns nil
// when the session is complete.
func (c *Chain) missing(a *model.Account) *Failure {
	switch {
	case a.Tokens.AccountID == "":
		return fail(FailMissingAccountID, "login failed: no account id obtained")
	case a.Tokens.SToken() == "":
		return fail(FailMissingSToken, "login failed: no super-token obtained")
	case a.Tokens.CookieToken == "":
		return fail(FailMissingCookieToken, "login failed: no cookie-token obtained")
	case a.DeviceFP == "":
		return fail(FailMissingFingerprint, "login failed: no device fingerprint obtained")
	default:
		return nil
	}
}

// persist saves the account snapshot; persistence problems never abort the
// exchange chain.
func (c *Chain) persist(ctx context.Context, a *model.Account) {
	if err := c.store.SaveAccount(ctx, a); err != nil {
		c.log.Warn("persist account", zap.String("uid", a.UID), zap.Error(err))
	}
}
