// Package model defines domain entities shared by the login chain, executor and storage.
package model

import "strings"

// STokenV2Prefix marks the long (v2) wire form of the super-token.
// The branch between the v1 and v2 derived-token exchanges is decided
// by this prefix check and nothing else.
const STokenV2Prefix = "v2_"

// SessionTokens holds every credential issued during the exchange chain.
// Exchange steps only ever add or overwrite fields; nothing clears a token
// short of an explicit re-login.
type SessionTokens struct {
	AccountID   string `json:"account_id,omitempty"`
	STokenV1    string `json:"stoken_v1,omitempty"`
	STokenV2    string `json:"stoken_v2,omitempty"`
	CookieToken string `json:"cookie_token,omitempty"`
	LoginTicket string `json:"login_ticket,omitempty"`
	LToken      string `json:"ltoken,omitempty"`
	MID         string `json:"mid,omitempty"`
}

// SToken returns the super-token, preferring the v1 form.
func (t *SessionTokens) SToken() string {
	if t.STokenV1 != "" {
		return t.STokenV1
	}
	return t.STokenV2
}

// SetSToken stores a super-token into the slot matching its wire form.
func (t *SessionTokens) SetSToken(v string) {
	if v == "" {
		return
	}
	if strings.HasPrefix(v, STokenV2Prefix) {
		t.STokenV2 = v
	} else {
		t.STokenV1 = v
	}
}

// IsCorrect reports whether the session is usable: account id, a super-token
// and a cookie-token must all be present simultaneously.
func (t *SessionTokens) IsCorrect() bool {
	return t.AccountID != "" && t.SToken() != "" && t.CookieToken != ""
}

// Merge copies non-empty fields of in over t. Empty incoming fields never
// clear existing values, keeping token acquisition monotonic.
func (t *SessionTokens) Merge(in SessionTokens) {
	if in.AccountID != "" {
		t.AccountID = in.AccountID
	}
	if in.STokenV1 != "" {
		t.STokenV1 = in.STokenV1
	}
	if in.STokenV2 != "" {
		t.STokenV2 = in.STokenV2
	}
	if in.CookieToken != "" {
		t.CookieToken = in.CookieToken
	}
	if in.LoginTicket != "" {
		t.LoginTicket = in.LoginTicket
	}
	if in.LToken != "" {
		t.LToken = in.LToken
	}
	if in.MID != "" {
		t.MID = in.MID
	}
}

// CookieHeader renders the tokens as a Cookie header value. The platform
// expects the account id under four legacy aliases. When v2 is set, the
// stoken field carries the v2 form (requests that need it also send mid).
func (t *SessionTokens) CookieHeader(v2 bool) string {
	var b strings.Builder
	add := func(k, v string) {
		if v == "" {
			return
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(v)
		b.WriteByte(';')
	}
	add("stuid", t.AccountID)
	add("ltuid", t.AccountID)
	add("account_id", t.AccountID)
	add("login_uid", t.AccountID)
	if v2 && t.STokenV2 != "" {
		add("stoken", t.STokenV2)
	} else {
		add("stoken", t.STokenV1)
	}
	add("mid", t.MID)
	add("cookie_token", t.CookieToken)
	add("ltoken", t.LToken)
	add("login_ticket", t.LoginTicket)
	return b.String()
}
