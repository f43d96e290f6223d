package model

// FailReason is the single canonical classification of a failed attempt.
type FailReason string

// Reasons in display precedence order (see ActionStatus.Reason).
const (
	ReasonNone            FailReason = ""
	ReasonLoginExpired    FailReason = "login_expired"
	ReasonNeedVerify      FailReason = "need_verify"
	ReasonIncorrectReturn FailReason = "incorrect_return"
	ReasonInvalidDS       FailReason = "invalid_ds"
	ReasonNetworkError    FailReason = "network_error"
)

// ActionStatus is the structured outcome of one platform request. The
// platform reports failures as overlapping conditions; Reason collapses
// them to exactly one canonical flag for display.
type ActionStatus struct {
	Success         bool
	NetworkError    bool
	IncorrectReturn bool
	LoginExpired    bool
	NeedVerify      bool
	InvalidDS       bool
}

// OK reports clean success.
func (s ActionStatus) OK() bool { return s.Success }

// Reason returns the most relevant failure flag under a fixed precedence:
// expired session beats a verification demand, which beats malformed data,
// which beats signature and transport problems. Returns ReasonNone for a
// successful status.
func (s ActionStatus) Reason() FailReason {
	if s.Success {
		return ReasonNone
	}
	switch {
	case s.LoginExpired:
		return ReasonLoginExpired
	case s.NeedVerify:
		return ReasonNeedVerify
	case s.IncorrectReturn:
		return ReasonIncorrectReturn
	case s.InvalidDS:
		return ReasonInvalidDS
	case s.NetworkError:
		return ReasonNetworkError
	default:
		return ReasonNone
	}
}

// StatusOK is a convenience constructor for a clean success.
func StatusOK() ActionStatus { return ActionStatus{Success: true} }

// Challenge is a human-verification task issued by the platform alongside
// a rejected privileged request. It is ephemeral and single-use.
type Challenge struct {
	Gt         string `json:"gt"`
	Challenge  string `json:"challenge"`
	MmtKey     string `json:"mmt_key,omitempty"`
	NewCaptcha bool   `json:"new_captcha,omitempty"`
	RiskType   string `json:"risk_type,omitempty"`
}

// Empty reports whether the challenge lacks the fields a solver needs.
func (c *Challenge) Empty() bool {
	return c == nil || c.Gt == "" || c.Challenge == ""
}

// Verification is a solved human-verification token pair submitted back to
// the platform together with the challenge that produced it.
type Verification struct {
	Validate string
	Seccode  string
}
