package platform

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/url"

	"go.uber.org/zap"

	"github.com/and161185/mys-helper/internal/model"
)

// retQRExpired is returned by the scan-status endpoint once the ticket dies.
const retQRExpired = -106

// QRStat is the polled state of one login ticket.
type QRStat int

const (
	// QRPending: issued, not scanned or scanned but unconfirmed.
	QRPending QRStat = iota
	// QRConfirmed: scan confirmed; UID and game token are available.
	QRConfirmed
	// QRExpired: ticket died server-side; issue a new one.
	QRExpired
)

// QRScan carries one poll result.
type QRScan struct {
	Stat      QRStat
	UID       string
	GameToken string
}

// FetchQRLogin requests a login ticket and the scannable URL bound to the
// device identifier and the configured application id.
func (c *Client) FetchQRLogin(ctx context.Context, deviceID string) (ticket, qrURL string, st model.ActionStatus) {
	var data struct {
		URL string `json:"url"`
	}
	req := c.http.R().SetContext(ctx).
		SetHeaders(c.appHeaders(deviceID)).
		SetBody(map[string]string{"app_id": c.appID, "device": deviceID})
	st = c.call(req, "POST", hostSDK+"/hk4e_cn/combo/panda/qrcode/fetch", &data)
	if !st.OK() {
		return "", "", st
	}
	u, err := url.Parse(data.URL)
	if err != nil || u.Query().Get("ticket") == "" {
		c.log.Warn("qrcode fetch returned no ticket", zap.String("url", data.URL))
		return "", "", model.ActionStatus{IncorrectReturn: true}
	}
	return u.Query().Get("ticket"), data.URL, model.StatusOK()
}

// QueryQRLogin polls the scan status of a ticket. A confirmed scan yields
// the account id and the ephemeral game token.
func (c *Client) QueryQRLogin(ctx context.Context, ticket, deviceID string) (QRScan, model.ActionStatus) {
	var data struct {
		Stat    string `json:"stat"`
		Payload struct {
			Raw string `json:"raw"`
		} `json:"payload"`
	}
	req := c.http.R().SetContext(ctx).
		SetHeaders(c.appHeaders(deviceID)).
		SetBody(map[string]string{"app_id": c.appID, "device": deviceID, "ticket": ticket})
	resp, err := req.Execute("POST", hostSDK+"/hk4e_cn/combo/panda/qrcode/query")
	if err != nil {
		c.log.Warn("qrcode query failed", zap.Error(err))
		return QRScan{}, model.ActionStatus{NetworkError: true}
	}
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return QRScan{}, model.ActionStatus{IncorrectReturn: true}
	}
	if env.Retcode == retQRExpired {
		return QRScan{Stat: QRExpired}, model.StatusOK()
	}
	if env.Retcode != retOK {
		return QRScan{}, statusFromRetcode(env.Retcode)
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return QRScan{}, model.ActionStatus{IncorrectReturn: true}
	}
	if data.Stat != "Confirmed" {
		return QRScan{Stat: QRPending}, model.StatusOK()
	}
	var raw struct {
		UID   string `json:"uid"`
		Token string `json:"token"`
	}
	if err := json.Unmarshal([]byte(data.Payload.Raw), &raw); err != nil || raw.UID == "" || raw.Token == "" {
		c.log.Warn("qrcode payload malformed", zap.Error(err))
		return QRScan{}, model.ActionStatus{IncorrectReturn: true}
	}
	return QRScan{Stat: QRConfirmed, UID: raw.UID, GameToken: raw.Token}, model.StatusOK()
}

const fpSeedChars = "0123456789abcdef"

func randomHex(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = fpSeedChars[rand.Intn(len(fpSeedChars))]
	}
	return string(b)
}

// GetDeviceFP asks the platform to issue a device fingerprint for the
// given device identifier. Privileged requests are rejected without it.
func (c *Client) GetDeviceFP(ctx context.Context, deviceID string) (string, model.ActionStatus) {
	var data struct {
		Code     int    `json:"code"`
		Msg      string `json:"msg"`
		DeviceFP string `json:"device_fp"`
	}
	body := map[string]string{
		"device_id":  deviceID,
		"seed_id":    randomHex(16),
		"seed_time":  itoa(int(rand.Int31())),
		"platform":   "1",
		"device_fp":  randomHex(13),
		"app_name":   "bbs_cn",
		"ext_fields": "{}",
	}
	req := c.http.R().SetContext(ctx).
		SetHeaders(c.appHeaders(deviceID)).
		SetBody(body)
	st := c.call(req, "POST", hostPublicData+"/device-fp/api/getFp", &data)
	if !st.OK() {
		return "", st
	}
	if data.Code != 200 || data.DeviceFP == "" {
		c.log.Warn("device fp rejected", zap.Int("code", data.Code), zap.String("msg", data.Msg))
		return "", model.ActionStatus{IncorrectReturn: true}
	}
	return data.DeviceFP, model.StatusOK()
}

// GetTokenByGameToken trades the ephemeral game token for the primary
// session token (super-token) plus the mid identifier.
func (c *Client) GetTokenByGameToken(ctx context.Context, uid, gameToken string) (model.SessionTokens, model.ActionStatus) {
	var data struct {
		Token struct {
			Token string `json:"token"`
		} `json:"token"`
		UserInfo struct {
			AID string `json:"aid"`
			MID string `json:"mid"`
		} `json:"user_info"`
	}
	req := c.http.R().SetContext(ctx).
		SetHeader("x-rpc-app_id", "bll8iq97cem8").
		SetBody(map[string]string{"account_id": uid, "game_token": gameToken})
	st := c.call(req, "POST", hostTakumi+"/account/ma-cn-session/app/getTokenByGameToken", &data)
	if !st.OK() {
		return model.SessionTokens{}, st
	}
	if data.Token.Token == "" {
		return model.SessionTokens{}, model.ActionStatus{IncorrectReturn: true}
	}
	toks := model.SessionTokens{AccountID: data.UserInfo.AID, MID: data.UserInfo.MID}
	if toks.AccountID == "" {
		toks.AccountID = uid
	}
	toks.SetSToken(data.Token.Token)
	return toks, model.StatusOK()
}

// GetCookieTokenByGameToken derives the cookie-token directly from the
// game token. Legacy path used when the primary token came back in v1 form.
func (c *Client) GetCookieTokenByGameToken(ctx context.Context, uid, gameToken string) (model.SessionTokens, model.ActionStatus) {
	var data struct {
		CookieToken string `json:"cookie_token"`
		UID         string `json:"uid"`
	}
	req := c.http.R().SetContext(ctx).
		SetQueryParams(map[string]string{"game_token": gameToken, "account_id": uid})
	st := c.call(req, "GET", hostTakumi+"/auth/api/getCookieAccountInfoByGameToken", &data)
	if !st.OK() {
		return model.SessionTokens{}, st
	}
	if data.CookieToken == "" {
		return model.SessionTokens{}, model.ActionStatus{IncorrectReturn: true}
	}
	return model.SessionTokens{AccountID: uid, CookieToken: data.CookieToken}, model.StatusOK()
}

// GetLTokenBySToken derives the l-token from a v2 super-token session.
func (c *Client) GetLTokenBySToken(ctx context.Context, tokens *model.SessionTokens, deviceID string) (model.SessionTokens, model.ActionStatus) {
	var data struct {
		LToken string `json:"ltoken"`
	}
	h := c.appHeaders(deviceID)
	h["Cookie"] = tokens.CookieHeader(true)
	req := c.http.R().SetContext(ctx).SetHeaders(h)
	st := c.call(req, "GET", hostPassport+"/account/auth/api/getLTokenBySToken", &data)
	if !st.OK() {
		return model.SessionTokens{}, st
	}
	if data.LToken == "" {
		return model.SessionTokens{}, model.ActionStatus{IncorrectReturn: true}
	}
	return model.SessionTokens{LToken: data.LToken}, model.StatusOK()
}

// GetCookieTokenBySToken derives the cookie-token from a v2 super-token
// session. Independent of the l-token exchange; either may fail alone.
func (c *Client) GetCookieTokenBySToken(ctx context.Context, tokens *model.SessionTokens, deviceID string) (model.SessionTokens, model.ActionStatus) {
	var data struct {
		CookieToken string `json:"cookie_token"`
	}
	h := c.appHeaders(deviceID)
	h["Cookie"] = tokens.CookieHeader(true)
	req := c.http.R().SetContext(ctx).SetHeaders(h)
	st := c.call(req, "GET", hostPassport+"/account/auth/api/getCookieAccountInfoBySToken", &data)
	if !st.OK() {
		return model.SessionTokens{}, st
	}
	if data.CookieToken == "" {
		return model.SessionTokens{}, model.ActionStatus{IncorrectReturn: true}
	}
	return model.SessionTokens{CookieToken: data.CookieToken}, model.StatusOK()
}
