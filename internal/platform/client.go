// Package platform is the adapter to the community platform HTTP API.
// Endpoint paths, field names and retcodes live here and nowhere else;
// callers see token structs and ActionStatus values only.
package platform

import (
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/and161185/mys-helper/internal/config"
	"github.com/and161185/mys-helper/internal/model"
)

// API hosts.
const (
	hostSDK        = "https://hk4e-sdk.mihoyo.com"
	hostTakumi     = "https://api-takumi.mihoyo.com"
	hostPassport   = "https://passport-api.mihoyo.com"
	hostPublicData = "https://public-data-api.mihoyo.com"
	hostRecord     = "https://api-takumi-record.mihoyo.com"
	hostBBS        = "https://bbs-api.miyoushe.com"
)

// Client issues signed requests against the platform.
type Client struct {
	http   *resty.Client
	salts  config.SaltConfig
	device config.DeviceConfig
	appID  string
	log    *zap.Logger
}

// New builds a client with the per-call timeout and transport retry policy
// from the configuration.
func New(cfg config.Config, log *zap.Logger) *Client {
	httpc := resty.New().
		SetTimeout(cfg.Preference.Timeout()).
		SetRetryCount(cfg.Preference.MaxRetryTimes).
		SetRetryWaitTime(cfg.Preference.RetryInterval())
	return &Client{
		http:   httpc,
		salts:  cfg.Salts,
		device: cfg.Device,
		appID:  cfg.Preference.GameTokenAppID,
		log:    log,
	}
}

// envelope is the common response wrapper: a retcode discriminant, a
// message and an endpoint-specific data object.
type envelope struct {
	Retcode int             `json:"retcode"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Known retcodes. Anything unrecognized on a non-zero retcode maps to
// IncorrectReturn.
const (
	retOK             = 0
	retLoginExpired   = -100
	retTokenInvalid   = 10001
	retTokenTimeout   = 10102
	retAuthFailed     = 10103
	retNeedVerify     = 1034
	retNeedVerifyRisk = 5003
	retInvalidDS      = -502
)

func statusFromRetcode(code int) model.ActionStatus {
	switch code {
	case retOK:
		return model.StatusOK()
	case retLoginExpired, retTokenInvalid, retTokenTimeout, retAuthFailed:
		return model.ActionStatus{LoginExpired: true}
	case retNeedVerify, retNeedVerifyRisk:
		return model.ActionStatus{NeedVerify: true}
	case retInvalidDS:
		return model.ActionStatus{InvalidDS: true}
	default:
		return model.ActionStatus{IncorrectReturn: true}
	}
}

// call performs one request and decodes the envelope. Transport problems
// become NetworkError, decode problems IncorrectReturn; both are logged at
// the point of occurrence and never raised.
func (c *Client) call(req *resty.Request, method, url string, out any) model.ActionStatus {
	resp, err := req.Execute(method, url)
	if err != nil {
		c.log.Warn("platform request failed", zap.String("url", url), zap.Error(err))
		return model.ActionStatus{NetworkError: true}
	}
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		c.log.Warn("platform response malformed", zap.String("url", url), zap.Error(err))
		return model.ActionStatus{IncorrectReturn: true}
	}
	st := statusFromRetcode(env.Retcode)
	if !st.OK() {
		c.log.Debug("platform error return",
			zap.String("url", url),
			zap.Int("retcode", env.Retcode),
			zap.String("message", env.Message),
		)
		return st
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			c.log.Warn("platform data malformed", zap.String("url", url), zap.Error(err))
			return model.ActionStatus{IncorrectReturn: true}
		}
	}
	return st
}

// appHeaders returns the header set every app-level request carries for the
// given device identifier.
func (c *Client) appHeaders(deviceID string) map[string]string {
	return map[string]string{
		"User-Agent":         c.device.UserAgentMobile,
		"x-rpc-device_id":    deviceID,
		"x-rpc-device_model": c.device.DeviceModel,
		"x-rpc-device_name":  c.device.DeviceName,
		"x-rpc-sys_version":  c.device.SysVersion,
		"x-rpc-channel":      c.device.Channel,
		"x-rpc-app_version":  c.device.AppVersion,
		"x-rpc-client_type":  "5",
		"x-rpc-platform":     "ios",
		"Referer":            "https://app.mihoyo.com",
	}
}

// accountHeaders extends appHeaders with the account's server-issued
// fingerprint and session cookies.
func (c *Client) accountHeaders(a *model.Account, v2Cookie bool) map[string]string {
	h := c.appHeaders(a.DeviceID())
	if a.DeviceFP != "" {
		h["x-rpc-device_fp"] = a.DeviceFP
	}
	h["Cookie"] = a.Tokens.CookieHeader(v2Cookie)
	return h
}

func marshalBody(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func itoa(v int) string { return fmt.Sprintf("%d", v) }
