package platform

import (
	"testing"

	"go.uber.org/zap"

	"github.com/and161185/mys-helper/internal/config"
	"github.com/and161185/mys-helper/internal/model"
)

func testClient() *Client {
	return New(config.Default(), zap.NewNop())
}

func TestDecodeVerifiable_ChallengeExtracted(t *testing.T) {
	t.Parallel()

	c := testClient()
	body := []byte(`{"retcode":1034,"message":"risk","data":{"gt":"g1","challenge":"c1"}}`)
	st, chal := c.decodeVerifiable(body, nil)
	if !st.NeedVerify {
		t.Fatalf("want NeedVerify: %+v", st)
	}
	if chal == nil || chal.Gt != "g1" || chal.Challenge != "c1" {
		t.Fatalf("challenge: %+v", chal)
	}
}

func TestDecodeVerifiable_VerifyWithoutChallenge(t *testing.T) {
	t.Parallel()

	c := testClient()
	st, chal := c.decodeVerifiable([]byte(`{"retcode":5003,"data":null}`), nil)
	if !st.NeedVerify || chal != nil {
		t.Fatalf("want bare NeedVerify: %+v %+v", st, chal)
	}
}

func TestDecodeVerifiable_SuccessDecodesData(t *testing.T) {
	t.Parallel()

	c := testClient()
	var out struct {
		Points int `json:"points"`
	}
	st, chal := c.decodeVerifiable([]byte(`{"retcode":0,"data":{"points":40}}`), &out)
	if !st.OK() || chal != nil {
		t.Fatalf("want clean success: %+v %+v", st, chal)
	}
	if out.Points != 40 {
		t.Fatalf("data: %+v", out)
	}
}

func TestDecodeVerifiable_Malformed(t *testing.T) {
	t.Parallel()

	c := testClient()
	st, _ := c.decodeVerifiable([]byte(`garbage`), nil)
	if st.Reason() != model.ReasonIncorrectReturn {
		t.Fatalf("want incorrect return, got %q", st.Reason())
	}

	st, _ = c.decodeVerifiable([]byte(`{"retcode":-100}`), nil)
	if st.Reason() != model.ReasonLoginExpired {
		t.Fatalf("retcode mapping must apply: %q", st.Reason())
	}
}

func TestAccountHeaders_CarriesFingerprintAndCookies(t *testing.T) {
	t.Parallel()

	c := testClient()
	a := &model.Account{
		UID:         "1",
		DeviceIDiOS: "IOS-ID",
		DeviceFP:    "fp1",
		Platform:    model.PlatformIOS,
		Tokens:      model.SessionTokens{AccountID: "1", STokenV1: "s", CookieToken: "ck"},
	}
	h := c.accountHeaders(a, false)
	if h["x-rpc-device_id"] != "IOS-ID" {
		t.Fatalf("device id header: %q", h["x-rpc-device_id"])
	}
	if h["x-rpc-device_fp"] != "fp1" {
		t.Fatalf("fingerprint header: %q", h["x-rpc-device_fp"])
	}
	if h["Cookie"] == "" {
		t.Fatalf("cookie header missing")
	}
}
