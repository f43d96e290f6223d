package platform

import (
	"context"
	"encoding/json"
	"net/url"

	"go.uber.org/zap"

	"github.com/and161185/mys-helper/internal/model"
)

// GameRecord is one game account bound to the platform account.
type GameRecord struct {
	GameID     int    `json:"game_id"`
	Region     string `json:"region"`
	RegionName string `json:"region_name"`
	RoleID     string `json:"game_role_id"`
	Nickname   string `json:"nickname"`
	Level      int    `json:"level"`
}

// GetGameRecords lists the account's bound game accounts.
func (c *Client) GetGameRecords(ctx context.Context, a *model.Account) ([]GameRecord, model.ActionStatus) {
	var data struct {
		List []GameRecord `json:"list"`
	}
	q := url.Values{"uid": {a.UID}}
	h := c.accountHeaders(a, false)
	h["DS"] = ds2(c.salts.Params, "", q.Encode())
	req := c.http.R().SetContext(ctx).SetHeaders(h).SetQueryString(q.Encode())
	st := c.call(req, "GET", hostRecord+"/game_record/card/wapi/getGameRecordCard", &data)
	if !st.OK() {
		return nil, st
	}
	return data.List, model.StatusOK()
}

// SignInfo reports today's sign-in state for one game account.
type SignInfo struct {
	IsSign       bool `json:"is_sign"`
	TotalSignDay int  `json:"total_sign_day"`
	MissedDays   int  `json:"sign_cnt_missed"`
}

// GetSignInfo fetches the sign-in state for a game account under an act id.
func (c *Client) GetSignInfo(ctx context.Context, a *model.Account, actID string, rec GameRecord) (SignInfo, model.ActionStatus) {
	var data SignInfo
	req := c.http.R().SetContext(ctx).
		SetHeaders(c.accountHeaders(a, false)).
		SetQueryParams(map[string]string{"act_id": actID, "region": rec.Region, "uid": rec.RoleID})
	st := c.call(req, "GET", hostTakumi+"/event/luna/info", &data)
	if !st.OK() {
		return SignInfo{}, st
	}
	return data, model.StatusOK()
}

// Award is one day's sign-in reward.
type Award struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
	Cnt  int    `json:"cnt"`
}

// GetSignAwards fetches the month's reward list for an act id.
func (c *Client) GetSignAwards(ctx context.Context, a *model.Account, actID string) ([]Award, model.ActionStatus) {
	var data struct {
		Awards []Award `json:"awards"`
	}
	req := c.http.R().SetContext(ctx).
		SetHeaders(c.accountHeaders(a, false)).
		SetQueryParam("act_id", actID)
	st := c.call(req, "GET", hostTakumi+"/event/luna/home", &data)
	if !st.OK() {
		return nil, st
	}
	return data.Awards, model.StatusOK()
}

// signData is the sign-in response payload; a populated gt/challenge pair
// means the platform demands human verification before accepting the sign.
type signData struct {
	Gt        string `json:"gt"`
	Challenge string `json:"challenge"`
	RiskCode  int    `json:"risk_code"`
	Success   int    `json:"success"`
}

// SignGame performs the daily game sign-in. On a verification demand the
// returned challenge is non-nil and the status has NeedVerify set; pass the
// solved result back in on the retry.
func (c *Client) SignGame(ctx context.Context, a *model.Account, actID string, rec GameRecord, chal *model.Challenge, v *model.Verification) (model.ActionStatus, *model.Challenge) {
	body := map[string]string{"act_id": actID, "region": rec.Region, "uid": rec.RoleID}
	h := c.accountHeaders(a, false)
	h["DS"] = ds1(c.salts.IOS)
	if chal != nil && v != nil {
		h["x-rpc-challenge"] = chal.Challenge
		h["x-rpc-validate"] = v.Validate
		h["x-rpc-seccode"] = v.Seccode
	}
	var data signData
	req := c.http.R().SetContext(ctx).SetHeaders(h).SetBody(body)
	st := c.call(req, "POST", hostTakumi+"/event/luna/sign", &data)
	if !st.OK() {
		return st, nil
	}
	if data.Gt != "" && data.Challenge != "" {
		return model.ActionStatus{NeedVerify: true}, &model.Challenge{Gt: data.Gt, Challenge: data.Challenge}
	}
	return model.StatusOK(), nil
}

// MissionMeta describes one community mission and its completion threshold.
type MissionMeta struct {
	Name      string `json:"name"`
	Key       string `json:"mission_key"`
	Points    int    `json:"points"`
	Threshold int    `json:"threshold"`
}

// MissionState is the account's community mission progress snapshot.
type MissionState struct {
	TotalPoints int
	Missions    []MissionMeta
	Progress    map[string]int
}

// GetMissionState fetches the mission catalog and the account's progress.
func (c *Client) GetMissionState(ctx context.Context, a *model.Account) (MissionState, model.ActionStatus) {
	var missions struct {
		Missions []MissionMeta `json:"missions"`
	}
	h := c.accountHeaders(a, false)
	req := c.http.R().SetContext(ctx).SetHeaders(h)
	st := c.call(req, "GET", hostBBS+"/apihub/wapi/getMissions", &missions)
	if !st.OK() {
		return MissionState{}, st
	}

	var state struct {
		States []struct {
			MissionKey    string `json:"mission_key"`
			HappenedTimes int    `json:"happened_times"`
		} `json:"states"`
		TotalPoints int `json:"total_points"`
	}
	req = c.http.R().SetContext(ctx).SetHeaders(h)
	st = c.call(req, "GET", hostBBS+"/apihub/sapi/getUserMissionsState", &state)
	if !st.OK() {
		return MissionState{}, st
	}

	ms := MissionState{
		TotalPoints: state.TotalPoints,
		Missions:    missions.Missions,
		Progress:    make(map[string]int, len(state.States)),
	}
	for _, s := range state.States {
		ms.Progress[s.MissionKey] = s.HappenedTimes
	}
	return ms, model.StatusOK()
}

// SignCommunity performs the community (forum) daily sign-in for a board.
// Same verification contract as SignGame. Returned points are the coins
// granted by this sign-in, zero when the response omits them.
func (c *Client) SignCommunity(ctx context.Context, a *model.Account, boardID int, chal *model.Challenge, v *model.Verification) (int, model.ActionStatus, *model.Challenge) {
	body := map[string]any{"gids": boardID}
	h := c.accountHeaders(a, true)
	h["User-Agent"] = c.device.UserAgentAndroid
	h["DS"] = ds2(c.salts.Data, marshalBody(body), "")
	if chal != nil && v != nil {
		h["x-rpc-challenge"] = chal.Challenge
		h["x-rpc-validate"] = v.Validate
		h["x-rpc-seccode"] = v.Seccode
	}
	var data struct {
		Points int `json:"points"`
	}
	req := c.http.R().SetContext(ctx).SetHeaders(h).SetBody(body)
	resp, err := req.Execute("POST", hostBBS+"/apihub/app/api/signIn")
	if err != nil {
		c.log.Warn("community sign request failed", zap.Error(err))
		return 0, model.ActionStatus{NetworkError: true}, nil
	}
	st, ch := c.decodeVerifiable(resp.Body(), &data)
	return data.Points, st, ch
}

// GetPosts lists candidate posts on a board for the read/share missions.
func (c *Client) GetPosts(ctx context.Context, a *model.Account, boardID int) ([]string, model.ActionStatus) {
	var data struct {
		List []struct {
			Post struct {
				PostID string `json:"post_id"`
			} `json:"post"`
		} `json:"list"`
	}
	req := c.http.R().SetContext(ctx).
		SetHeaders(c.accountHeaders(a, false)).
		SetQueryParams(map[string]string{"gids": itoa(boardID), "page_size": "20"})
	st := c.call(req, "GET", hostBBS+"/post/api/feeds/posts", &data)
	if !st.OK() {
		return nil, st
	}
	ids := make([]string, 0, len(data.List))
	for _, p := range data.List {
		ids = append(ids, p.Post.PostID)
	}
	return ids, model.StatusOK()
}

// ReadPost registers a post view for the read mission.
func (c *Client) ReadPost(ctx context.Context, a *model.Account, postID string) model.ActionStatus {
	req := c.http.R().SetContext(ctx).
		SetHeaders(c.accountHeaders(a, false)).
		SetQueryParam("post_id", postID)
	return c.call(req, "GET", hostBBS+"/post/api/getPostFull", nil)
}

// LikePost upvotes a post for the like mission.
func (c *Client) LikePost(ctx context.Context, a *model.Account, postID string) model.ActionStatus {
	req := c.http.R().SetContext(ctx).
		SetHeaders(c.accountHeaders(a, false)).
		SetBody(map[string]any{"post_id": postID, "is_cancel": false})
	return c.call(req, "POST", hostBBS+"/apihub/sapi/upvotePost", nil)
}

// SharePost fetches a share configuration, which the platform counts as a
// completed share.
func (c *Client) SharePost(ctx context.Context, a *model.Account, postID string) model.ActionStatus {
	req := c.http.R().SetContext(ctx).
		SetHeaders(c.accountHeaders(a, false)).
		SetQueryParams(map[string]string{"entity_id": postID, "entity_type": "1"})
	return c.call(req, "GET", hostBBS+"/apihub/api/getShareConf", nil)
}

// decodeVerifiable decodes an envelope whose failure may carry a fresh
// verification challenge in the data object.
func (c *Client) decodeVerifiable(body []byte, out any) (model.ActionStatus, *model.Challenge) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return model.ActionStatus{IncorrectReturn: true}, nil
	}
	if env.Retcode == retNeedVerify || env.Retcode == retNeedVerifyRisk {
		var chal model.Challenge
		if err := json.Unmarshal(env.Data, &chal); err == nil && !chal.Empty() {
			return model.ActionStatus{NeedVerify: true}, &chal
		}
		return model.ActionStatus{NeedVerify: true}, nil
	}
	if env.Retcode != retOK {
		return statusFromRetcode(env.Retcode), nil
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return model.ActionStatus{IncorrectReturn: true}, nil
		}
	}
	return model.StatusOK(), nil
}
