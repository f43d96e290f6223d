package platform

import (
	"context"
	"net/url"

	"github.com/and161185/mys-helper/internal/model"
)

// Game ids as the record card reports them.
const (
	GameIDGenshin  = 2
	GameIDStarRail = 6
)

// GenshinNote is the real-time resource snapshot of a Genshin account.
type GenshinNote struct {
	CurrentResin         int    `json:"current_resin"`
	MaxResin             int    `json:"max_resin"`
	ResinRecoveryTime    string `json:"resin_recovery_time"`
	FinishedTaskNum      int    `json:"finished_task_num"`
	TotalTaskNum         int    `json:"total_task_num"`
	CurrentHomeCoin      int    `json:"current_home_coin"`
	MaxHomeCoin          int    `json:"max_home_coin"`
	HomeCoinRecoveryTime string `json:"home_coin_recovery_time"`
	CurrentExpeditionNum int    `json:"current_expedition_num"`
	MaxExpeditionNum     int    `json:"max_expedition_num"`
}

// StarRailNote is the real-time resource snapshot of a Star Rail account.
type StarRailNote struct {
	CurrentStamina     int `json:"current_stamina"`
	MaxStamina         int `json:"max_stamina"`
	StaminaRecoverTime int `json:"stamina_recover_time"`
	CurrentTrainScore  int `json:"current_train_score"`
	MaxTrainScore      int `json:"max_train_score"`
	CurrentRogueScore  int `json:"current_rogue_score"`
	MaxRogueScore      int `json:"max_rogue_score"`
	AcceptedExpedition int `json:"accepted_epedition_num"`
	TotalExpedition    int `json:"total_expedition_num"`
}

// GetGenshinNote fetches the daily note for a Genshin game account.
func (c *Client) GetGenshinNote(ctx context.Context, a *model.Account, rec GameRecord) (GenshinNote, model.ActionStatus) {
	var data GenshinNote
	q := url.Values{"role_id": {rec.RoleID}, "server": {rec.Region}}
	st := c.noteCall(ctx, a, hostRecord+"/game_record/app/genshin/api/dailyNote", q, &data)
	if !st.OK() {
		return GenshinNote{}, st
	}
	return data, model.StatusOK()
}

// GetStarRailNote fetches the daily note for a Star Rail game account.
func (c *Client) GetStarRailNote(ctx context.Context, a *model.Account, rec GameRecord) (StarRailNote, model.ActionStatus) {
	var data StarRailNote
	q := url.Values{"role_id": {rec.RoleID}, "server": {rec.Region}}
	st := c.noteCall(ctx, a, hostRecord+"/game_record/app/hkrpg/api/note", q, &data)
	if !st.OK() {
		return StarRailNote{}, st
	}
	return data, model.StatusOK()
}

func (c *Client) noteCall(ctx context.Context, a *model.Account, endpoint string, q url.Values, out any) model.ActionStatus {
	h := c.accountHeaders(a, false)
	h["DS"] = ds2(c.salts.Params, "", q.Encode())
	req := c.http.R().SetContext(ctx).SetHeaders(h).SetQueryString(q.Encode())
	return c.call(req, "GET", endpoint, out)
}
