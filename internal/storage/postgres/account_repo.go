package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/and161185/mys-helper/internal/errs"
	"github.com/and161185/mys-helper/internal/model"
)

// AccountRepo implements storage.Store on PostgreSQL. Identity and device
// fields are columns; tokens, settings and notice state travel as jsonb.
type AccountRepo struct{ db *DB }

// NewAccountRepo constructs an account repository.
func NewAccountRepo(db *DB) *AccountRepo { return &AccountRepo{db: db} }

// settings groups the per-account preferences stored in one jsonb column.
type settings struct {
	SolverURL        string            `json:"solver_url,omitempty"`
	SolverParams     map[string]string `json:"solver_params,omitempty"`
	EnableNotice     bool              `json:"enable_notice"`
	EnableMission    bool              `json:"enable_mission"`
	EnableGameSign   bool              `json:"enable_game_sign"`
	SignGames        []string          `json:"sign_games,omitempty"`
	MissionGames     []string          `json:"mission_games,omitempty"`
	ResinThreshold   int               `json:"resin_threshold,omitempty"`
	StaminaThreshold int               `json:"stamina_threshold,omitempty"`
}

func settingsOf(a *model.Account) settings {
	return settings{
		SolverURL:        a.SolverURL,
		SolverParams:     a.SolverParams,
		EnableNotice:     a.EnableNotice,
		EnableMission:    a.EnableMission,
		EnableGameSign:   a.EnableGameSign,
		SignGames:        a.SignGames,
		MissionGames:     a.MissionGames,
		ResinThreshold:   a.ResinThreshold,
		StaminaThreshold: a.StaminaThreshold,
	}
}

func (s settings) apply(a *model.Account) {
	a.SolverURL = s.SolverURL
	a.SolverParams = s.SolverParams
	a.EnableNotice = s.EnableNotice
	a.EnableMission = s.EnableMission
	a.EnableGameSign = s.EnableGameSign
	a.SignGames = s.SignGames
	a.MissionGames = s.MissionGames
	a.ResinThreshold = s.ResinThreshold
	a.StaminaThreshold = s.StaminaThreshold
}

// LoadAll selects every account ordered by bind time.
func (r *AccountRepo) LoadAll(ctx context.Context) ([]*model.Account, error) {
	const q = `
SELECT uid, platform, device_id_ios, device_id_android, device_fp, tokens, settings, notice
FROM accounts ORDER BY created_at`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Account
	for rows.Next() {
		var a model.Account
		var tokens, set, notice []byte
		if err := rows.Scan(&a.UID, &a.Platform, &a.DeviceIDiOS, &a.DeviceIDAndroid,
			&a.DeviceFP, &tokens, &set, &notice); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(tokens, &a.Tokens); err != nil {
			return nil, fmt.Errorf("account %s tokens: %w", a.UID, err)
		}
		var st settings
		if err := json.Unmarshal(set, &st); err != nil {
			return nil, fmt.Errorf("account %s settings: %w", a.UID, err)
		}
		st.apply(&a)
		if err := json.Unmarshal(notice, &a.Notice); err != nil {
			return nil, fmt.Errorf("account %s notice: %w", a.UID, err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// SaveAccount upserts one account snapshot.
func (r *AccountRepo) SaveAccount(ctx context.Context, a *model.Account) error {
	tokens, err := json.Marshal(a.Tokens)
	if err != nil {
		return err
	}
	set, err := json.Marshal(settingsOf(a))
	if err != nil {
		return err
	}
	notice, err := json.Marshal(a.Notice)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO accounts (uid, platform, device_id_ios, device_id_android, device_fp, tokens, settings, notice)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (uid) DO UPDATE SET
  platform = EXCLUDED.platform,
  device_fp = EXCLUDED.device_fp,
  tokens = EXCLUDED.tokens,
  settings = EXCLUDED.settings,
  notice = EXCLUDED.notice,
  updated_at = now()`
	_, err = r.db.Pool.Exec(ctx, q, a.UID, a.Platform, a.DeviceIDiOS, a.DeviceIDAndroid,
		a.DeviceFP, tokens, set, notice)
	return err
}

// DeleteAccount removes one account.
func (r *AccountRepo) DeleteAccount(ctx context.Context, uid string) error {
	const q = `DELETE FROM accounts WHERE uid = $1`
	tag, err := r.db.Pool.Exec(ctx, q, uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
