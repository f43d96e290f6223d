package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/and161185/mys-helper/internal/model"
	"github.com/and161185/mys-helper/internal/platform"
)

// signGame ties a game id to its short name and sign-in activity id.
type signGame struct {
	name  string
	actID string
}

// Supported daily sign-in activities, keyed by the game id the record card
// reports.
var signGames = map[int]signGame{
	1:                       {name: "honkai3", actID: "e202207181446311"},
	platform.GameIDGenshin:  {name: "genshin", actID: "e202311201442471"},
	platform.GameIDStarRail: {name: "starrail", actID: "e202304121516551"},
	8:                       {name: "zzz", actID: "e202406242138391"},
}

// ErrLoginExpired marks an account whose session no longer passes
// authentication; the caller should suggest a re-login.
var ErrLoginExpired = errors.New("session expired, re-login required")

// GameSign signs the account into every selected game's daily reward. The
// returned line is the per-account report entry.
func (s *Service) GameSign(ctx context.Context, a *model.Account) (string, error) {
	records, st := s.api.GetGameRecords(ctx, a)
	if !st.OK() {
		return "", statusErr("fetch game records", st)
	}

	var lines []string
	for _, rec := range records {
		game, ok := signGames[rec.GameID]
		if !ok || !wantGame(a.SignGames, game.name) {
			continue
		}
		line, err := s.signOne(ctx, a, game, rec)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return "no matching game accounts", nil
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Service) signOne(ctx context.Context, a *model.Account, game signGame, rec platform.GameRecord) (string, error) {
	info, st := s.api.GetSignInfo(ctx, a, game.actID, rec)
	if !st.OK() {
		return "", statusErr(game.name+" sign info", st)
	}
	if info.IsSign {
		return fmt.Sprintf("%s %s: already signed (day %d)", game.name, rec.Nickname, info.TotalSignDay), nil
	}

	st, _ = s.exec.Do(ctx, a, func(ctx context.Context, chal *model.Challenge, v *model.Verification) (model.ActionStatus, *model.Challenge) {
		return s.api.SignGame(ctx, a, game.actID, rec, chal, v)
	})
	switch st.Reason() {
	case model.ReasonNone:
		return fmt.Sprintf("%s %s: signed (day %d)", game.name, rec.Nickname, info.TotalSignDay+1), nil
	case model.ReasonNeedVerify:
		return "", fmt.Errorf("%s: verification unresolved", game.name)
	case model.ReasonLoginExpired:
		return "", ErrLoginExpired
	default:
		return "", statusErr(game.name+" sign", st)
	}
}

// statusErr converts a failed platform status into an error for the task
// report.
func statusErr(step string, st model.ActionStatus) error {
	if st.Reason() == model.ReasonLoginExpired {
		return ErrLoginExpired
	}
	return fmt.Errorf("%s: %s", step, st.Reason())
}
