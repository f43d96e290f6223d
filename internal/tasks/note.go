package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/and161185/mys-helper/internal/model"
	"github.com/and161185/mys-helper/internal/platform"
)

// Threshold defaults when the account does not set its own.
const (
	defaultResinThreshold   = 150
	defaultStaminaThreshold = 170
)

// NoteCheck fetches the real-time notes of the account's game accounts and
// compares resources against the thresholds. Which thresholds were already
// announced is tracked in the account's notice state, so a threshold fires
// once until the resource drops below it again; the updated state is
// persisted before returning.
func (s *Service) NoteCheck(ctx context.Context, a *model.Account) (string, error) {
	records, st := s.api.GetGameRecords(ctx, a)
	if !st.OK() {
		return "", statusErr("fetch game records", st)
	}

	var lines []string
	for _, rec := range records {
		switch rec.GameID {
		case platform.GameIDGenshin:
			note, st := s.api.GetGenshinNote(ctx, a, rec)
			if !st.OK() {
				return "", statusErr("genshin note", st)
			}
			lines = append(lines, s.evalGenshin(a, rec, note)...)
		case platform.GameIDStarRail:
			note, st := s.api.GetStarRailNote(ctx, a, rec)
			if !st.OK() {
				return "", statusErr("starrail note", st)
			}
			lines = append(lines, s.evalStarRail(a, rec, note)...)
		}
	}
	if len(lines) == 0 {
		return "no notes to check", nil
	}

	if err := s.store.SaveAccount(ctx, a); err != nil {
		return "", fmt.Errorf("persist notice state: %w", err)
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Service) evalGenshin(a *model.Account, rec platform.GameRecord, n platform.GenshinNote) []string {
	threshold := a.ResinThreshold
	if threshold <= 0 {
		threshold = defaultResinThreshold
	}
	lines := []string{fmt.Sprintf("genshin %s: resin %d/%d, home coin %d/%d",
		rec.Nickname, n.CurrentResin, n.MaxResin, n.CurrentHomeCoin, n.MaxHomeCoin)}

	switch {
	case n.CurrentResin >= n.MaxResin:
		if !a.Notice.ResinFull {
			a.Notice.ResinFull = true
			lines = append(lines, "NOTICE: resin is full")
		}
	case n.CurrentResin >= threshold:
		if !a.Notice.ResinReached {
			a.Notice.ResinReached = true
			lines = append(lines, fmt.Sprintf("NOTICE: resin reached %d", threshold))
		}
	default:
		a.Notice.ResinReached = false
		a.Notice.ResinFull = false
	}

	if n.MaxHomeCoin > 0 && n.CurrentHomeCoin >= n.MaxHomeCoin {
		if !a.Notice.HomeCoinFull {
			a.Notice.HomeCoinFull = true
			lines = append(lines, "NOTICE: realm currency is full")
		}
	} else {
		a.Notice.HomeCoinFull = false
	}
	return lines
}

func (s *Service) evalStarRail(a *model.Account, rec platform.GameRecord, n platform.StarRailNote) []string {
	threshold := a.StaminaThreshold
	if threshold <= 0 {
		threshold = defaultStaminaThreshold
	}
	lines := []string{fmt.Sprintf("starrail %s: stamina %d/%d",
		rec.Nickname, n.CurrentStamina, n.MaxStamina)}

	switch {
	case n.CurrentStamina >= n.MaxStamina:
		if !a.Notice.StaminaFull {
			a.Notice.StaminaFull = true
			lines = append(lines, "NOTICE: stamina is full")
		}
	case n.CurrentStamina >= threshold:
		if !a.Notice.StaminaReached {
			a.Notice.StaminaReached = true
			lines = append(lines, fmt.Sprintf("NOTICE: stamina reached %d", threshold))
		}
	default:
		a.Notice.StaminaReached = false
		a.Notice.StaminaFull = false
	}
	return lines
}
