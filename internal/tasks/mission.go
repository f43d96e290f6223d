package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/and161185/mys-helper/internal/model"
	"github.com/and161185/mys-helper/internal/platform"
)

// Community boards in report order; the id doubles as the gids parameter
// of the board-scoped endpoints.
var missionBoards = []struct {
	name string
	id   int
}{
	{"honkai3", 1},
	{"genshin", 2},
	{"honkai2", 3},
	{"wd", 4},
	{"dby", 5},
	{"starrail", 6},
	{"zzz", 8},
}

// Per-day action counts the missions expect.
const (
	missionReadCount = 3
	missionLikeCount = 5
)

// Mission runs the daily community missions for the account: board
// sign-in, then reading, liking and sharing posts. The returned line
// reports the coin balance movement.
func (s *Service) Mission(ctx context.Context, a *model.Account) (string, error) {
	before, st := s.api.GetMissionState(ctx, a)
	if !st.OK() {
		return "", statusErr("mission state", st)
	}
	if missionsComplete(before) {
		return fmt.Sprintf("missions already complete, myb %d", before.TotalPoints), nil
	}

	var lines []string
	for _, b := range missionBoards {
		if !wantGame(a.MissionGames, b.name) {
			continue
		}
		line, err := s.missionBoard(ctx, a, b.name, b.id)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return "no boards selected", nil
	}

	after, st := s.api.GetMissionState(ctx, a)
	if st.OK() {
		lines = append(lines, fmt.Sprintf("myb %d -> %d (+%d)",
			before.TotalPoints, after.TotalPoints, after.TotalPoints-before.TotalPoints))
	}
	return strings.Join(lines, "\n"), nil
}

// missionsComplete reports whether every catalogued daily mission already
// hit its threshold.
func missionsComplete(ms platform.MissionState) bool {
	if len(ms.Missions) == 0 {
		return false
	}
	for _, m := range ms.Missions {
		if m.Threshold > 0 && ms.Progress[m.Key] < m.Threshold {
			return false
		}
	}
	return true
}

// missionBoard performs one board's sign-in plus the post interactions
// that feed the read/like/share missions.
func (s *Service) missionBoard(ctx context.Context, a *model.Account, name string, boardID int) (string, error) {
	var points int
	st, _ := s.exec.Do(ctx, a, func(ctx context.Context, chal *model.Challenge, v *model.Verification) (model.ActionStatus, *model.Challenge) {
		var st model.ActionStatus
		var next *model.Challenge
		points, st, next = s.api.SignCommunity(ctx, a, boardID, chal, v)
		return st, next
	})
	switch st.Reason() {
	case model.ReasonNone:
	case model.ReasonNeedVerify:
		return "", fmt.Errorf("%s board sign: verification unresolved", name)
	default:
		return "", statusErr(name+" board sign", st)
	}

	posts, pst := s.api.GetPosts(ctx, a, boardID)
	if !pst.OK() || len(posts) == 0 {
		// Board sign-in succeeded; report that and skip the post missions.
		return fmt.Sprintf("%s: signed (+%d myb), no posts available", name, points), nil
	}

	read, liked, shared := 0, 0, 0
	for i, id := range posts {
		if i < missionReadCount && s.api.ReadPost(ctx, a, id).OK() {
			read++
		}
		if i < missionLikeCount && s.api.LikePost(ctx, a, id).OK() {
			liked++
		}
	}
	if s.api.SharePost(ctx, a, posts[0]).OK() {
		shared++
	}
	return fmt.Sprintf("%s: signed (+%d myb), read %d, liked %d, shared %d",
		name, points, read, liked, shared), nil
}
