// Package tasks implements the concrete per-account jobs: daily game
// sign-in, community missions and the real-time note check.
package tasks

import (
	"context"

	"go.uber.org/zap"

	"github.com/and161185/mys-helper/internal/model"
	"github.com/and161185/mys-helper/internal/platform"
	"github.com/and161185/mys-helper/internal/verify"
)

// API is the slice of the platform adapter the tasks use.
type API interface {
	GetGameRecords(ctx context.Context, a *model.Account) ([]platform.GameRecord, model.ActionStatus)
	GetSignInfo(ctx context.Context, a *model.Account, actID string, rec platform.GameRecord) (platform.SignInfo, model.ActionStatus)
	SignGame(ctx context.Context, a *model.Account, actID string, rec platform.GameRecord, chal *model.Challenge, v *model.Verification) (model.ActionStatus, *model.Challenge)
	GetMissionState(ctx context.Context, a *model.Account) (platform.MissionState, model.ActionStatus)
	SignCommunity(ctx context.Context, a *model.Account, boardID int, chal *model.Challenge, v *model.Verification) (int, model.ActionStatus, *model.Challenge)
	GetPosts(ctx context.Context, a *model.Account, boardID int) ([]string, model.ActionStatus)
	ReadPost(ctx context.Context, a *model.Account, postID string) model.ActionStatus
	LikePost(ctx context.Context, a *model.Account, postID string) model.ActionStatus
	SharePost(ctx context.Context, a *model.Account, postID string) model.ActionStatus
	GetGenshinNote(ctx context.Context, a *model.Account, rec platform.GameRecord) (platform.GenshinNote, model.ActionStatus)
	GetStarRailNote(ctx context.Context, a *model.Account, rec platform.GameRecord) (platform.StarRailNote, model.ActionStatus)
}

// Executor runs one privileged action through the verification retry loop.
type Executor interface {
	Do(ctx context.Context, a *model.Account, action verify.Action) (model.ActionStatus, *model.Challenge)
}

// Saver persists account snapshots (note state, renewed tokens).
type Saver interface {
	SaveAccount(ctx context.Context, a *model.Account) error
}

// Service bundles the collaborators the task jobs share.
type Service struct {
	api   API
	exec  Executor
	store Saver
	log   *zap.Logger
}

// New builds the task service.
func New(api API, exec Executor, store Saver, log *zap.Logger) *Service {
	return &Service{api: api, exec: exec, store: store, log: log}
}

// wantGame reports whether the account opted into a game by short name.
// An empty selection means every supported game.
func wantGame(selected []string, name string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, s := range selected {
		if s == name {
			return true
		}
	}
	return false
}
