package tasks

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/and161185/mys-helper/internal/model"
	"github.com/and161185/mys-helper/internal/platform"
	"github.com/and161185/mys-helper/internal/verify"
)

type fakeAPI struct {
	records   []platform.GameRecord
	recordsSt model.ActionStatus

	signInfo   platform.SignInfo
	signInfoSt model.ActionStatus

	signSt    model.ActionStatus
	signCalls int

	missionStates []platform.MissionState
	missionIdx    int
	missionSt     model.ActionStatus

	communityPoints int
	communitySt     model.ActionStatus

	posts   []string
	postsSt model.ActionStatus

	readCalls, likeCalls, shareCalls int

	genshinNote platform.GenshinNote
	genshinSt   model.ActionStatus

	starRailNote platform.StarRailNote
	starRailSt   model.ActionStatus
}

func (f *fakeAPI) GetGameRecords(context.Context, *model.Account) ([]platform.GameRecord, model.ActionStatus) {
	return f.records, f.recordsSt
}

func (f *fakeAPI) GetSignInfo(context.Context, *model.Account, string, platform.GameRecord) (platform.SignInfo, model.ActionStatus) {
	return f.signInfo, f.signInfoSt
}

func (f *fakeAPI) SignGame(context.Context, *model.Account, string, platform.GameRecord, *model.Challenge, *model.Verification) (model.ActionStatus, *model.Challenge) {
	f.signCalls++
	return f.signSt, nil
}

func (f *fakeAPI) GetMissionState(context.Context, *model.Account) (platform.MissionState, model.ActionStatus) {
	if f.missionIdx >= len(f.missionStates) {
		return platform.MissionState{}, f.missionSt
	}
	st := f.missionStates[f.missionIdx]
	f.missionIdx++
	return st, f.missionSt
}

func (f *fakeAPI) SignCommunity(context.Context, *model.Account, int, *model.Challenge, *model.Verification) (int, model.ActionStatus, *model.Challenge) {
	return f.communityPoints, f.communitySt, nil
}

func (f *fakeAPI) GetPosts(context.Context, *model.Account, int) ([]string, model.ActionStatus) {
	return f.posts, f.postsSt
}

func (f *fakeAPI) ReadPost(context.Context, *model.Account, string) model.ActionStatus {
	f.readCalls++
	return model.StatusOK()
}

func (f *fakeAPI) LikePost(context.Context, *model.Account, string) model.ActionStatus {
	f.likeCalls++
	return model.StatusOK()
}

func (f *fakeAPI) SharePost(context.Context, *model.Account, string) model.ActionStatus {
	f.shareCalls++
	return model.StatusOK()
}

func (f *fakeAPI) GetGenshinNote(context.Context, *model.Account, platform.GameRecord) (platform.GenshinNote, model.ActionStatus) {
	return f.genshinNote, f.genshinSt
}

func (f *fakeAPI) GetStarRailNote(context.Context, *model.Account, platform.GameRecord) (platform.StarRailNote, model.ActionStatus) {
	return f.starRailNote, f.starRailSt
}

// passExec invokes the action once without any verification handling.
type passExec struct{}

func (passExec) Do(ctx context.Context, _ *model.Account, action verify.Action) (model.ActionStatus, *model.Challenge) {
	return action(ctx, nil, nil)
}

type memStore struct {
	saves int
}

func (m *memStore) SaveAccount(context.Context, *model.Account) error {
	m.saves++
	return nil
}

func okAPI() *fakeAPI {
	return &fakeAPI{
		records: []platform.GameRecord{
			{GameID: platform.GameIDGenshin, Region: "cn_gf01", RoleID: "7000", Nickname: "Trav"},
			{GameID: platform.GameIDStarRail, Region: "prod_gf_cn", RoleID: "8000", Nickname: "Blazer"},
		},
		recordsSt:   model.StatusOK(),
		signInfoSt:  model.StatusOK(),
		signSt:      model.StatusOK(),
		missionSt:   model.StatusOK(),
		communitySt: model.StatusOK(),
		postsSt:     model.StatusOK(),
		genshinSt:   model.StatusOK(),
		starRailSt:  model.StatusOK(),
	}
}

func newTestService(api *fakeAPI) (*Service, *memStore) {
	store := &memStore{}
	return New(api, passExec{}, store, zap.NewNop()), store
}

func TestGameSign_SignsSelectedGames(t *testing.T) {
	t.Parallel()

	api := okAPI()
	svc, _ := newTestService(api)
	a := &model.Account{UID: "1", SignGames: []string{"genshin"}}

	line, err := svc.GameSign(context.Background(), a)
	if err != nil {
		t.Fatalf("GameSign: %v", err)
	}
	if api.signCalls != 1 {
		t.Fatalf("only the selected game signs: %d calls", api.signCalls)
	}
	if !strings.Contains(line, "genshin Trav: signed") {
		t.Fatalf("line: %q", line)
	}
	if strings.Contains(line, "starrail") {
		t.Fatalf("unselected game must not appear: %q", line)
	}
}

func TestGameSign_AlreadySigned(t *testing.T) {
	t.Parallel()

	api := okAPI()
	api.signInfo = platform.SignInfo{IsSign: true, TotalSignDay: 7}
	svc, _ := newTestService(api)

	line, err := svc.GameSign(context.Background(), &model.Account{UID: "1"})
	if err != nil {
		t.Fatalf("GameSign: %v", err)
	}
	if api.signCalls != 0 {
		t.Fatalf("already-signed games must not sign again: %d", api.signCalls)
	}
	if !strings.Contains(line, "already signed (day 7)") {
		t.Fatalf("line: %q", line)
	}
}

func TestGameSign_VerificationUnresolvedFails(t *testing.T) {
	t.Parallel()

	api := okAPI()
	api.signSt = model.ActionStatus{NeedVerify: true}
	svc, _ := newTestService(api)

	_, err := svc.GameSign(context.Background(), &model.Account{UID: "1"})
	if err == nil || !strings.Contains(err.Error(), "verification unresolved") {
		t.Fatalf("want verification error, got %v", err)
	}
}

func TestGameSign_LoginExpired(t *testing.T) {
	t.Parallel()

	api := okAPI()
	api.recordsSt = model.ActionStatus{LoginExpired: true}
	svc, _ := newTestService(api)

	_, err := svc.GameSign(context.Background(), &model.Account{UID: "1"})
	if err != ErrLoginExpired {
		t.Fatalf("want ErrLoginExpired, got %v", err)
	}
}

func TestMission_ReportsPointsDelta(t *testing.T) {
	t.Parallel()

	api := okAPI()
	api.missionStates = []platform.MissionState{
		{TotalPoints: 100},
		{TotalPoints: 165},
	}
	api.communityPoints = 40
	api.posts = []string{"p1", "p2", "p3", "p4", "p5", "p6"}
	svc, _ := newTestService(api)

	a := &model.Account{UID: "1", MissionGames: []string{"genshin"}}
	line, err := svc.Mission(context.Background(), a)
	if err != nil {
		t.Fatalf("Mission: %v", err)
	}
	if !strings.Contains(line, "genshin: signed (+40 myb)") {
		t.Fatalf("line: %q", line)
	}
	if !strings.Contains(line, "myb 100 -> 165 (+65)") {
		t.Fatalf("delta line: %q", line)
	}
	if api.readCalls != missionReadCount || api.likeCalls != missionLikeCount || api.shareCalls != 1 {
		t.Fatalf("interactions: read=%d like=%d share=%d", api.readCalls, api.likeCalls, api.shareCalls)
	}
}

func TestMission_SkipsWhenAlreadyComplete(t *testing.T) {
	t.Parallel()

	api := okAPI()
	api.missionStates = []platform.MissionState{{
		TotalPoints: 200,
		Missions:    []platform.MissionMeta{{Key: "continuous_sign", Threshold: 1}},
		Progress:    map[string]int{"continuous_sign": 1},
	}}
	svc, _ := newTestService(api)

	line, err := svc.Mission(context.Background(), &model.Account{UID: "1"})
	if err != nil {
		t.Fatalf("Mission: %v", err)
	}
	if !strings.Contains(line, "missions already complete, myb 200") {
		t.Fatalf("line: %q", line)
	}
	if api.readCalls != 0 || api.likeCalls != 0 || api.shareCalls != 0 {
		t.Fatalf("no interactions may run when complete")
	}
}

func TestNoteCheck_ThresholdNoticesFireOnce(t *testing.T) {
	t.Parallel()

	api := okAPI()
	api.records = api.records[:1] // genshin only
	api.genshinNote = platform.GenshinNote{CurrentResin: 155, MaxResin: 200, MaxHomeCoin: 2400}
	svc, store := newTestService(api)

	a := &model.Account{UID: "1", ResinThreshold: 150}
	line, err := svc.NoteCheck(context.Background(), a)
	if err != nil {
		t.Fatalf("NoteCheck: %v", err)
	}
	if !strings.Contains(line, "NOTICE: resin reached 150") {
		t.Fatalf("first check must notice: %q", line)
	}
	if !a.Notice.ResinReached {
		t.Fatalf("notice state must record the announcement")
	}
	if store.saves != 1 {
		t.Fatalf("state must be persisted: %d saves", store.saves)
	}

	// Same level again: no repeated notice.
	line, err = svc.NoteCheck(context.Background(), a)
	if err != nil {
		t.Fatalf("NoteCheck: %v", err)
	}
	if strings.Contains(line, "NOTICE") {
		t.Fatalf("second check must not repeat the notice: %q", line)
	}

	// Dropping below the threshold re-arms the notice.
	api.genshinNote.CurrentResin = 10
	if _, err := svc.NoteCheck(context.Background(), a); err != nil {
		t.Fatalf("NoteCheck: %v", err)
	}
	if a.Notice.ResinReached {
		t.Fatalf("notice state must reset below the threshold")
	}
}

func TestNoteCheck_StarRailStaminaFull(t *testing.T) {
	t.Parallel()

	api := okAPI()
	api.records = api.records[1:] // starrail only
	api.starRailNote = platform.StarRailNote{CurrentStamina: 240, MaxStamina: 240}
	svc, _ := newTestService(api)

	a := &model.Account{UID: "1"}
	line, err := svc.NoteCheck(context.Background(), a)
	if err != nil {
		t.Fatalf("NoteCheck: %v", err)
	}
	if !strings.Contains(line, "NOTICE: stamina is full") {
		t.Fatalf("line: %q", line)
	}
	if !a.Notice.StaminaFull {
		t.Fatalf("full notice must be recorded")
	}
}
