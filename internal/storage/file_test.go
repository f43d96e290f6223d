package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/and161185/mys-helper/internal/errs"
	"github.com/and161185/mys-helper/internal/model"
)

func TestFileStore_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data", "accounts.json")
	ctx := context.Background()

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	a := &model.Account{
		UID:             "100",
		Platform:        model.PlatformIOS,
		DeviceIDiOS:     "IOS-ID",
		DeviceIDAndroid: "AND-ID",
		Tokens:          model.SessionTokens{AccountID: "100", STokenV2: "v2_s", CookieToken: "c"},
		EnableGameSign:  true,
	}
	if err := s.SaveAccount(ctx, a); err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}

	// Reopen from disk.
	s2, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := s2.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 1 || got[0].UID != "100" || got[0].Tokens.STokenV2 != "v2_s" {
		t.Fatalf("loaded: %+v", got)
	}
	if !got[0].EnableGameSign {
		t.Fatalf("flags must survive the round trip")
	}
}

func TestFileStore_UpsertKeepsOrder(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "accounts.json")
	ctx := context.Background()
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	for _, uid := range []string{"a", "b", "c"} {
		if err := s.SaveAccount(ctx, &model.Account{UID: uid}); err != nil {
			t.Fatalf("save %s: %v", uid, err)
		}
	}
	// Update the middle account; order must not change.
	if err := s.SaveAccount(ctx, &model.Account{UID: "b", DeviceFP: "fp"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 3 || got[0].UID != "a" || got[1].UID != "b" || got[2].UID != "c" {
		t.Fatalf("order: %+v", got)
	}
	if got[1].DeviceFP != "fp" {
		t.Fatalf("update lost: %+v", got[1])
	}
}

func TestFileStore_LoadAllReturnsCopies(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "accounts.json")
	ctx := context.Background()
	s, _ := NewFileStore(path)
	if err := s.SaveAccount(ctx, &model.Account{UID: "a"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	first, _ := s.LoadAll(ctx)
	first[0].DeviceFP = "mutated"
	second, _ := s.LoadAll(ctx)
	if second[0].DeviceFP == "mutated" {
		t.Fatalf("LoadAll must hand out copies")
	}
}

func TestFileStore_DeleteAccount(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "accounts.json")
	ctx := context.Background()
	s, _ := NewFileStore(path)
	_ = s.SaveAccount(ctx, &model.Account{UID: "a"})

	if err := s.DeleteAccount(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteAccount(ctx, "a"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	got, _ := s.LoadAll(ctx)
	if len(got) != 0 {
		t.Fatalf("account not removed: %+v", got)
	}
}
