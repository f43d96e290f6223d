package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/and161185/mys-helper/internal/errs"
	"github.com/and161185/mys-helper/internal/model"
)

// fileDoc is the on-disk document. Accounts keep bind order so task runs
// iterate deterministically.
type fileDoc struct {
	Accounts []*model.Account `json:"accounts"`
}

// FileStore keeps accounts in one pretty-printed JSON file. Every mutation
// rewrites the whole file; the account count makes that cheap.
type FileStore struct {
	path string

	mu  sync.Mutex
	doc fileDoc
}

// NewFileStore opens (or initializes) the data file at path.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, &s.doc); err != nil {
		return nil, fmt.Errorf("parse data file %s: %w", path, err)
	}
	return s, nil
}

// LoadAll returns copies of every stored account.
func (s *FileStore) LoadAll(_ context.Context) ([]*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Account, len(s.doc.Accounts))
	for i, a := range s.doc.Accounts {
		cp := *a
		out[i] = &cp
	}
	return out, nil
}

// SaveAccount upserts one account and rewrites the file.
func (s *FileStore) SaveAccount(_ context.Context, a *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	replaced := false
	for i, old := range s.doc.Accounts {
		if old.UID == a.UID {
			s.doc.Accounts[i] = &cp
			replaced = true
			break
		}
	}
	if !replaced {
		s.doc.Accounts = append(s.doc.Accounts, &cp)
	}
	return s.flush()
}

// DeleteAccount removes an account and rewrites the file.
func (s *FileStore) DeleteAccount(_ context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.doc.Accounts {
		if a.UID == uid {
			s.doc.Accounts = append(s.doc.Accounts[:i], s.doc.Accounts[i+1:]...)
			return s.flush()
		}
	}
	return errs.ErrNotFound
}

func (s *FileStore) flush() error {
	b, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o600)
}
