package quota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/tabloom-cli/internal/apperr"
	"github.com/KaramelBytes/tabloom-cli/internal/utils"
)

// Options configures a FileStore.
type Options struct {
	// FreeUploadLimit is the number of uploads allowed on the free plan.
	FreeUploadLimit int
	// PremiumDays is the validity of an upgrade.
	PremiumDays int
	// PaymentSecret verifies upgrade signatures. Empty disables upgrades.
	PaymentSecret string
	Log           logrus.FieldLogger
	// Now overrides the clock in tests.
	Now func() time.Time
}

// FileStore persists accounts in a single JSON file.
type FileStore struct {
	path string
	opt  Options
	mu   sync.Mutex
}

type accountsFile struct {
	Accounts map[string]*Account `json:"accounts"`
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string, opt Options) *FileStore {
	if opt.FreeUploadLimit < 0 {
		opt.FreeUploadLimit = 0
	}
	if opt.PremiumDays <= 0 {
		opt.PremiumDays = 90
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	if opt.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opt.Log = l
	}
	return &FileStore{path: path, opt: opt}
}

var _ Gate = (*FileStore)(nil)

// Account returns the account of userID, creating a free one if unknown.
func (s *FileStore) Account(_ context.Context, userID string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out *Account
	err := s.update(userID, func(a *Account) bool {
		out = a
		return false
	})
	return out, err
}

// CanUpload reports whether userID may upload now. Unknown users are
// initialized and allowed.
func (s *FileStore) CanUpload(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ok bool
	err := s.update(userID, func(a *Account) bool {
		ok = a.Plan == "" || a.EffectivePlan(s.opt.Now()) == PlanPremium || a.UploadCount < s.opt.FreeUploadLimit
		return false
	})
	return ok, err
}

// RecordUpload increments the upload counter of userID.
func (s *FileStore) RecordUpload(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(userID, func(a *Account) bool {
		now := s.opt.Now().UTC()
		a.UploadCount++
		a.LastUploadAt = &now
		s.opt.Log.WithFields(logrus.Fields{"user_id": a.UserID, "uploads": a.UploadCount}).Debug("upload recorded")
		return true
	})
}

// Upgrade verifies proof and moves userID to premium for PremiumDays.
func (s *FileStore) Upgrade(_ context.Context, userID string, proof Proof) (*Account, error) {
	if err := proof.Validate(); err != nil {
		return nil, err
	}
	if s.opt.PaymentSecret == "" {
		return nil, apperr.External("payment", errors.New("payment verification is not configured"))
	}
	if !VerifySignature(s.opt.PaymentSecret, proof) {
		return nil, apperr.Validation("signature", "payment signature does not match")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out *Account
	err := s.update(userID, func(a *Account) bool {
		now := s.opt.Now().UTC()
		until := now.Add(time.Duration(s.opt.PremiumDays) * 24 * time.Hour)
		a.Plan = PlanPremium
		a.UpgradedAt = &now
		a.PremiumUntil = &until
		a.PaymentID = proof.PaymentID
		a.OrderID = proof.OrderID
		out = a
		s.opt.Log.WithFields(logrus.Fields{"user_id": a.UserID, "until": until.Format(time.RFC3339)}).Info("account upgraded")
		return true
	})
	return out, err
}

// Downgrade returns userID to the free plan.
func (s *FileStore) Downgrade(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(userID, func(a *Account) bool {
		a.Plan = PlanFree
		a.UpgradedAt = nil
		a.PremiumUntil = nil
		return true
	})
}

// update loads the file, applies fn to the account of userID (created when
// missing) and saves when fn reports a change or the account is new.
// An account reaching fn with an empty Plan is new.
func (s *FileStore) update(userID string, fn func(a *Account) bool) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperr.Validation("user_id", "missing user id")
	}
	f, err := s.load()
	if err != nil {
		return err
	}
	a, ok := f.Accounts[userID]
	if !ok {
		a = &Account{ID: uuid.New().String(), UserID: userID, CreatedAt: s.opt.Now().UTC()}
		f.Accounts[userID] = a
	}
	changed := fn(a)
	if a.Plan == "" {
		a.Plan = PlanFree
		changed = true
	}
	if !changed {
		return nil
	}
	return s.save(f)
}

func (s *FileStore) load() (*accountsFile, error) {
	f := &accountsFile{Accounts: map[string]*Account{}}
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read accounts: %w", err)
	}
	if len(b) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(b, f); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	if f.Accounts == nil {
		f.Accounts = map[string]*Account{}
	}
	return f, nil
}

func (s *FileStore) save(f *accountsFile) error {
	if err := utils.EnsureDir(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("create accounts dir: %w", err)
	}
	b, err := utils.PrettyJSON(f)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(s.path, b)
}
