package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/tabloom-cli/internal/apperr"
	"github.com/KaramelBytes/tabloom-cli/internal/quota"
	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// Session binds a user to the snapshot slot and the upload gate.
type Session struct {
	UserID string
	Gate   quota.Gate
	Store  *Store
	Log    logrus.FieldLogger
	// Now overrides the clock in tests.
	Now func() time.Time
}

// New returns a Session. A nil logger discards output.
func New(userID string, gate quota.Gate, store *Store, log logrus.FieldLogger) *Session {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Session{UserID: userID, Gate: gate, Store: store, Log: log, Now: time.Now}
}

// UploadResult reports the outcome of an upload. QuotaExceeded is a
// blocking state, not an error: nothing was stored.
type UploadResult struct {
	QuotaExceeded bool
	Snapshot      *Snapshot
}

// Current returns the working snapshot.
func (s *Session) Current() (*Snapshot, error) {
	return s.Store.Load()
}

// Upload replaces the working table with t when the gate allows it and
// records the upload. A failing gate leaves the slot untouched.
func (s *Session) Upload(ctx context.Context, t *table.Table, source string) (UploadResult, error) {
	log := s.Log.WithFields(logrus.Fields{"user_id": s.UserID, "source": source})
	ok, err := s.Gate.CanUpload(ctx, s.UserID)
	if err != nil {
		if apperr.IsValidation(err) {
			return UploadResult{}, err
		}
		return UploadResult{}, apperr.External("quota service", err)
	}
	if !ok {
		log.Info("upload blocked by quota")
		return UploadResult{QuotaExceeded: true}, nil
	}

	snap := s.snapshot(t, source, nil)
	if err := s.Store.Save(snap); err != nil {
		return UploadResult{}, fmt.Errorf("store snapshot: %w", err)
	}
	if err := s.Gate.RecordUpload(ctx, s.UserID); err != nil {
		return UploadResult{Snapshot: snap}, apperr.External("quota service", err)
	}
	log.WithFields(logrus.Fields{"rows": t.Len(), "columns": len(t.Columns)}).Info("dataset uploaded")
	return UploadResult{Snapshot: snap}, nil
}

// Step is a pure table rewrite.
type Step func(*table.Table) (*table.Table, error)

// Apply runs step on the working table and stores the result. On error the
// slot keeps the last good table.
func (s *Session) Apply(name string, step Step) (*Snapshot, error) {
	cur, err := s.Current()
	if err != nil {
		return nil, err
	}
	next, err := step(cur.Table)
	if err != nil {
		s.Log.WithError(err).WithField("step", name).Debug("step failed")
		return nil, err
	}
	if next == nil {
		return nil, errors.New("step returned no table")
	}
	steps := append(append([]string(nil), cur.Steps...), name)
	snap := s.snapshot(next, cur.Source, steps)
	if err := s.Store.Save(snap); err != nil {
		return nil, fmt.Errorf("store snapshot: %w", err)
	}
	s.Log.WithFields(logrus.Fields{"step": name, "rows": next.Len(), "columns": len(next.Columns)}).Debug("step applied")
	return snap, nil
}

func (s *Session) snapshot(t *table.Table, source string, steps []string) *Snapshot {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return &Snapshot{ID: uuid.NewString(), SavedAt: now().UTC(), Source: source, Steps: steps, Table: t}
}
