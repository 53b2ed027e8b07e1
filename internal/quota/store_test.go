package quota

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabloom-cli/internal/apperr"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newStore(t *testing.T, c *clock) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "state", "accounts.json"), Options{
		FreeUploadLimit: 1,
		PremiumDays:     90,
		PaymentSecret:   "s3cret",
		Now:             c.now,
	})
}

func TestFreePlanAllowsOneUpload(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)})

	ok, err := s.CanUpload(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok, "unknown user may upload")

	require.NoError(t, s.RecordUpload(ctx, "u1"))
	ok, err = s.CanUpload(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	a, err := s.Account(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, PlanFree, a.Plan)
	assert.Equal(t, 1, a.UploadCount)
	assert.NotEmpty(t, a.ID)
}

func TestUpgradeAndExpiry(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := newStore(t, c)
	require.NoError(t, s.RecordUpload(ctx, "u1"))

	proof := Proof{OrderID: "order_1", PaymentID: "pay_1", Signature: Sign("s3cret", "order_1", "pay_1")}
	a, err := s.Upgrade(ctx, "u1", proof)
	require.NoError(t, err)
	assert.Equal(t, PlanPremium, a.Plan)
	require.NotNil(t, a.PremiumUntil)
	assert.Equal(t, c.t.Add(90*24*time.Hour), *a.PremiumUntil)

	ok, err := s.CanUpload(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	c.t = c.t.Add(91 * 24 * time.Hour)
	ok, err = s.CanUpload(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok, "expired premium counts as free")

	require.NoError(t, s.Downgrade(ctx, "u1"))
	a, err = s.Account(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, PlanFree, a.Plan)
	assert.Nil(t, a.PremiumUntil)
}

func TestUpgradeRejectsBadProof(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, &clock{t: time.Now()})

	_, err := s.Upgrade(ctx, "u1", Proof{OrderID: "o", PaymentID: "p"})
	assert.True(t, apperr.IsValidation(err))

	_, err = s.Upgrade(ctx, "u1", Proof{OrderID: "o", PaymentID: "p", Signature: "deadbeef"})
	assert.True(t, apperr.IsValidation(err))

	a, err := s.Account(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, PlanFree, a.Plan)
}

func TestMissingUserID(t *testing.T) {
	s := newStore(t, &clock{t: time.Now()})
	_, err := s.CanUpload(context.Background(), "  ")
	assert.True(t, apperr.IsValidation(err))
}

func TestVerifySignature(t *testing.T) {
	sig := Sign("k", "o", "p")
	assert.Len(t, sig, 64)
	assert.True(t, VerifySignature("k", Proof{OrderID: "o", PaymentID: "p", Signature: sig}))
	assert.False(t, VerifySignature("other", Proof{OrderID: "o", PaymentID: "p", Signature: sig}))
}
