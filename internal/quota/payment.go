package quota

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/KaramelBytes/tabloom-cli/internal/apperr"
)

// Proof is the payment evidence presented for an upgrade.
type Proof struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

// Validate checks that every part of the proof is present.
func (p Proof) Validate() error {
	switch {
	case strings.TrimSpace(p.OrderID) == "":
		return apperr.Validation("order_id", "missing payment proof")
	case strings.TrimSpace(p.PaymentID) == "":
		return apperr.Validation("payment_id", "missing payment proof")
	case strings.TrimSpace(p.Signature) == "":
		return apperr.Validation("signature", "missing payment proof")
	}
	return nil
}

// Sign returns the hex HMAC-SHA256 of "orderID|paymentID" under secret.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether p carries a valid signature for secret.
func VerifySignature(secret string, p Proof) bool {
	want := Sign(secret, p.OrderID, p.PaymentID)
	got := strings.ToLower(strings.TrimSpace(p.Signature))
	return hmac.Equal([]byte(want), []byte(got))
}
