// Package payment checks the signature a payment gateway returns to the client
// after checkout.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

type SignatureVerifier struct {
	secret []byte
}

func NewSignatureVerifier(secret string) *SignatureVerifier {
	return &SignatureVerifier{
		secret: []byte(secret),
	}
}

// Sign returns the hex HMAC-SHA256 of "gatewayOrderId|gatewayPaymentId".
func (v *SignatureVerifier) Sign(gatewayOrderId string, gatewayPaymentId string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(gatewayOrderId + "|" + gatewayPaymentId))

	return hex.EncodeToString(mac.Sum(nil))
}

func (v *SignatureVerifier) Verify(gatewayOrderId string, gatewayPaymentId string, signature string) bool {
	expected := v.Sign(gatewayOrderId, gatewayPaymentId)

	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
