package service

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"storefront-payments/internal/core/domain"

	"github.com/shopspring/decimal"
)

// PayUSigner implements ports.GatewaySigner with the gateway's MD5 scheme.
type PayUSigner struct {
	apiKey     string
	merchantID string
}

// NewPayUSigner creates a signer for one merchant account.
func NewPayUSigner(apiKey, merchantID string) *PayUSigner {
	return &PayUSigner{apiKey: apiKey, merchantID: merchantID}
}

// FormSignature signs the redirect form:
// md5(apiKey~merchantId~referenceCode~amount~currency).
func (s *PayUSigner) FormSignature(referenceCode string, amount decimal.Decimal, currency string) string {
	return md5Hex(s.apiKey, s.merchantID, referenceCode, amount.String(), currency)
}

// VerifyNotification checks the sign of a confirmation:
// md5(apiKey~merchant_id~reference_sale~new_value~currency~state_pol).
// merchant_id is part of the signed string and must equal ours.
func (s *PayUSigner) VerifyNotification(n domain.Notification) bool {
	if n.Sign == "" || n.MerchantID != s.merchantID {
		return false
	}
	value, err := decimal.NewFromString(n.Value)
	if err != nil {
		return false
	}
	expected := md5Hex(s.apiKey, n.MerchantID, n.ReferenceCode, notificationValue(value), n.Currency, n.TransactionState)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(n.Sign))) == 1
}

// notificationValue formats value the way the gateway signs it: one decimal
// when the second decimal is zero, two otherwise.
func notificationValue(value decimal.Decimal) string {
	two := value.StringFixed(2)
	if strings.HasSuffix(two, "0") {
		return value.StringFixed(1)
	}
	return two
}

func md5Hex(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, "~")))
	return hex.EncodeToString(sum[:])
}
