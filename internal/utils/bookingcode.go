package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// BookingCodeGenerator issues the human-readable booking codes customers see
// at pickup. Codes are immutable once issued; the HMAC tag keeps them
// non-guessable without a counter.
type BookingCodeGenerator struct {
	secret string
}

func NewBookingCodeGenerator(secret string) *BookingCodeGenerator {
	return &BookingCodeGenerator{secret: secret}
}

func (g *BookingCodeGenerator) Generate(renterID int64) string {
	nonce := uuid.NewString()

	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write([]byte(fmt.Sprintf("renter:%d|nonce:%s", renterID, nonce)))

	sum := mac.Sum(nil)
	tag := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(sum)

	return fmt.Sprintf(
		"CYC-%s-%s",
		strings.ToUpper(tag[:4]),
		strings.ToUpper(uuid.NewString()[:4]),
	)
}
