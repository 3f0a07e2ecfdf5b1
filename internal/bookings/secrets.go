package bookings

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

var otpSpan = big.NewInt(900000)

// GenerateOTP returns a uniform 6-digit code in 100000..999999.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpan)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// GenerateQRHash returns 32 random bytes as lowercase hex.
func GenerateQRHash() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// GenerateBookingReference builds TXN_<unix>_<8 uppercase hex>.
func GenerateBookingReference(now time.Time) string {
	shortUUID := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("TXN_%d_%s", now.Unix(), strings.ToUpper(shortUUID))
}
