package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const TTL = 10 * time.Minute

// Generate returns a 6-digit numeric code in [100000, 999999].
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Expiry returns the expiry timestamp for a code issued at now.
func Expiry(now time.Time) time.Time {
	return now.Add(TTL)
}
