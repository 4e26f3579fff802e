package helpers

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// GenOTPCode returns a random six-digit verification code, zero-padded.
func GenOTPCode() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// a failing entropy source must never yield a guessable code
		panic(err)
	}
	return fmt.Sprintf("%06d", binary.BigEndian.Uint32(b)%1000000)
}
