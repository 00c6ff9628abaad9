package util

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// Serial codes avoid 0/O and 1/I so they survive being read aloud or typed
// from a printed certificate.
const serialAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// GenerateSerialCode returns a certificate serial like "VA-7KQ2-M9RT".
func GenerateSerialCode() (string, error) {
	var builder strings.Builder
	builder.WriteString("VA")
	for _, group := range []int{4, 4} {
		builder.WriteByte('-')
		for i := 0; i < group; i++ {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(serialAlphabet))))
			if err != nil {
				return "", err
			}
			builder.WriteByte(serialAlphabet[n.Int64()])
		}
	}
	return builder.String(), nil
}
