package invites

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Invite codes are uppercase alphanumerics so they survive being read aloud or
// typed from a screenshot.
var codeCharset = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// GenerateCode produces a random invite code of the requested length.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	result := make([]rune, length)
	for i := 0; i < length; i++ {
		idx, err := randInt(len(codeCharset))
		if err != nil {
			return "", err
		}
		result[i] = codeCharset[idx]
	}
	return string(result), nil
}

// randInt draws a uniform value in [0, max); rand.Int avoids the modulo bias a
// raw byte mod would introduce.
func randInt(max int) (int, error) {
	if max <= 0 {
		return 0, fmt.Errorf("invalid max %d", max)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}
