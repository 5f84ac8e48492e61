package invites

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateCodeLengthAndCharset(t *testing.T) {
	code, err := GenerateCode(8)
	require.NoError(t, err)
	require.Len(t, code, 8)

	for _, r := range code {
		require.Contains(t, string(codeCharset), string(r))
	}
}

func TestGenerateCodeRejectsNonPositiveLength(t *testing.T) {
	_, err := GenerateCode(0)
	require.Error(t, err)
	_, err = GenerateCode(-4)
	require.Error(t, err)
}

func TestRandIntStaysUniform(t *testing.T) {
	// With a 36-rune charset, a raw byte reduced mod 36 would favor the first
	// four indices by roughly a quarter. Count how often they come up: over
	// 9000 draws the fair expectation is 1000, the biased one around 1266.
	const draws = 9000
	lowFour := 0
	for i := 0; i < draws; i++ {
		idx, err := randInt(len(codeCharset))
		require.NoError(t, err)
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, len(codeCharset))
		if idx < 4 {
			lowFour++
		}
	}
	require.Less(t, lowFour, 1150, "first charset indices drawn too often")
}

func TestGenerateCodeVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		code, err := GenerateCode(8)
		require.NoError(t, err)
		seen[code] = true
	}
	require.Greater(t, len(seen), 1, "expected distinct codes across runs")
}
