package hashutil

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/valyala/fastrand"
)

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ShareCode produces a 4-character base-36 game code seeded from the current
// time. Codes are compared case-insensitively, so the caller may accept lower
// case input.
func ShareCode() (string, error) {
	h := fnv.New32a()
	bytes, err := time.Now().MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("hash binary encode error: %w", err)
	}

	if _, err := h.Write(bytes); err != nil {
		return "", fmt.Errorf("hash write error: %w", err)
	}

	n := h.Sum32() ^ fastrand.Uint32()
	var sb strings.Builder
	for i := 0; i < 4; i++ {
		sb.WriteByte(codeAlphabet[n%36])
		n /= 36
	}

	return sb.String(), nil
}

// NormalizeCode upper-cases and trims a user-entered share code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
