package evidence

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"path"
	"regexp"
	"strings"
	"time"
)

const (
	keyTokenLength    = 12
	maxSanitizedBytes = 50
)

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

var (
	unsafeChars  = regexp.MustCompile(`[^A-Za-z0-9-_]`)
	repeatedDash = regexp.MustCompile(`-+`)
)

// GenerateKey derives a collision-resistant storage key from an original
// filename and a logical folder. The basename is sanitized and truncated, the
// extension is preserved unchanged, and a millisecond timestamp plus a random
// token keep concurrently generated keys for identical names from colliding.
func GenerateKey(originalName, folder string) string {
	ext := path.Ext(originalName)
	base := strings.TrimSuffix(originalName, ext)

	sanitized := unsafeChars.ReplaceAllString(base, "-")
	sanitized = repeatedDash.ReplaceAllString(sanitized, "-")
	if len(sanitized) > maxSanitizedBytes {
		sanitized = sanitized[:maxSanitizedBytes]
	}

	return fmt.Sprintf("%s/%d-%s-%s%s",
		folder,
		time.Now().UnixMilli(),
		randomToken(keyTokenLength),
		sanitized,
		ext,
	)
}

func randomToken(n int) string {
	alphabetLen := big.NewInt(int64(len(tokenAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken;
			// a timestamp-derived character still keeps the key usable.
			b[i] = tokenAlphabet[time.Now().UnixNano()%int64(len(tokenAlphabet))]
			continue
		}
		b[i] = tokenAlphabet[idx.Int64()]
	}
	return string(b)
}
