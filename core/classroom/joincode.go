package classroom

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

const joinCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var generateJoinCode = randomJoinCode // mockable

// randomJoinCode draws n characters uniformly from joinCodeAlphabet.
func randomJoinCode(n int) (string, error) {
	max := big.NewInt(int64(len(joinCodeAlphabet)))
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Wrap(err, "reading random source")
		}
		sb.WriteByte(joinCodeAlphabet[idx.Int64()])
	}
	return sb.String(), nil
}

func NormalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
