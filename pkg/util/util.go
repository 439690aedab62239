package util

import (
	"crypto/rand"
	"math/big"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// RandomString returns n random characters from [0-9a-z].
func RandomString(n int) string {
	out := make([]byte, n)
	max := big.NewInt(int64(len(base36)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			out[i] = base36[0]
			continue
		}
		out[i] = base36[idx.Int64()]
	}
	return string(out)
}
