// internal/game/codes.go
package game

import (
	"math/rand"
	"time"
)

// codeAlphabet excludes easily-confused glyphs (I, O, 0, 1).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 4

var codeRand = rand.New(rand.NewSource(time.Now().UnixNano()))

// newCode returns a random 4-character room code. Uniqueness among live rooms
// is the store's job.
func newCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[codeRand.Intn(len(codeAlphabet))]
	}
	return string(b)
}
