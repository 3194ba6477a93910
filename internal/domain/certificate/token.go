package certificate

import (
	"math/rand/v2"
	"strings"
	"sync"
)

const (
	// TokenLength is the number of characters in a certificate token.
	TokenLength = 10

	// TokenAlphabet holds the 62 characters a token is drawn from.
	TokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// Generator draws certificate tokens from a non-cryptographic source.
// Tokens are not guaranteed to be unique.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator returns a Generator backed by src. A nil src uses the
// runtime's global source.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		return &Generator{}
	}
	return &Generator{rnd: rand.New(src)}
}

// Generate returns a TokenLength string over TokenAlphabet.
func (g *Generator) Generate() string {
	var sb strings.Builder
	sb.Grow(TokenLength)
	for i := 0; i < TokenLength; i++ {
		sb.WriteByte(TokenAlphabet[g.intN(len(TokenAlphabet))])
	}
	return sb.String()
}

func (g *Generator) intN(n int) int {
	if g == nil || g.rnd == nil {
		return rand.IntN(n)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.IntN(n)
}

// GenerateToken returns a random 10-character alphanumeric token.
func GenerateToken() string {
	return (*Generator)(nil).Generate()
}
