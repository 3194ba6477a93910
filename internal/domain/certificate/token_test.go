package certificate

import (
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken_Shape(t *testing.T) {
	for i := 0; i < 1000; i++ {
		token := GenerateToken()
		require.Len(t, token, TokenLength)
		for _, c := range token {
			require.Truef(t, strings.ContainsRune(TokenAlphabet, c), "unexpected character %q in %q", c, token)
		}
	}
}

func TestTokenAlphabet(t *testing.T) {
	assert.Len(t, TokenAlphabet, 62)

	seen := make(map[rune]bool)
	for _, c := range TokenAlphabet {
		assert.Falsef(t, seen[c], "duplicate character %q", c)
		seen[c] = true
	}
}

func TestGenerator_SeededIsDeterministic(t *testing.T) {
	a := NewGenerator(rand.NewPCG(1, 2))
	b := NewGenerator(rand.NewPCG(1, 2))

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Generate(), b.Generate())
	}
}

func TestGenerator_CoversAlphabet(t *testing.T) {
	g := NewGenerator(rand.NewPCG(7, 11))

	seen := make(map[byte]bool)
	for i := 0; i < 2000; i++ {
		token := g.Generate()
		for j := 0; j < len(token); j++ {
			seen[token[j]] = true
		}
	}
	assert.Len(t, seen, len(TokenAlphabet))
}

func TestGenerator_Concurrent(t *testing.T) {
	g := NewGenerator(rand.NewPCG(3, 4))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Len(t, g.Generate(), TokenLength)
			}
		}()
	}
	wg.Wait()
}
