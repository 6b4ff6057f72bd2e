package identity

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"pgregory.net/rapid"
)

// Canonical emails are never themselves remapped, so normalizing an already
// normalized author returns it unchanged.
func TestNormalizer_Idempotent_Rapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		canon := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z]{1,8}@corp\.example`), 1, 5, rapid.ID[string]).Draw(t, "canonical")
		raws := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z]{1,8}@home\.example`), 0, 8, rapid.ID[string]).Draw(t, "raw")

		aliases := make(map[string]string, len(raws))
		for i, r := range raws {
			aliases[r] = canon[i%len(canon)]
		}
		n := NewNormalizer(aliases, zerolog.Nop())

		email := rapid.SampledFrom(append(append([]string{}, canon...), raws...)).Draw(t, "email")
		once, err := n.Resolve(fmt.Sprintf("Dev <%s>", email), time.Time{})
		if err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
		twice, err := n.Resolve(fmt.Sprintf("Dev <%s>", once), time.Time{})
		if err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
		if once != twice {
			t.Fatalf("normalize twice = %q, once = %q", twice, once)
		}
	})
}
