package identity

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrMalformedAuthor is returned for author strings without a <email> part.
var ErrMalformedAuthor = errors.New("malformed author")

// Resolver maps a raw "name <email>" author to the key used in tallies.
type Resolver interface {
	Resolve(raw string, when time.Time) (string, error)
}

// ExtractEmail returns the text between the first '<' and the following '>'.
func ExtractEmail(raw string) (string, error) {
	open := strings.IndexByte(raw, '<')
	if open < 0 {
		return "", fmt.Errorf("%w: %q has no '<'", ErrMalformedAuthor, raw)
	}
	rest := raw[open+1:]
	end := strings.IndexByte(rest, '>')
	if end < 0 {
		return "", fmt.Errorf("%w: %q has no closing '>'", ErrMalformedAuthor, raw)
	}
	email := strings.TrimSpace(rest[:end])
	if email == "" {
		return "", fmt.Errorf("%w: %q has an empty email", ErrMalformedAuthor, raw)
	}
	return email, nil
}

// AbnormalAuthor is a raw email that was remapped, with the time of its
// most recent commit.
type AbnormalAuthor struct {
	Raw       string
	Canonical string
	LastSeen  time.Time
}

// Normalizer resolves authors to canonical emails through an alias table
// and records every raw email that needed remapping. The ledger spans the
// whole run.
type Normalizer struct {
	aliases map[string]string
	ledger  map[string]*AbnormalAuthor
	logger  zerolog.Logger
}

// NewNormalizer creates a normalizer over aliases (raw email -> canonical email).
func NewNormalizer(aliases map[string]string, logger zerolog.Logger) *Normalizer {
	copied := make(map[string]string, len(aliases))
	for k, v := range aliases {
		copied[k] = v
	}
	return &Normalizer{
		aliases: copied,
		ledger:  make(map[string]*AbnormalAuthor),
		logger:  logger,
	}
}

// Resolve extracts the email from raw and returns its canonical form.
func (n *Normalizer) Resolve(raw string, when time.Time) (string, error) {
	email, err := ExtractEmail(raw)
	if err != nil {
		return "", err
	}

	canonical, ok := n.aliases[email]
	if !ok {
		return email, nil
	}

	n.logger.Debug().Str("raw", email).Str("canonical", canonical).Msg("author remapped")
	if entry, seen := n.ledger[email]; seen {
		if when.After(entry.LastSeen) {
			entry.LastSeen = when
		}
	} else {
		n.ledger[email] = &AbnormalAuthor{Raw: email, Canonical: canonical, LastSeen: when}
	}
	return canonical, nil
}

// Ledger returns the remapped authors sorted by raw email.
func (n *Normalizer) Ledger() []AbnormalAuthor {
	out := make([]AbnormalAuthor, 0, len(n.ledger))
	for _, e := range n.ledger {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Raw < out[j].Raw })
	return out
}

// Passthrough keeps the raw author string as the tally key.
type Passthrough struct{}

func (Passthrough) Resolve(raw string, _ time.Time) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty author", ErrMalformedAuthor)
	}
	return raw, nil
}

// Compile-time interface conformance checks.
var (
	_ Resolver = (*Normalizer)(nil)
	_ Resolver = Passthrough{}
)
