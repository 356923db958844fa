package types

import (
	"fmt"
	"strings"
)

// CycleLength is the number of tokens in a closed triangular swap path.
const CycleLength = 4

// Token identifies an ERC20 token, normally by its checksummed address.
type Token string

// String returns the token identifier.
func (t Token) String() string {
	return string(t)
}

// Short returns the first 8 characters of the identifier (0x + 6 hex digits for addresses).
func (t Token) Short() string {
	if len(t) <= 8 {
		return string(t)
	}
	return string(t[:8])
}

// SwapPath is a directed cycle start -> hop1 -> hop2 -> start.
// It is immutable after construction.
type SwapPath struct {
	tokens [CycleLength]Token
}

// NewCycle builds the closed path a -> b -> c -> a.
func NewCycle(a, b, c Token) SwapPath {
	return SwapPath{tokens: [CycleLength]Token{a, b, c, a}}
}

// Tokens returns a copy of the path as a slice, suitable for router calls.
func (p SwapPath) Tokens() []Token {
	out := make([]Token, CycleLength)
	copy(out, p.tokens[:])
	return out
}

// Start returns the token the cycle begins and ends with.
func (p SwapPath) Start() Token {
	return p.tokens[0]
}

// Len returns the number of tokens in the path.
func (p SwapPath) Len() int {
	return CycleLength
}

// IsZero reports whether the path was never constructed.
func (p SwapPath) IsZero() bool {
	return p.tokens[0] == ""
}

// Validate checks that the path is closed and visits three distinct tokens.
func (p SwapPath) Validate() error {
	if p.tokens[0] != p.tokens[CycleLength-1] {
		return fmt.Errorf("path not closed: starts at %s, ends at %s", p.tokens[0], p.tokens[CycleLength-1])
	}

	a, b, c := p.tokens[0], p.tokens[1], p.tokens[2]
	if a == "" || b == "" || c == "" {
		return fmt.Errorf("path has empty token")
	}
	if a == b || b == c || a == c {
		return fmt.Errorf("path hops not distinct: %s", p)
	}

	return nil
}

// Equal reports whether two paths visit the same tokens in the same order.
func (p SwapPath) Equal(other SwapPath) bool {
	return p.tokens == other.tokens
}

// String renders the path as "A→B→C→A" using full identifiers.
func (p SwapPath) String() string {
	parts := make([]string, CycleLength)
	for i, t := range p.tokens {
		parts[i] = string(t)
	}
	return strings.Join(parts, "→")
}

// Format renders the path with a custom label for each token.
func (p SwapPath) Format(label func(Token) string) string {
	parts := make([]string, CycleLength)
	for i, t := range p.tokens {
		parts[i] = label(t)
	}
	return strings.Join(parts, "→")
}

// ToStrings converts tokens to plain strings.
func ToStrings(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = string(t)
	}
	return out
}
