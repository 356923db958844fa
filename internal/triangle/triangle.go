package triangle

import "github.com/mselser95/triarb-tracker/pkg/types"

// Triangle is an unordered set of three distinct tokens, stored in token-list order.
type Triangle [3]types.Token

// Tokens returns the triangle members as a slice.
func (t Triangle) Tokens() []types.Token {
	return []types.Token{t[0], t[1], t[2]}
}

// Enumerate returns every 3-element subset of tokens exactly once, in
// lexicographic index order (i < j < k). The input is assumed to be free of duplicates.
func Enumerate(tokens []types.Token) []Triangle {
	n := len(tokens)
	if n < 3 {
		return nil
	}

	out := make([]Triangle, 0, Count(n))
	for i := 0; i < n-2; i++ {
		for j := i + 1; j < n-1; j++ {
			for k := j + 1; k < n; k++ {
				out = append(out, Triangle{tokens[i], tokens[j], tokens[k]})
			}
		}
	}

	return out
}

// Count returns C(n, 3).
func Count(n int) int {
	if n < 3 {
		return 0
	}
	return n * (n - 1) * (n - 2) / 6
}
