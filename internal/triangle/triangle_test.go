package triangle

import (
	"fmt"
	"testing"

	"github.com/mselser95/triarb-tracker/pkg/types"
)

func makeTokens(n int) []types.Token {
	tokens := make([]types.Token, n)
	for i := range tokens {
		tokens[i] = types.Token(fmt.Sprintf("T%02d", i))
	}
	return tokens
}

func TestEnumerate_Count(t *testing.T) {
	for n := 0; n <= 12; n++ {
		t.Run(fmt.Sprintf("n-%d", n), func(t *testing.T) {
			got := Enumerate(makeTokens(n))
			if len(got) != Count(n) {
				t.Errorf("Enumerate(%d tokens) returned %d triangles, want %d", n, len(got), Count(n))
			}
		})
	}
}

func TestEnumerate_DistinctSubsets(t *testing.T) {
	tokens := makeTokens(8)
	inInput := make(map[types.Token]bool, len(tokens))
	for _, tok := range tokens {
		inInput[tok] = true
	}

	seen := make(map[[3]types.Token]bool)
	for _, tri := range Enumerate(tokens) {
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2] {
			t.Fatalf("triangle has repeated token: %v", tri)
		}

		for _, tok := range tri {
			if !inInput[tok] {
				t.Fatalf("triangle contains token not in input: %s", tok)
			}
		}

		// Canonical key independent of member order
		key := [3]types.Token(tri)
		sortThree(&key)
		if seen[key] {
			t.Fatalf("duplicate triangle: %v", tri)
		}
		seen[key] = true
	}
}

func TestEnumerate_DeterministicOrder(t *testing.T) {
	got := Enumerate([]types.Token{"A", "B", "C", "D"})
	want := []Triangle{
		{"A", "B", "C"},
		{"A", "B", "D"},
		{"A", "C", "D"},
		{"B", "C", "D"},
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d triangles, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("triangle %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestEnumerate_DoesNotMutateInput(t *testing.T) {
	tokens := []types.Token{"C", "A", "B"}
	_ = Enumerate(tokens)

	if tokens[0] != "C" || tokens[1] != "A" || tokens[2] != "B" {
		t.Errorf("input mutated: %v", tokens)
	}
}

func TestTriangle_Tokens(t *testing.T) {
	tri := Triangle{"A", "B", "C"}
	got := tri.Tokens()
	if len(got) != 3 || got[0] != "A" || got[2] != "C" {
		t.Errorf("unexpected tokens: %v", got)
	}
}

func sortThree(k *[3]types.Token) {
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if k[j] < k[i] {
				k[i], k[j] = k[j], k[i]
			}
		}
	}
}
