package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewCycle(t *testing.T) {
	p := NewCycle("A", "B", "C")

	tokens := p.Tokens()
	if len(tokens) != CycleLength {
		t.Fatalf("expected %d tokens, got %d", CycleLength, len(tokens))
	}

	want := []Token{"A", "B", "C", "A"}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("token %d: expected %s, got %s", i, want[i], tokens[i])
		}
	}

	if p.Start() != "A" {
		t.Errorf("expected start A, got %s", p.Start())
	}

	if err := p.Validate(); err != nil {
		t.Errorf("expected valid path, got %v", err)
	}
}

func TestSwapPath_TokensIsCopy(t *testing.T) {
	p := NewCycle("A", "B", "C")

	tokens := p.Tokens()
	tokens[1] = "Z"

	if p.Tokens()[1] != "B" {
		t.Error("mutating Tokens() result changed the path")
	}
}

func TestSwapPath_Validate(t *testing.T) {
	tests := []struct {
		name    string
		path    SwapPath
		wantErr bool
	}{
		{name: "valid", path: NewCycle("A", "B", "C"), wantErr: false},
		{name: "repeated-hop", path: NewCycle("A", "A", "C"), wantErr: true},
		{name: "repeated-second-hop", path: NewCycle("A", "B", "B"), wantErr: true},
		{name: "empty-token", path: NewCycle("A", "", "C"), wantErr: true},
		{name: "zero-value", path: SwapPath{}, wantErr: true},
		{name: "not-closed", path: SwapPath{tokens: [CycleLength]Token{"A", "B", "C", "B"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.path.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSwapPath_StringAndFormat(t *testing.T) {
	p := NewCycle("0xAAAAAAAAAA", "0xBBBBBBBBBB", "0xCCCCCCCCCC")

	if got := p.String(); got != "0xAAAAAAAAAA→0xBBBBBBBBBB→0xCCCCCCCCCC→0xAAAAAAAAAA" {
		t.Errorf("unexpected String(): %s", got)
	}

	if got := p.Format(Token.Short); got != "0xAAAAAA→0xBBBBBB→0xCCCCCC→0xAAAAAA" {
		t.Errorf("unexpected Format(Short): %s", got)
	}
}

func TestSwapPath_Equal(t *testing.T) {
	if !NewCycle("A", "B", "C").Equal(NewCycle("A", "B", "C")) {
		t.Error("identical cycles should be equal")
	}
	if NewCycle("A", "B", "C").Equal(NewCycle("A", "C", "B")) {
		t.Error("reversed cycles should not be equal")
	}
}

func TestQuoteError_IsUnavailable(t *testing.T) {
	cause := errors.New("execution reverted")
	err := fmt.Errorf("quote: %w", NewQuoteError([]Token{"A", "B", "A"}, ReasonRPCError, cause))

	if !errors.Is(err, ErrQuoteUnavailable) {
		t.Error("expected error to match ErrQuoteUnavailable")
	}
	if !errors.Is(err, cause) {
		t.Error("expected error to unwrap to cause")
	}

	var qe *QuoteError
	if !errors.As(err, &qe) {
		t.Fatal("expected errors.As to find QuoteError")
	}
	if qe.Reason != ReasonRPCError {
		t.Errorf("expected reason %s, got %s", ReasonRPCError, qe.Reason)
	}
}

func TestConfigError_Message(t *testing.T) {
	err := &ConfigError{Field: "TOKEN_LIST", Message: "need at least 3 tokens"}
	if err.Error() != "invalid configuration TOKEN_LIST: need at least 3 tokens" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}
