package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestChain_RunsInOrder(t *testing.T) {
	c, err := Chain(
		Erase(TrimString()),
		Erase(ToBytes()),
		Erase(Map(func(b []byte) int { return len(b) })),
	)
	if err != nil {
		t.Fatalf("Chain: %v", err)
	}
	out, err := c.Invoke(context.Background(), "  translated text  ")
	if err != nil {
		t.Fatal(err)
	}
	if out != len("translated text") {
		t.Errorf("out = %v", out)
	}
	if c.InputType().Kind().String() != "string" || c.OutputType().Kind().String() != "int" {
		t.Errorf("types = %s -> %s", c.InputType(), c.OutputType())
	}
}

func TestChain_RejectsMismatchAtConstruction(t *testing.T) {
	_, err := Chain(Erase(TrimString()), Erase(BytesToText()))
	var cerr *CompositionError
	if !errors.As(err, &cerr) {
		t.Fatalf("err = %v, want *CompositionError", err)
	}
	if cerr.Stage != "chain[0->1]" {
		t.Errorf("stage = %q", cerr.Stage)
	}

	if _, err := Chain(); err == nil {
		t.Error("empty chain accepted")
	}
}

func TestChain_InterfaceInput(t *testing.T) {
	c, err := Chain(Erase(ToBytes()), Erase(Map(func(b []byte) io.Reader { return bytes.NewReader(b) })), Erase(ReadAll()))
	if err != nil {
		t.Fatal(err)
	}
	out, err := c.Invoke(context.Background(), "abc")
	if err != nil {
		t.Fatal(err)
	}
	if string(out.([]byte)) != "abc" {
		t.Errorf("out = %v", out)
	}
}

func TestErase_WrongDynamicInput(t *testing.T) {
	_, err := Erase(TrimString()).Invoke(context.Background(), 42)
	if err == nil || !strings.Contains(err.Error(), "input is int") {
		t.Errorf("err = %v", err)
	}
}

func TestTyped(t *testing.T) {
	r, err := Chain(Erase(TrimString()), Erase(ToBytes()))
	if err != nil {
		t.Fatal(err)
	}
	s, err := Typed[string, []byte](r)
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Invoke(context.Background(), " hi ")
	if err != nil || string(got) != "hi" {
		t.Errorf("got %q, %v", got, err)
	}

	if _, err := Typed[int, []byte](r); err == nil {
		t.Error("Typed accepted wrong input type")
	}
	if _, err := Typed[string, string](r); err == nil {
		t.Error("Typed accepted wrong output type")
	}
}

func TestChain_RejectsNamedTypeWithSameUnderlying(t *testing.T) {
	_, err := Chain(
		Erase(ToBytes()),
		Erase(Map(func(m json.RawMessage) int { return len(m) })),
	)
	var cerr *CompositionError
	if !errors.As(err, &cerr) {
		t.Fatalf("err = %v, want *CompositionError at construction", err)
	}
	if cerr.Stage != "chain[0->1]" {
		t.Errorf("stage = %q", cerr.Stage)
	}
}

func TestTyped_TypeRules(t *testing.T) {
	r, err := Chain(Erase(ToBytes()))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		build   func() error
		wantErr bool
	}{
		{"named output with same underlying type", func() error { _, err := Typed[string, json.RawMessage](r); return err }, true},
		{"named input with same underlying type", func() error {
			_, err := Typed[string, []byte](Erase(Map(func(s label) []byte { return []byte(s) })))
			return err
		}, true},
		{"interface output", func() error { _, err := Typed[string, any](r); return err }, false},
		{"concrete input into interface step", func() error { _, err := Typed[*bytes.Reader, []byte](Erase(ReadAll())); return err }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build()
			if tt.wantErr {
				var cerr *CompositionError
				if !errors.As(err, &cerr) {
					t.Errorf("err = %v, want *CompositionError", err)
				}
				return
			}
			if err != nil {
				t.Errorf("err = %v", err)
			}
		})
	}

	s, err := Typed[string, any](r)
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Invoke(context.Background(), "abc")
	if err != nil {
		t.Fatal(err)
	}
	if b, ok := got.([]byte); !ok || string(b) != "abc" {
		t.Errorf("got %#v", got)
	}
}

type label string
