/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package pipeline

import (
	"context"
	"errors"
	"testing"

	rkerrors "github.com/suparena/repokit/errors"
)

type testEntity struct {
	ID   string
	Name string
}

// tracer builds a middleware that records before/after markers around its
// continuation.
func tracer(trace *[]string, name string) Func[testEntity, string] {
	return func(ctx context.Context, op *Context[testEntity, string], next Next) error {
		*trace = append(*trace, name+"-before")
		err := next(ctx)
		*trace = append(*trace, name+"-after")
		return err
	}
}

func TestExecuteOrderFirstRegisteredIsOutermost(t *testing.T) {
	var trace []string

	p := New[testEntity, string]()
	if err := p.Register(tracer(&trace, "A")); err != nil {
		t.Fatalf("Register A: %v", err)
	}
	if err := p.Register(tracer(&trace, "B")); err != nil {
		t.Fatalf("Register B: %v", err)
	}

	op := NewContext[testEntity, string](OpGet, "testEntity")
	err := p.Execute(context.Background(), op, func(context.Context) error {
		trace = append(trace, "final")
		return nil
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := []string{"A-before", "B-before", "final", "B-after", "A-after"}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace[%d] = %q, want %q; full trace = %v", i, trace[i], want[i], trace)
		}
	}
}

func TestExecuteOrderReversedRegistration(t *testing.T) {
	var trace []string

	p := New[testEntity, string]()
	_ = p.Register(tracer(&trace, "B"))
	_ = p.Register(tracer(&trace, "A"))

	op := NewContext[testEntity, string](OpGet, "testEntity")
	if err := p.Execute(context.Background(), op, func(context.Context) error {
		trace = append(trace, "final")
		return nil
	}); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := []string{"B-before", "A-before", "final", "A-after", "B-after"}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace[%d] = %q, want %q; full trace = %v", i, trace[i], want[i], trace)
		}
	}
}

func TestExecuteEmptyPipelineRunsFinal(t *testing.T) {
	p := New[testEntity, string]()

	ran := false
	op := NewContext[testEntity, string](OpInsert, "testEntity")
	if err := p.Execute(context.Background(), op, func(context.Context) error {
		ran = true
		return nil
	}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !ran {
		t.Fatal("final operation did not run")
	}
	if !op.Success {
		t.Fatal("Success should remain true")
	}
}

func TestExecuteAbortShortCircuits(t *testing.T) {
	var trace []string
	vetoErr := rkerrors.NewValidationError("", "vetoed")

	p := New[testEntity, string]()
	_ = p.Register(tracer(&trace, "outer"))
	_ = p.Register(Func[testEntity, string](func(ctx context.Context, op *Context[testEntity, string], next Next) error {
		op.Abort(vetoErr)
		return nil
	}))
	_ = p.Register(tracer(&trace, "inner"))

	op := NewContext[testEntity, string](OpInsert, "testEntity")
	err := p.Execute(context.Background(), op, func(context.Context) error {
		trace = append(trace, "final")
		return nil
	})
	if err != nil {
		t.Fatalf("Execute should not return an error on abort, got %v", err)
	}

	// Units inside the vetoing one never run; the outer one still unwinds.
	want := []string{"outer-before", "outer-after"}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}

	if op.Success {
		t.Error("Success should be false after abort")
	}
	if !op.ShortCircuited {
		t.Error("ShortCircuited should be set after abort")
	}
	if op.Err != vetoErr {
		t.Errorf("Err = %v, want %v", op.Err, vetoErr)
	}
}

func TestExecuteErrorPropagatesAndIsRecorded(t *testing.T) {
	backendErr := errors.New("backend down")

	p := New[testEntity, string]()
	_ = p.Register(Func[testEntity, string](func(ctx context.Context, op *Context[testEntity, string], next Next) error {
		return next(ctx)
	}))

	op := NewContext[testEntity, string](OpUpdate, "testEntity")
	err := p.Execute(context.Background(), op, func(context.Context) error {
		return backendErr
	})

	if !errors.Is(err, backendErr) {
		t.Fatalf("Execute error = %v, want %v", err, backendErr)
	}
	if op.Err != backendErr {
		t.Errorf("op.Err = %v, want %v", op.Err, backendErr)
	}
	if op.Success {
		t.Error("Success should be false after a chain error")
	}
}

func TestExecuteItemsBagFlowsThroughChain(t *testing.T) {
	p := New[testEntity, string]()
	_ = p.Register(Func[testEntity, string](func(ctx context.Context, op *Context[testEntity, string], next Next) error {
		op.SetItem("correlationId", "abc-123")
		return next(ctx)
	}))

	var seen any
	_ = p.Register(Func[testEntity, string](func(ctx context.Context, op *Context[testEntity, string], next Next) error {
		seen, _ = op.Item("correlationId")
		return next(ctx)
	}))

	op := NewContext[testEntity, string](OpGet, "testEntity")
	if err := p.Execute(context.Background(), op, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if seen != "abc-123" {
		t.Errorf("downstream middleware saw %v, want abc-123", seen)
	}
	if _, ok := op.Item("missing"); ok {
		t.Error("Item should report absence for unknown keys")
	}
}

func TestRegisterNilMiddleware(t *testing.T) {
	p := New[testEntity, string]()
	err := p.Register(nil)
	if !rkerrors.IsNilArgument(err) {
		t.Fatalf("Register(nil) = %v, want nil argument error", err)
	}
	if p.Count() != 0 {
		t.Fatalf("Count = %d, want 0", p.Count())
	}
}

func TestExecuteNilArguments(t *testing.T) {
	p := New[testEntity, string]()
	op := NewContext[testEntity, string](OpGet, "testEntity")

	if err := p.Execute(context.Background(), nil, func(context.Context) error { return nil }); !rkerrors.IsNilArgument(err) {
		t.Fatalf("Execute with nil op = %v, want nil argument error", err)
	}
	if err := p.Execute(context.Background(), op, nil); !rkerrors.IsNilArgument(err) {
		t.Fatalf("Execute with nil final = %v, want nil argument error", err)
	}
}

func TestCountAndClear(t *testing.T) {
	p := New[testEntity, string]()
	for i := 0; i < 3; i++ {
		_ = p.Register(Func[testEntity, string](func(ctx context.Context, op *Context[testEntity, string], next Next) error {
			return next(ctx)
		}))
	}
	if p.Count() != 3 {
		t.Fatalf("Count = %d, want 3", p.Count())
	}

	p.Clear()
	if p.Count() != 0 {
		t.Fatalf("Count after Clear = %d, want 0", p.Count())
	}

	// A cleared pipeline still executes the final operation directly.
	ran := false
	op := NewContext[testEntity, string](OpGet, "testEntity")
	if err := p.Execute(context.Background(), op, func(context.Context) error {
		ran = true
		return nil
	}); err != nil || !ran {
		t.Fatalf("Execute after Clear: ran=%t err=%v", ran, err)
	}
}

func TestExecuteReusablePipelineFreshContexts(t *testing.T) {
	p := New[testEntity, string]()
	calls := 0
	_ = p.Register(Func[testEntity, string](func(ctx context.Context, op *Context[testEntity, string], next Next) error {
		calls++
		return next(ctx)
	}))

	for i := 0; i < 5; i++ {
		op := NewContext[testEntity, string](OpGet, "testEntity")
		if err := p.Execute(context.Background(), op, func(context.Context) error { return nil }); err != nil {
			t.Fatalf("Execute %d: %v", i, err)
		}
		if !op.Success || op.ShortCircuited {
			t.Fatalf("call %d: context carried state from a previous call", i)
		}
	}
	if calls != 5 {
		t.Fatalf("middleware ran %d times, want 5", calls)
	}
}

func TestOperationProperties(t *testing.T) {
	cases := []struct {
		op       Operation
		name     string
		mutation bool
		rng      bool
	}{
		{OpInsert, "Insert", true, false},
		{OpGet, "Get", false, false},
		{OpGetByID, "GetById", false, false},
		{OpUpdate, "Update", true, false},
		{OpDelete, "Delete", true, false},
		{OpInsertRange, "InsertRange", true, true},
		{OpUpdateRange, "UpdateRange", true, true},
		{OpDeleteRange, "DeleteRange", true, true},
	}

	for _, c := range cases {
		if got := c.op.String(); got != c.name {
			t.Errorf("%v.String() = %q, want %q", int(c.op), got, c.name)
		}
		if got := c.op.IsMutation(); got != c.mutation {
			t.Errorf("%s.IsMutation() = %t, want %t", c.name, got, c.mutation)
		}
		if got := c.op.IsRange(); got != c.rng {
			t.Errorf("%s.IsRange() = %t, want %t", c.name, got, c.rng)
		}
	}

	if got := Operation(99).String(); got != "Unknown" {
		t.Errorf("unknown operation String() = %q, want Unknown", got)
	}
}
