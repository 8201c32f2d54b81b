/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package middleware

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/suparena/repokit/pipeline"
)

func TestLoggingEmitsStartAndCompletion(t *testing.T) {
	var lines []string
	l := NewLogging[account, string](func(msg string) { lines = append(lines, msg) }, false)

	op := pipeline.NewContext[account, string](pipeline.OpInsert, "account")
	if err := l.Invoke(context.Background(), op, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(lines), lines)
	}
	if lines[0] != "Starting Insert on account" {
		t.Errorf("start line = %q", lines[0])
	}
	if lines[1] != "Completed Insert on account, success=true" {
		t.Errorf("completion line = %q", lines[1])
	}
}

func TestLoggingIncludesTimings(t *testing.T) {
	var lines []string
	l := NewLogging[account, string](func(msg string) { lines = append(lines, msg) }, true)

	op := pipeline.NewContext[account, string](pipeline.OpGet, "account")
	if err := l.Invoke(context.Background(), op, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	if !strings.HasSuffix(lines[1], "ms") {
		t.Errorf("completion line should carry elapsed ms, got %q", lines[1])
	}
}

func TestLoggingRethrowsFailureUnmodified(t *testing.T) {
	backendErr := errors.New("backend down")

	var lines []string
	l := NewLogging[account, string](func(msg string) { lines = append(lines, msg) }, false)

	op := pipeline.NewContext[account, string](pipeline.OpUpdate, "account")
	err := l.Invoke(context.Background(), op, func(context.Context) error { return backendErr })

	if err != backendErr {
		t.Fatalf("Invoke error = %v, want the continuation's error unmodified", err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(lines), lines)
	}
	if lines[1] != "Failed Update on account: backend down" {
		t.Errorf("failure line = %q", lines[1])
	}
}

func TestLoggingWithLogrusLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	l := NewLoggingWithLogger[account, string](logger, false)

	op := pipeline.NewContext[account, string](pipeline.OpDelete, "account")
	if err := l.Invoke(context.Background(), op, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	entries := hook.AllEntries()
	if len(entries) != 2 {
		t.Fatalf("got %d log entries, want 2", len(entries))
	}
	if entries[0].Level != logrus.InfoLevel {
		t.Errorf("level = %v, want info", entries[0].Level)
	}
	if entries[0].Message != "Starting Delete on account" {
		t.Errorf("message = %q", entries[0].Message)
	}
}

func TestLoggingNilSinkIsSafe(t *testing.T) {
	l := NewLogging[account, string](nil, true)
	op := pipeline.NewContext[account, string](pipeline.OpGet, "account")
	if err := l.Invoke(context.Background(), op, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
}
