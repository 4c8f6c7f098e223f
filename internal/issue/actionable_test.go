// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "assemble image"},
			expected: "failed to assemble image",
		},
		{
			name:     "operation and resource",
			err:      &ActionableError{Operation: "load recipe", Resource: "./stevedore.cue"},
			expected: "failed to load recipe: ./stevedore.cue",
		},
		{
			name: "full form",
			err: &ActionableError{
				Operation: "load recipe",
				Resource:  "./stevedore.cue",
				Cause:     errors.New("no such file"),
			},
			expected: "failed to load recipe: ./stevedore.cue: no such file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("root cause")
	err := &ActionableError{Operation: "x", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	inner := errors.New("inner")
	err := &ActionableError{
		Operation:   "assemble image",
		Resource:    "stevedore/api:abc123def456",
		Suggestions: []string{"Check the build output", "Try --no-cache"},
		Cause:       fmt.Errorf("outer: %w", inner),
	}

	t.Run("concise includes suggestions", func(t *testing.T) {
		t.Parallel()
		out := err.Format(false)
		if !strings.Contains(out, "• Check the build output") {
			t.Errorf("missing first suggestion:\n%s", out)
		}
		if !strings.Contains(out, "• Try --no-cache") {
			t.Errorf("missing second suggestion:\n%s", out)
		}
		if strings.Contains(out, "Error chain") {
			t.Errorf("non-verbose output should omit the chain:\n%s", out)
		}
	})

	t.Run("verbose appends the chain", func(t *testing.T) {
		t.Parallel()
		out := err.Format(true)
		if !strings.Contains(out, "Error chain:") {
			t.Errorf("verbose output should carry the chain:\n%s", out)
		}
		if !strings.Contains(out, "inner") {
			t.Errorf("chain should reach the innermost error:\n%s", out)
		}
	})
}

func TestErrorContext_Builder(t *testing.T) {
	t.Parallel()

	t.Run("builds full error", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("boom")
		err := NewErrorContext().
			WithOperation("launch container").
			WithResource("stevedore/api:abc123def456").
			WithSuggestion("Check the engine is running").
			Wrap(cause).
			Build()

		if err == nil {
			t.Fatal("expected an error")
		}
		if err.Operation != "launch container" {
			t.Errorf("Operation = %q", err.Operation)
		}
		if err.Resource != "stevedore/api:abc123def456" {
			t.Errorf("Resource = %q", err.Resource)
		}
		if !err.HasSuggestions() {
			t.Error("suggestions were set")
		}
		if !errors.Is(err, cause) {
			t.Error("cause should survive the builder")
		}
	})

	t.Run("operation is required", func(t *testing.T) {
		t.Parallel()
		if err := NewErrorContext().WithResource("x").Build(); err != nil {
			t.Errorf("Build without operation should return nil, got %v", err)
		}
		if err := NewErrorContext().WithResource("x").BuildError(); err != nil {
			t.Errorf("BuildError without operation should return nil, got %v", err)
		}
	})
}

func TestWrapHelpers(t *testing.T) {
	t.Parallel()

	t.Run("nil in nil out", func(t *testing.T) {
		t.Parallel()
		if got := WrapWithOperation(nil, "x"); got != nil {
			t.Errorf("WrapWithOperation(nil) = %v", got)
		}
		if got := WrapWithContext(nil, "x", "y"); got != nil {
			t.Errorf("WrapWithContext(nil) = %v", got)
		}
	})

	t.Run("wraps with context", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("boom")
		err := WrapWithContext(cause, "parse configuration", "config.toml")
		if !errors.Is(err, cause) {
			t.Error("cause lost")
		}
		if !strings.Contains(err.Error(), "config.toml") {
			t.Errorf("Error() = %q", err.Error())
		}
	})
}
