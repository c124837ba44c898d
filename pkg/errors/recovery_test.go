package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRecover(t *testing.T) {
	t.Run("panic becomes PanicError", func(t *testing.T) {
		fn := func() (err error) {
			defer Recover(&err, "DataPreprocessor.FitTransform")
			panic("index out of range")
		}

		err := fn()
		var panicErr *PanicError
		if !errors.As(err, &panicErr) {
			t.Fatalf("Expected PanicError, got %T", err)
		}
		if panicErr.Operation != "DataPreprocessor.FitTransform" {
			t.Errorf("Operation = %q", panicErr.Operation)
		}
		if panicErr.StackTrace == "" {
			t.Error("Expected non-empty stack trace")
		}
		if panicErr.Error() != "panic in DataPreprocessor.FitTransform: index out of range" {
			t.Errorf("Error() = %q", panicErr.Error())
		}
		if !strings.Contains(panicErr.String(), "Stack trace:") {
			t.Error("String() should include the stack")
		}
	})

	t.Run("no panic leaves nil", func(t *testing.T) {
		fn := func() (err error) {
			defer Recover(&err, "Op")
			return nil
		}
		if err := fn(); err != nil {
			t.Fatalf("unexpected error %v", err)
		}
	})

	t.Run("existing error is kept in chain", func(t *testing.T) {
		original := fmt.Errorf("original error")
		fn := func() (err error) {
			defer Recover(&err, "Op")
			err = original
			panic("later")
		}
		err := fn()
		if !errors.Is(err, original) {
			t.Error("original error should remain reachable")
		}
		if !strings.Contains(err.Error(), "panic in Op") {
			t.Errorf("missing panic info: %s", err.Error())
		}
	})
}

func TestSafeExecute(t *testing.T) {
	tests := []struct {
		name      string
		fn        func() error
		wantPanic bool
		wantErr   bool
	}{
		{"success", func() error { return nil }, false, false},
		{"function error", func() error { return fmt.Errorf("failed") }, false, true},
		{"panic", func() error { panic("boom") }, true, true},
		{"error panic", func() error { panic(errors.New("bad matrix")) }, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SafeExecute("op", tt.fn)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			var panicErr *PanicError
			if errors.As(err, &panicErr) != tt.wantPanic {
				t.Errorf("PanicError = %v, want %v", panicErr != nil, tt.wantPanic)
			}
		})
	}
}
