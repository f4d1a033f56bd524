package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseConvert,
				Kind:   KindTypeMismatch,
				GoType: "string",
				PyType: "int",
				Detail: "cannot convert",
			},
			contains: []string{"[convert]", "type_mismatch", "string", "int", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseItem,
				Kind:  KindNotFound,
			},
			contains: []string{"[item]", "not_found"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseTypeBuild,
				Kind:   KindABIRejected,
				Detail: "create type Point",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[typebuild]", "abi_rejected", "create type Point", "caused by", "underlying error"},
		},
		{
			name:     "bridged exception",
			err:      PythonException(PhaseCall, "ValueError", "bad input"),
			contains: []string{"[call]", "python_exception", "Python type ValueError", "bad input"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEval,
		Kind:  KindPythonException,
		Cause: cause,
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should match the cause")
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestError_Is(t *testing.T) {
	a := &Error{Phase: PhaseCall, Kind: KindPythonException}
	b := &Error{Phase: PhaseCall, Kind: KindPythonException, Detail: "different detail"}
	c := &Error{Phase: PhaseAttr, Kind: KindPythonException}

	if !errors.Is(a, b) {
		t.Error("errors with same phase and kind should match")
	}
	if errors.Is(a, c) {
		t.Error("errors with different phase should not match")
	}
}

func TestBuilder(t *testing.T) {
	err := New(PhaseBoundary, KindArityMismatch).
		GoType("func(Tuple) (Object, error)").
		Detail("takes %d arguments but %d were given", 0, 2).
		Value(2).
		Build()

	if err.Phase != PhaseBoundary {
		t.Errorf("Phase = %q, want %q", err.Phase, PhaseBoundary)
	}
	if err.Kind != KindArityMismatch {
		t.Errorf("Kind = %q, want %q", err.Kind, KindArityMismatch)
	}
	if err.Detail != "takes 0 arguments but 2 were given" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Value != 2 {
		t.Errorf("Value = %v, want 2", err.Value)
	}
}

func TestArity_MessageConvention(t *testing.T) {
	err := Arity(PhaseBoundary, "Point", 0, 3)
	want := "Point() takes 0 positional arguments but 3 were given"
	if !strings.Contains(err.Error(), want) {
		t.Errorf("Arity message %q does not contain %q", err.Error(), want)
	}
}
