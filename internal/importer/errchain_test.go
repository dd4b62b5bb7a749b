package importer

import (
	"errors"
	"fmt"
	"testing"
)

// labelErr has a message that does not embed its cause's text, unlike
// fmt.Errorf("%w") wrappers.
type labelErr struct {
	msg   string
	cause error
}

func (e *labelErr) Error() string { return e.msg }
func (e *labelErr) Unwrap() error { return e.cause }

func TestErrorChain(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil error",
			err:  nil,
			want: "",
		},
		{
			name: "single error unchanged",
			err:  errors.New("bad argument"),
			want: "bad argument",
		},
		{
			name: "nested custom errors",
			err:  &labelErr{msg: "operation failed", cause: errors.New("bad argument")},
			want: "operation failed → bad argument",
		},
		{
			name: "three levels",
			err: &labelErr{
				msg: "import row",
				cause: &labelErr{
					msg:   "operation failed",
					cause: errors.New("bad argument"),
				},
			},
			want: "import row → operation failed → bad argument",
		},
		{
			name: "fmt wrapper deduplicates embedded cause text",
			err:  fmt.Errorf("operation failed: %w", errors.New("bad argument")),
			want: "operation failed → bad argument",
		},
		{
			name: "double fmt wrapper",
			err:  fmt.Errorf("resolve product: %w", fmt.Errorf("query product by key: %w", errors.New("connection refused"))),
			want: "resolve product → query product by key → connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorChain(tt.err); got != tt.want {
				t.Errorf("ErrorChain() = %q, want %q", got, tt.want)
			}
		})
	}
}
