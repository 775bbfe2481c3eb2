package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	base := New(Conflict, "already exists")
	if KindOf(base) != Conflict {
		t.Fatalf("expected Conflict, got %v", KindOf(base))
	}

	wrapped := fmt.Errorf("handler: %w", base)
	if KindOf(wrapped) != Conflict {
		t.Fatalf("expected Conflict through wrapping, got %v", KindOf(wrapped))
	}

	if KindOf(errors.New("plain")) != Internal {
		t.Fatalf("expected plain errors to be Internal")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(Internal, "could not look up user", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to be reachable")
	}
	if err.Message != "could not look up user" {
		t.Fatalf("unexpected message %q", err.Message)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		Validation:   http.StatusBadRequest,
		Conflict:     http.StatusConflict,
		Unauthorized: http.StatusUnauthorized,
		NotFound:     http.StatusNotFound,
		Internal:     http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := HTTPStatus(kind); got != want {
			t.Fatalf("kind %v: expected %d, got %d", kind, want, got)
		}
	}
}
