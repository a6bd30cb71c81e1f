package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOfWrapped(t *testing.T) {
	base := New(Conflict, "Already following this user")
	wrapped := fmt.Errorf("follow: %w", base)

	if got := KindOf(wrapped); got != Conflict {
		t.Fatalf("KindOf = %v, want %v", got, Conflict)
	}
	if !Is(wrapped, Conflict) {
		t.Fatal("Is(wrapped, Conflict) = false")
	}
	if KindOf(errors.New("boom")) != Internal {
		t.Fatal("plain errors should be internal")
	}
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("deadline exceeded")
	err := Wrap(Internal, cause, "failed to load post")
	if err.Error() != "failed to load post: deadline exceeded" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause not reachable through Unwrap")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		Unauthenticated:   http.StatusUnauthorized,
		InvalidCredential: http.StatusForbidden,
		Unauthorized:      http.StatusForbidden,
		NotFound:          http.StatusNotFound,
		InvalidInput:      http.StatusBadRequest,
		InvalidOperation:  http.StatusBadRequest,
		Conflict:          http.StatusBadRequest,
		Internal:          http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := HTTPStatus(kind); got != want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", kind, got, want)
		}
	}
}

func TestMessage(t *testing.T) {
	if got := Message(New(NotFound, "Post not found")); got != "Post not found" {
		t.Fatalf("Message = %q", got)
	}
	if got := Message(Wrap(Internal, errors.New("unavailable"), "failed to load post")); got != "failed to load post: unavailable" {
		t.Fatalf("internal Message = %q", got)
	}
	if got := Message(errors.New("boom")); got != "boom" {
		t.Fatalf("plain Message = %q", got)
	}
}
