package store

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestFirestoreError(t *testing.T) {
	domain := errors.New("Post not found")
	aborted := status.Error(codes.Aborted, "contention")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"not found", status.Error(codes.NotFound, "no entity to update"), ErrNotFound},
		{"commit not found wrapped", fmt.Errorf("firestore: commit: %w", status.Error(codes.NotFound, "gone")), ErrNotFound},
		{"other status", aborted, aborted},
		{"callback error", domain, domain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firestoreError(tt.err); got != tt.want {
				t.Fatalf("firestoreError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
