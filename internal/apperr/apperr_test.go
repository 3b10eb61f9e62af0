package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{Config("missing key"), http.StatusInternalServerError},
		{ExternalAPI(errors.New("refused"), "call"), http.StatusBadGateway},
		{VectorStore(nil, "bad batch"), http.StatusInternalServerError},
		{NotFound("nope"), http.StatusNotFound},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusOf(tc.err); got != tc.status {
			t.Errorf("StatusOf(%v) = %d, want %d", tc.err, got, tc.status)
		}
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("embed query: %w", ExternalAPI(errors.New("timeout"), "call embeddings"))
	if KindOf(err) != KindExternalAPI {
		t.Errorf("kind lost through wrapping: %v", KindOf(err))
	}
	if StatusOf(err) != http.StatusBadGateway {
		t.Errorf("status lost through wrapping: %d", StatusOf(err))
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := ExternalAPI(errors.New("connection refused"), "call %s", "https://x")
	if got := err.Error(); got != "call https://x: connection refused" {
		t.Errorf("message = %q", got)
	}
	if !errors.Is(err, errors.Unwrap(err)) {
		t.Error("cause not unwrappable")
	}
}
