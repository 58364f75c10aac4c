package upstream

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantNil     bool
		wantKind    Kind
		wantMessage string
	}{
		{name: "ok", status: 200, body: `{}`, wantNil: true},
		{name: "created", status: 201, body: `{}`, wantNil: true},
		{name: "not found", status: 404, body: "missing", wantKind: KindNotFound, wantMessage: "missing"},
		{name: "not found empty body", status: 404, wantKind: KindNotFound, wantMessage: ""},
		{name: "bad request", status: 400, body: "movieInfo.name must be present", wantKind: KindClientError, wantMessage: "movieInfo.name must be present"},
		{name: "conflict", status: 409, body: "dup", wantKind: KindClientError, wantMessage: "dup"},
		{name: "internal", status: 500, body: "MovieInfo Service Unavailable", wantKind: KindServerError, wantMessage: "Server exception caught : MovieInfo Service Unavailable"},
		{name: "unavailable", status: 503, body: "down", wantKind: KindServerError, wantMessage: "Server exception caught : down"},
		{name: "redirect", status: 302, body: "", wantKind: KindServerError, wantMessage: "Server exception caught : "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(tt.status, []byte(tt.body))
			if tt.wantNil {
				if err != nil {
					t.Fatalf("Classify(%d) = %v, want nil", tt.status, err)
				}
				return
			}
			var upErr *Error
			if !errors.As(err, &upErr) {
				t.Fatalf("Classify(%d) = %v, want *Error", tt.status, err)
			}
			if upErr.Kind != tt.wantKind {
				t.Fatalf("kind = %s, want %s", upErr.Kind, tt.wantKind)
			}
			if upErr.Message != tt.wantMessage {
				t.Fatalf("message = %q, want %q", upErr.Message, tt.wantMessage)
			}
			if upErr.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", upErr.StatusCode, tt.status)
			}
		})
	}
}

func TestKindPredicatesSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", NewError(KindServerError, "boom", 500))
	if !IsServerError(wrapped) {
		t.Fatalf("IsServerError should match wrapped server error")
	}
	if IsNotFound(wrapped) || IsClientError(wrapped) {
		t.Fatalf("wrapped server error matched the wrong kind")
	}
	if IsServerError(errors.New("plain")) {
		t.Fatalf("plain errors are not server errors")
	}
	if IsServerError(nil) {
		t.Fatalf("nil is not a server error")
	}
}

func TestOutcome(t *testing.T) {
	cases := map[string]error{
		"ok":           nil,
		"not_found":    NewError(KindNotFound, "", 404),
		"client_error": NewError(KindClientError, "", 400),
		"server_error": NewError(KindServerError, "", 500),
		"decode_error": &DecodeError{Upstream: "movieinfo", StatusCode: 200, Err: errors.New("bad")},
		"error":        errors.New("other"),
	}
	for want, err := range cases {
		if got := Outcome(err); got != want {
			t.Fatalf("Outcome(%v) = %s, want %s", err, got, want)
		}
	}
}
