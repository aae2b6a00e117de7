package inspector_test

import (
	"net/http/httptest"
	"testing"

	"ecmavm/internal/inspector"
	"ecmavm/internal/vmconfig"
)

func TestAttachEnablesDebugHook(t *testing.T) {
	s := inspector.NewServer()
	m := vmconfig.Build()

	id := s.Attach(m)
	if id == "" {
		t.Fatalf("Attach returned an empty session id")
	}
	if !m.Debug {
		t.Fatalf("Attach did not enable m.Debug")
	}
	if m.DebugHook == nil {
		t.Fatalf("Attach did not install a DebugHook")
	}
}

func TestHandlerRejectsUnknownSession(t *testing.T) {
	s := inspector.NewServer()
	req := httptest.NewRequest("GET", "/?session=does-not-exist", nil)
	rec := httptest.NewRecorder()

	s.Handler(rec, req)

	if rec.Code != 404 {
		t.Fatalf("status = %d, want 404 for an unknown session", rec.Code)
	}
}

func TestDetachUnknownSessionIsNoop(t *testing.T) {
	s := inspector.NewServer()
	// Must not panic even though no session was ever attached.
	s.Detach("never-attached")
}

func TestDetachRemovesSession(t *testing.T) {
	s := inspector.NewServer()
	m := vmconfig.Build()
	id := s.Attach(m)

	s.Detach(id)

	req := httptest.NewRequest("GET", "/?session="+id, nil)
	rec := httptest.NewRecorder()
	s.Handler(rec, req)
	if rec.Code != 404 {
		t.Fatalf("status = %d, want 404 after Detach removed the session", rec.Code)
	}
}
