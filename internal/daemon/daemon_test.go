package daemon

import (
	"net"
	"strings"
	"testing"
)

type plainListener struct{ net.Listener }

func TestIsChild(t *testing.T) {
	t.Setenv(EnvVar, "")
	if IsChild() {
		t.Fatal("expected parent without marker")
	}

	t.Setenv(EnvVar, "1")
	if !IsChild() {
		t.Fatal("expected child with marker")
	}
}

func TestInheritedListenerRequiresMarker(t *testing.T) {
	t.Setenv(EnvVar, "")
	if _, err := InheritedListener(); err == nil {
		t.Fatal("expected error outside of a detached child")
	}
}

func TestDetachRejectsListenerWithoutFile(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	_, err = Detach(plainListener{ln})
	if err == nil || !strings.Contains(err.Error(), "cannot be passed") {
		t.Fatalf("expected rejection of wrapped listener, got %v", err)
	}
}
