package cache

import "testing"

func TestContentHashDeterministic(t *testing.T) {
	a := ContentHash([]byte("same bytes"))
	b := ContentHash([]byte("same bytes"))
	if a != b {
		t.Fatalf("hash not deterministic: %q != %q", a, b)
	}
}

func TestContentHashDistinguishesInput(t *testing.T) {
	a := ContentHash([]byte("one"))
	b := ContentHash([]byte("two"))
	if a == b {
		t.Fatalf("distinct inputs hashed to the same value %q", a)
	}
}

func TestDriverForKnownBackends(t *testing.T) {
	cases := map[string]string{
		"sqlite":   "sqlite",
		"sqlite3":  "sqlite",
		"postgres": "postgres",
		"mysql":    "mysql",
		"mssql":    "sqlserver",
	}
	for kind, want := range cases {
		got, err := driverFor(kind)
		if err != nil {
			t.Fatalf("driverFor(%q): %v", kind, err)
		}
		if got != want {
			t.Errorf("driverFor(%q) = %q, want %q", kind, got, want)
		}
	}
}

func TestDriverForUnknownBackend(t *testing.T) {
	if _, err := driverFor("oracle"); err == nil {
		t.Fatalf("expected an error for an unsupported backend")
	}
}
