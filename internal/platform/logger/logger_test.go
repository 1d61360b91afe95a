package logger

import (
	"strings"
	"testing"
)

func TestPolicyScrubsApplicantFields(t *testing.T) {
	t.Parallel()
	p := &policy{enabled: true}
	out := p.apply([]interface{}{
		"id_number", "8001015009087",
		"email", "thandi@example.co.za",
		"step", 2,
	})
	if len(out) != 6 {
		t.Fatalf("unexpected kv length: got=%d want=6", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("id_number should be redacted, got=%v", out[1])
	}
	hashed, ok := out[3].(string)
	if !ok || !strings.HasPrefix(hashed, "hash:") || len(hashed) != len("hash:")+12 {
		t.Fatalf("email should be hashed, got=%v", out[3])
	}
	if out[5] != 2 {
		t.Fatalf("unrelated values must pass through, got=%v", out[5])
	}
}

func TestPolicyDoesNotMutateInput(t *testing.T) {
	t.Parallel()
	p := &policy{enabled: true}
	in := []interface{}{"phone", "0821234567"}
	_ = p.apply(in)
	if in[1] != "0821234567" {
		t.Fatalf("input slice mutated: %v", in)
	}
}

func TestPolicyHandlesFieldErrorMaps(t *testing.T) {
	t.Parallel()
	p := &policy{enabled: true}
	out := p.apply([]interface{}{"fields", map[string]string{"phone": "0821234567"}})
	m, ok := out[1].(map[string]interface{})
	if !ok {
		t.Fatalf("expected sanitized map, got %T", out[1])
	}
	if got, _ := m["phone"].(string); !strings.HasPrefix(got, "hash:") {
		t.Fatalf("nested phone should be hashed, got=%q", got)
	}
}

func TestPolicyKeepsDanglingKey(t *testing.T) {
	t.Parallel()
	p := &policy{enabled: true}
	out := p.apply([]interface{}{"a", 1, "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("dangling key should be preserved, got=%v", out)
	}
}

func TestPolicySaltChangesDigest(t *testing.T) {
	t.Parallel()
	a := (&policy{enabled: true}).digest("x@y.co")
	b := (&policy{enabled: true, salt: "pepper"}).digest("x@y.co")
	if a == b {
		t.Fatalf("salted digest should differ: got=%s", a)
	}
}

func TestDisabledPolicyPassesThrough(t *testing.T) {
	t.Parallel()
	p := &policy{}
	out := p.apply([]interface{}{"id_number", "8001015009087"})
	if out[1] != "8001015009087" {
		t.Fatalf("disabled policy should not redact, got=%v", out[1])
	}
}

func TestNopLoggerAcceptsFields(t *testing.T) {
	t.Parallel()
	log := Nop().With("client_id", "abc")
	log.Info("ok", "email", "a@b.co")
	log.Sync()
}
