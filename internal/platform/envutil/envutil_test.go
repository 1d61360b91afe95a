package envutil

import (
	"reflect"
	"testing"
	"time"
)

func TestDurationAcceptsMillisAndGoSyntax(t *testing.T) {
	t.Setenv("SUBMIT_DELAY_MS", "1500")
	if got := Duration("SUBMIT_DELAY_MS", time.Second, nil); got != 1500*time.Millisecond {
		t.Fatalf("millis: got=%s want=1.5s", got)
	}
	t.Setenv("SUBMIT_DELAY_MS", "2m")
	if got := Duration("SUBMIT_DELAY_MS", time.Second, nil); got != 2*time.Minute {
		t.Fatalf("go syntax: got=%s want=2m", got)
	}
	t.Setenv("SUBMIT_DELAY_MS", "soon")
	if got := Duration("SUBMIT_DELAY_MS", time.Second, nil); got != time.Second {
		t.Fatalf("invalid should fall back: got=%s", got)
	}
}

func TestIntAndBoolFallBackOnGarbage(t *testing.T) {
	t.Setenv("PORT", "eighty")
	if got := Int("PORT", 8080, nil); got != 8080 {
		t.Fatalf("int fallback: got=%d", got)
	}
	t.Setenv("STRICT_INVARIANTS", "maybe")
	if got := Bool("STRICT_INVARIANTS", true, nil); !got {
		t.Fatalf("bool fallback: got=%v", got)
	}
	t.Setenv("STRICT_INVARIANTS", "off")
	if got := Bool("STRICT_INVARIANTS", true, nil); got {
		t.Fatalf("bool off: got=%v", got)
	}
}

func TestListTrimsAndDropsBlanks(t *testing.T) {
	t.Setenv("CORS_ORIGINS", " http://a.test , ,http://b.test")
	got := List("CORS_ORIGINS", nil)
	want := []string{"http://a.test", "http://b.test"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got=%v want=%v", got, want)
	}
}

func TestFloat(t *testing.T) {
	t.Setenv("OTEL_SAMPLER_RATIO", "0.25")
	if got := Float("OTEL_SAMPLER_RATIO", 1, nil); got != 0.25 {
		t.Fatalf("float: got=%v want=0.25", got)
	}
	t.Setenv("OTEL_SAMPLER_RATIO", "half")
	if got := Float("OTEL_SAMPLER_RATIO", 1, nil); got != 1 {
		t.Fatalf("float fallback: got=%v", got)
	}
}

func TestIsSecret(t *testing.T) {
	if !isSecret("POSTGRES_PASSWORD") || !isSecret("otel_exporter_otlp_headers") || isSecret("POSTGRES_HOST") {
		t.Fatalf("secret detection wrong")
	}
}
