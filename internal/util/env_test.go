package util

import (
	"testing"
	"time"
)

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		set   bool
		want  int
	}{
		{name: "unset", set: false, want: 5},
		{name: "valid", value: "30", set: true, want: 30},
		{name: "padded", value: " 7 ", set: true, want: 7},
		{name: "garbage", value: "many", set: true, want: 5},
		{name: "zero", value: "0", set: true, want: 5},
		{name: "negative", value: "-3", set: true, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set {
				t.Setenv("LUMEN_TEST_INT", tt.value)
			}
			got := GetEnvInt("LUMEN_TEST_INT", 5)
			if got != tt.want {
				t.Fatalf("GetEnvInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("LUMEN_TEST_DURATION", "2m")
	if got := GetEnvDuration("LUMEN_TEST_DURATION", time.Second); got != 2*time.Minute {
		t.Fatalf("GetEnvDuration() = %v, want 2m", got)
	}

	t.Setenv("LUMEN_TEST_DURATION", "soon")
	if got := GetEnvDuration("LUMEN_TEST_DURATION", time.Second); got != time.Second {
		t.Fatalf("GetEnvDuration() = %v, want fallback 1s", got)
	}
}

func TestGetEnvStringBlankFallsBack(t *testing.T) {
	t.Setenv("LUMEN_TEST_STRING", "   ")
	if got := GetEnvString("LUMEN_TEST_STRING", "memory"); got != "memory" {
		t.Fatalf("GetEnvString() = %q, want %q", got, "memory")
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("LUMEN_TEST_BOOL", "true")
	if !GetEnvBool("LUMEN_TEST_BOOL", false) {
		t.Fatalf("GetEnvBool() = false, want true")
	}
	t.Setenv("LUMEN_TEST_BOOL", "yes")
	if GetEnvBool("LUMEN_TEST_BOOL", false) {
		t.Fatalf("GetEnvBool() = true, want fallback false")
	}
}
