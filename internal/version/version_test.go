package version

import (
	"runtime"
	"testing"
)

func TestString_NormalizesPrefix(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no prefix", "1.0.0", "v1.0.0"},
		{"with v prefix", "v1.0.0", "v1.0.0"},
		{"double v prefix", "vv1.0.0", "vv1.0.0"}, // TrimPrefix only removes one v
		{"dev", "dev", "vdev"},
		{"git describe", "v0.3.1-4-gabcdef", "v0.3.1-4-gabcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := Version
			defer func() { Version = original }()

			Version = tt.input
			if got := String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGet(t *testing.T) {
	original := Version
	defer func() { Version = original }()
	Version = "0.3.1"

	info := Get()
	if info.Version != "v0.3.1" {
		t.Errorf("Version = %q", info.Version)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
}
