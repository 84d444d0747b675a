package types

import (
	"testing"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		name  string
		input int64
		want  string
	}{
		{name: "zero", input: 0, want: "0 B"},
		{name: "bytes", input: 512, want: "512 B"},
		{name: "kibibyte", input: KiB, want: "1.0 KiB"},
		{name: "one and a half mebibytes", input: 1536 * KiB, want: "1.5 MiB"},
		{name: "gibibyte", input: GiB, want: "1.0 GiB"},
		{name: "negative clamps to zero", input: -10, want: "0 B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSize(tt.input); got != tt.want {
				t.Errorf("FormatSize(%d) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
