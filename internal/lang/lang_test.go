package lang_test

// Notes:
// - A representative sample of codes is tested rather than the whole table.
// - Only ISO 639-1 bases are accepted; three-letter codes are rejected.

import (
	"errors"
	"testing"

	"github.com/alnah/audio-splitter/internal/lang"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"en", "en"},
		{"EN", "en"},
		{"pt-BR", "pt-br"},
		{"pt_BR", "pt-br"},
		{"zh_hans-CN", "zh-hans-cn"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := lang.Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "empty means auto-detect", input: "", want: ""},
		{name: "base code", input: "fr", want: "fr"},
		{name: "uppercase", input: "DE", want: "de"},
		{name: "locale reduced to base", input: "pt-BR", want: "pt"},
		{name: "underscore locale", input: "zh_CN", want: "zh"},
		{name: "less common", input: "cy", want: "cy"},
		{name: "three letter code", input: "fra", wantErr: true},
		{name: "unknown", input: "xx", wantErr: true},
		{name: "unknown locale", input: "xx-YY", wantErr: true},
		{name: "blank", input: " ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := lang.Parse(tt.input)
			if tt.wantErr {
				if !errors.Is(err, lang.ErrInvalid) {
					t.Fatalf("Parse(%q) error = %v, want ErrInvalid", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"en", "English"},
		{"pt-BR", "Portuguese"},
		{"xx", "xx"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := lang.Name(tt.input); got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
