package hotkey

import (
	"errors"
	"slices"
	"testing"
)

func TestParseCombo(t *testing.T) {
	tests := []struct {
		combo   string
		want    []string
		wantErr bool
	}{
		{combo: "ctrl+shift+h", want: []string{"h", "ctrl", "shift"}},
		{combo: "Ctrl + Alt + P", want: []string{"p", "ctrl", "alt"}},
		{combo: "h+ctrl", want: []string{"h", "ctrl"}},
		{combo: "f1", want: []string{"f1"}},
		{combo: "ctrl+ctrl+q", want: []string{"q", "ctrl"}},
		{combo: "ctrl+shift", wantErr: true},
		{combo: "a+b", wantErr: true},
		{combo: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.combo, func(t *testing.T) {
			got, err := ParseCombo(tt.combo)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseCombo(%q) = %v, want error", tt.combo, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCombo(%q) error = %v", tt.combo, err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ParseCombo(%q) = %v, want %v", tt.combo, got, tt.want)
			}
		})
	}
}

func TestParseCombo_Empty(t *testing.T) {
	if _, err := ParseCombo(" + "); !errors.Is(err, ErrEmptyCombo) {
		t.Errorf("error = %v, want ErrEmptyCombo", err)
	}
}

func TestParseCombo_Default(t *testing.T) {
	if _, err := ParseCombo(DefaultCombo); err != nil {
		t.Errorf("DefaultCombo does not parse: %v", err)
	}
}
