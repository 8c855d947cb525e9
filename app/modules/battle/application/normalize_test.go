package battleservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeGuildName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercase passthrough", input: "nightterror", want: "nightterror"},
		{name: "mixed case and spacing", input: "NIGHT   terror", want: "nightterror"},
		{name: "punctuation stripped", input: "Night-Terror!", want: "nightterror"},
		{name: "diacritics stripped", input: "Café Légión", want: "cafelegion"},
		{name: "digits kept", input: "Squad 42", want: "squad42"},
		{name: "symbols only", input: "***", want: ""},
		{name: "empty", input: "", want: ""},
		{name: "unicode letters outside ascii removed", input: "暗黑 Terror", want: "terror"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeGuildName(tt.input))
		})
	}
}

func TestNormalizeGuildNameIsProjection(t *testing.T) {
	inputs := []string{"Night Terror", "Café Légión", "SQUAD-42", "  spaced  out  "}
	for _, in := range inputs {
		once := NormalizeGuildName(in)
		assert.Equal(t, once, NormalizeGuildName(once), "normalizing twice must equal normalizing once for %q", in)
	}
}

func TestNormalizeGuildNameEquatesVariants(t *testing.T) {
	assert.Equal(t, NormalizeGuildName("Night Terror"), NormalizeGuildName("NIGHT   terror"))
	assert.Equal(t, NormalizeGuildName("Résistance"), NormalizeGuildName("resistance"))
}
