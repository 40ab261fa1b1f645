package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	d := New([]string{"en", "es"})

	tests := []struct {
		name string
		text string
		want string
	}{
		{"english", "The quick brown fox jumps over the lazy dog and keeps running through the forest", "en"},
		{"spanish", "El rápido zorro marrón salta sobre el perro perezoso y sigue corriendo por el bosque", "es"},
		{"empty", "", ""},
		{"blank", "   ", ""},
		{"no letters", "12345 !!! ???", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Detect(tt.text))
		})
	}
}

func TestDetect_SingleLanguage(t *testing.T) {
	d := New([]string{"en_US"})
	assert.Equal(t, "en", d.Detect("hello there, how are you doing today"))
}

func TestNew_UnknownCodesIgnored(t *testing.T) {
	d := New([]string{"xx", ""})
	assert.Nil(t, d.opts.Whitelist)
}
