// Package lang определяет язык текста поста.
package lang

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// MinConfidence порог уверенности, ниже которого язык считается неопределённым
const MinConfidence = 0.5

// Detector определяет язык среди поддерживаемых приложением
type Detector struct {
	opts whatlanggo.Options
}

// New принимает коды ISO 639-1 (LANGUAGES). Неизвестные коды пропускаются,
// пустой список означает любой язык.
func New(languages []string) *Detector {
	whitelist := make(map[whatlanggo.Lang]bool, len(languages))
	for _, code := range languages {
		if l, ok := fromIso6391(code); ok {
			whitelist[l] = true
		}
	}
	d := &Detector{}
	if len(whitelist) > 0 {
		d.opts.Whitelist = whitelist
	}
	return d
}

// Detect возвращает код ISO 639-1 или пустую строку для пустого и неопознанного текста
func (d *Detector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	info := whatlanggo.DetectWithOptions(text, d.opts)
	if info.Lang < 0 || info.Confidence < MinConfidence {
		return ""
	}
	return info.Lang.Iso6391()
}

func fromIso6391(code string) (whatlanggo.Lang, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "_-"); i > 0 {
		code = code[:i]
	}
	if code == "" {
		return 0, false
	}
	for l := whatlanggo.Afr; l <= whatlanggo.Zul; l++ {
		if l.Iso6391() == code {
			return l, true
		}
	}
	return 0, false
}
