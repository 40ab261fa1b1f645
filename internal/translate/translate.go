package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultEndpoint = "https://api.cognitive.microsofttranslator.com"

// Тексты ошибок показываются пользователю вместо перевода
var (
	ErrNotConfigured = errors.New("Error: the translation service is not configured.")
	ErrFailed        = errors.New("Error: the translation service failed.")
)

// Translator клиент Microsoft Translator
type Translator struct {
	endpoint string
	key      string
	region   string
	client   *http.Client
}

func New(key, region string) *Translator {
	return &Translator{
		endpoint: DefaultEndpoint,
		key:      key,
		region:   region,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// WithEndpoint переопределяет адрес API
func (t *Translator) WithEndpoint(endpoint string) *Translator {
	t.endpoint = strings.TrimRight(endpoint, "/")
	return t
}

func (t *Translator) Configured() bool {
	return t != nil && t.key != ""
}

type translateRequest struct {
	Text string `json:"Text"`
}

type translateResponse []struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

// Translate переводит text. Коды языков вида en_US сокращаются до en.
func (t *Translator) Translate(ctx context.Context, text, sourceLanguage, destLanguage string) (string, error) {
	if !t.Configured() {
		return "", ErrNotConfigured
	}

	q := url.Values{}
	q.Set("api-version", "3.0")
	q.Set("from", baseLanguage(sourceLanguage))
	q.Set("to", baseLanguage(destLanguage))

	body, err := json.Marshal([]translateRequest{{Text: text}})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint+"/translate?"+q.Encode(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", t.key)
	req.Header.Set("Ocp-Apim-Subscription-Region", t.region)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", errors.Join(ErrFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ErrFailed
	}

	var out translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Join(ErrFailed, err)
	}
	if len(out) == 0 || len(out[0].Translations) == 0 {
		return "", ErrFailed
	}
	return out[0].Translations[0].Text, nil
}

func baseLanguage(code string) string {
	code, _, _ = strings.Cut(code, "_")
	return code
}
