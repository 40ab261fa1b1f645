package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
)

// Client реализация Indexer поверх Elasticsearch.
// Клиент без адреса считается ненастроенным: запись молча пропускается, поиск пуст.
type Client struct {
	es *elasticsearch.Client
}

func NewClient(url string) (*Client, error) {
	if url == "" {
		return &Client{}, nil
	}
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return &Client{es: es}, nil
}

func (c *Client) Configured() bool {
	return c != nil && c.es != nil
}

func (c *Client) Add(ctx context.Context, index, id string, doc map[string]any) error {
	if !c.Configured() {
		return nil
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	res, err := c.es.Index(index, bytes.NewReader(body),
		c.es.Index.WithDocumentID(id),
		c.es.Index.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return responseError("index", res.StatusCode, res.Body)
	}
	return nil
}

func (c *Client) Remove(ctx context.Context, index, id string) error {
	if !c.Configured() {
		return nil
	}

	res, err := c.es.Delete(index, id, c.es.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()

	// Документа могло и не быть в индексе
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		return responseError("delete", res.StatusCode, res.Body)
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

func (c *Client) Query(ctx context.Context, index, query string, page, perPage int) ([]string, int64, error) {
	if !c.Configured() {
		return []string{}, 0, nil
	}
	if page < 1 {
		page = 1
	}

	var buf bytes.Buffer
	q := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"*"},
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, 0, err
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(&buf),
		c.es.Search.WithFrom((page-1)*perPage),
		c.es.Search.WithSize(perPage),
	)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	// Индекс ещё не создан: ни одного документа не проиндексировано
	if res.StatusCode == http.StatusNotFound {
		return []string{}, 0, nil
	}
	if res.IsError() {
		return nil, 0, responseError("search", res.StatusCode, res.Body)
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, 0, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]string, 0, len(sr.Hits.Hits))
	for _, hit := range sr.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, sr.Hits.Total.Value, nil
}

func responseError(op string, status int, body io.Reader) error {
	msg, _ := io.ReadAll(io.LimitReader(body, 512))
	return fmt.Errorf("elasticsearch %s: status %d: %s", op, status, bytes.TrimSpace(msg))
}
