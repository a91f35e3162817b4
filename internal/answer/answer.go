// Package answer composes a retrieval-augmented answer: top-k chunks from
// the store become the context for a streamed chat completion against an
// OpenAI-compatible endpoint.
package answer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"text-indexer/internal/config"
	"text-indexer/internal/store"
)

const contextSeparator = "\n---\n"

type Answerer struct {
	store store.Store
	cfg   *config.AnswerConfig
}

func New(st store.Store, cfg *config.AnswerConfig) *Answerer {
	return &Answerer{store: st, cfg: cfg}
}

// Ask retrieves the k most similar chunks (optionally restricted by a
// metadata filter) and streams a completion grounded in them. The retrieved
// chunks are returned alongside the answer for attribution.
func (a *Answerer) Ask(ctx context.Context, collection, question string, k int, filter map[string]string) (string, []store.Result, error) {
	docs, err := a.store.Query(ctx, collection, question, k, filter)
	if err != nil {
		return "", nil, err
	}
	if len(docs) == 0 {
		return "", nil, fmt.Errorf("no indexed content matched the question")
	}

	var contextBlock strings.Builder
	for i, doc := range docs {
		if i > 0 {
			contextBlock.WriteString(contextSeparator)
		}
		contextBlock.WriteString(doc.Content)
	}

	answer, err := a.complete(ctx, question, contextBlock.String())
	if err != nil {
		return "", docs, err
	}
	return answer, docs, nil
}

func (a *Answerer) complete(ctx context.Context, question, contextBlock string) (string, error) {
	payload := struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		Stream bool `json:"stream"`
	}{
		Model: a.cfg.Model,
		Messages: []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}{
			{Role: "system", Content: "You are a helpful assistant. Use the provided context to answer the query."},
			{Role: "user", Content: fmt.Sprintf("Context:\n%s\nQuery: %s", contextBlock, question)},
		},
		Stream: true,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/v1/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimPrefix(os.Getenv(a.cfg.APIKeyEnv), "Bearer "))
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: time.Duration(a.cfg.TimeoutSecs) * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("request failed: %d, %s", resp.StatusCode, string(body))
	}

	var response strings.Builder
	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return "", err
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if line == "data: [DONE]" {
			break
		}
		if strings.HasPrefix(line, "data: ") {
			data := strings.TrimPrefix(line, "data: ")
			var delta struct {
				Choices []struct {
					Delta struct {
						Content string `json:"content"`
					} `json:"delta"`
				} `json:"choices"`
			}
			if err := json.Unmarshal([]byte(data), &delta); err != nil {
				continue
			}
			if len(delta.Choices) > 0 && delta.Choices[0].Delta.Content != "" {
				response.WriteString(delta.Choices[0].Delta.Content)
			}
		}
	}

	return response.String(), nil
}
