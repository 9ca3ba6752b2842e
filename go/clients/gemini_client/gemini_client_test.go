package gemini_client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mcdev12/auctionroom/go/clients"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func TestGenerateText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		check.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		check.Equal(t, "secret", r.Header.Get(APIKeyHeader))
		check.Equal(t, http.MethodPost, r.Method)

		var req GenerateContentRequest
		check.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		check.Equal(t, "hello", req.Contents[0].Parts[0].Text)
		check.Equal(t, 0.8, req.GenerationConfig.Temperature)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Sold! "},{"text":"What a buy."}]}}]}`))
	}))
	defer srv.Close()

	c := NewGeminiClientWithBaseURL(srv.URL+"/", "secret", "test-model")
	text, err := c.GenerateText(context.Background(), "hello", 0.8)
	assert.NoError(t, err)
	check.Equal(t, "Sold! What a buy.", text)
}

func TestGenerateTextErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models/empty:generateContent" {
			_, _ = w.Write([]byte(`{"candidates":[]}`))
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`quota`))
	}))
	defer srv.Close()

	_, err := NewGeminiClientWithBaseURL(srv.URL+"/", "k", "limited").GenerateText(context.Background(), "x", 0)
	var statusErr *clients.StatusError
	assert.True(t, errors.As(err, &statusErr))
	check.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	check.Equal(t, "quota", statusErr.Body)

	_, err = NewGeminiClientWithBaseURL(srv.URL+"/", "k", "empty").GenerateText(context.Background(), "x", 0)
	check.True(t, errors.Is(err, ErrEmptyResponse))
}
