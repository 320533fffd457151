package chatgpt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/lumee/internal/infra/httpx"
)

func TestCreateChatCompletionWithTools(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "gpt-test", req.Model)
		require.Len(t, req.Tools, 1)
		require.Equal(t, "auto", req.ToolChoice)

		_, _ = w.Write([]byte(`{
			"choices":[{"message":{"role":"assistant","content":"","tool_calls":[
				{"id":"call_1","type":"function","function":{"name":"get_weather","arguments":"{\"location\":\"서울\"}"}}
			]}}],
			"usage":{"prompt_tokens":12,"completion_tokens":5,"total_tokens":17}
		}`))
	}))
	defer server.Close()

	client, err := NewClient("test-key", server.URL+"/", nil)
	require.NoError(t, err)

	resp, err := client.CreateChatCompletion(context.Background(), ChatCompletionRequest{
		Model:      "gpt-test",
		Messages:   []Message{{Role: "user", Content: "서울 날씨"}},
		Tools:      []Tool{{Type: "function", Function: ToolFunction{Name: "get_weather"}}},
		ToolChoice: "auto",
	})
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	calls := resp.Choices[0].Message.ToolCalls
	require.Len(t, calls, 1)
	require.Equal(t, "get_weather", calls[0].Function.Name)
	require.Equal(t, 17, resp.Usage.TotalTokens)
}

func TestCreateChatCompletionErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewClient("test-key", server.URL, nil)
	require.NoError(t, err)

	_, err = client.CreateChatCompletion(context.Background(), ChatCompletionRequest{Model: "gpt-test"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 401")

	_, err = NewClient(" ", "", nil)
	require.Error(t, err)
}

func TestErrorMessage(t *testing.T) {
	quota := &httpx.StatusError{Status: http.StatusTooManyRequests, Body: `{"error":{"message":"You exceeded your current quota","type":"insufficient_quota"}}`}
	require.Equal(t, "You exceeded your current quota", ErrorMessage(fmt.Errorf("post chat completion: %w", quota)))

	plain := &httpx.StatusError{Status: http.StatusUnauthorized, Body: `{"error":"bad key"}`}
	require.Equal(t, "bad key", ErrorMessage(plain))

	html := &httpx.StatusError{Status: http.StatusBadGateway, Body: `<html>`}
	require.Equal(t, "upstream returned status 502: <html>", ErrorMessage(html))

	require.Equal(t, "dial tcp: refused", ErrorMessage(errors.New("dial tcp: refused")))
	require.Empty(t, ErrorMessage(nil))
}
