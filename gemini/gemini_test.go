package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// fakeAPI serves just enough of the Gemini REST surface for the adapters:
// embedding calls get one two-dimensional vector per request and every
// other call gets a text candidate.
type fakeAPI struct {
	text   string
	status int // non-zero forces an error response

	calls    atomic.Int32
	lastBody atomic.Value // map[string]any
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)

	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	f.lastBody.Store(body)

	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": f.status, "message": "fake failure", "status": "FAILED"},
		})
		return
	}

	if strings.Contains(strings.ToLower(r.URL.Path), "embed") {
		n := 1
		if reqs, ok := body["requests"].([]any); ok {
			n = len(reqs)
		}
		embeddings := make([]map[string]any, n)
		for i := range embeddings {
			embeddings[i] = map[string]any{"values": []float32{float32(i), 1}}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": embeddings})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{
				"role":  "model",
				"parts": []any{map[string]any{"text": f.text}},
			},
		}},
	})
}

func newTestClient(t *testing.T, api *fakeAPI) *genai.Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
	})
	require.NoError(t, err)
	return client
}
