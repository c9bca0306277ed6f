package integration

import (
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/testutil"
)

// ollamaSettings returns the server and model the Ollama tests run against
func ollamaSettings() (url, model string) {
	url = os.Getenv("OLLAMA_HOST")
	if url == "" {
		url = "http://localhost:11434"
	}
	model = os.Getenv("OLLAMA_DEFAULT_MODEL")
	if model == "" {
		model = "qwen3:latest" // default
	}
	return url, model
}

// integrationEnabled reports whether tests needing live services may run
func integrationEnabled() bool {
	return os.Getenv("INTEGRATION_TEST") == "true"
}

// agentServer is a stand-in agent endpoint. It answers every POST with text
// cut into pieces of chunkSize bytes, flushing after each piece.
func agentServer(text string, chunkSize int, pause time.Duration) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, _ := w.(http.Flusher)
		for _, piece := range testutil.SplitBytes(text, chunkSize) {
			if _, err := w.Write([]byte(piece)); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
			select {
			case <-time.After(pause):
			case <-r.Context().Done():
				return
			}
		}
	}))
}
