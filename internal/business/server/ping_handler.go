package server

import (
	"net/http"

	slogctx "github.com/veqryn/slog-context"
)

func pingHandlerFunc(w http.ResponseWriter, req *http.Request) {
	slogctx.Debug(req.Context(), "Answering ping")

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	_, err := w.Write([]byte("{ \"result\": \"ping\" }"))
	if err != nil {
		slogctx.Warn(req.Context(), "Failed to write ping response", "error", err)
	}
}
