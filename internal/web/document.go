package web

import (
	"encoding/hex"
	"io"
	"net/http"

	"github.com/example/salon-agenda/internal/schedule"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

const maxDocumentBytes = 8 << 20

// handleDocument serves the persisted document shape from memory and accepts
// full-document replacement, so another instance can use this URL as its
// http(s) DATA_URL.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		body, err := s.Store.Document()
		if err != nil {
			writeErr(w, err, http.StatusInternalServerError)
			return
		}
		tag := etag(body)
		w.Header().Set("ETag", tag)
		w.Header().Set("Cache-Control", "no-cache")
		if r.Header.Get("If-None-Match") == tag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = w.Write(body)
		}
	case http.MethodPost, http.MethodPut:
		b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
		if err != nil {
			writeErr(w, err, http.StatusRequestEntityTooLarge)
			return
		}
		appts, err := schedule.DecodeDocument(b)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "malformed document"})
			return
		}
		s.Store.Replace(appts)
		if err := s.Store.Save(r.Context()); err != nil {
			s.Log.Warn("document replaced in memory only", zap.Error(err))
		}
		body, _ := s.Store.Document()
		w.Header().Set("ETag", etag(body))
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST, PUT")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func etag(body []byte) string {
	sum := blake2b.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}
