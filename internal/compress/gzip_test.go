package compress

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func echoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Write(body)
	})
}

func TestRequestUngzipper(t *testing.T) {

	handler := RequestUngzipper{}.Handle(echoHandler())

	t.Run("gzip body is decompressed", func(t *testing.T) {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		_, err := zw.Write([]byte(`{"tenderNumber": "GEM/2025/B/001"}`))
		assert.NoError(t, err)
		assert.NoError(t, zw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/tenders", &buf)
		req.Header.Set("Content-Encoding", "gzip")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, `{"tenderNumber": "GEM/2025/B/001"}`, w.Body.String())
	})

	t.Run("plain body passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/tenders", strings.NewReader("plain"))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "plain", w.Body.String())
	})

	t.Run("broken gzip body is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/tenders", strings.NewReader("not gzip"))
		req.Header.Set("Content-Encoding", "gzip")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
