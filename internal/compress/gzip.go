// Package compress transparently decompresses gzip-encoded request bodies.
package compress

import (
	"compress/gzip"
	"net/http"
	"strings"
)

// RequestUngzipper swaps a gzip-encoded request body for its decompressed
// stream before the handler reads it. Requests without a gzip
// Content-Encoding pass through untouched.
type RequestUngzipper struct{}

func (u RequestUngzipper) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		if !strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		reader, err := gzip.NewReader(r.Body)
		if err != nil {
			http.Error(w, "Invalid gzip body", http.StatusBadRequest)
			return
		}
		defer reader.Close()

		r.Body = reader
		next.ServeHTTP(w, r)
	})
}
