package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

var gzipWriterPool = sync.Pool{
	New: func() any {
		gz, _ := gzip.NewWriterLevel(io.Discard, gzip.DefaultCompression)
		return gz
	},
}

// Compression gzips JSON responses for clients that accept it. The choice
// is made on the first write, once the handler has set its headers.
func Compression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Add("Vary", "Accept-Encoding")

		gw := &gzipResponseWriter{ResponseWriter: w}
		defer gw.finish()
		next.ServeHTTP(gw, r)
	})
}

// gzipResponseWriter compresses only when the response turns out to be a
// JSON body.
type gzipResponseWriter struct {
	http.ResponseWriter
	gz          *gzip.Writer
	decided     bool
	wroteHeader bool
	status      int
}

func (w *gzipResponseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = status
}

func (w *gzipResponseWriter) decide() {
	if w.decided {
		return
	}
	w.decided = true
	if w.status == 0 {
		w.status = http.StatusOK
	}

	h := w.Header()
	compressible := w.status != http.StatusNoContent &&
		w.status != http.StatusNotModified &&
		h.Get("Content-Encoding") == "" &&
		strings.HasPrefix(h.Get("Content-Type"), "application/json")
	if compressible {
		h.Set("Content-Encoding", "gzip")
		h.Del("Content-Length")
		w.gz = gzipWriterPool.Get().(*gzip.Writer)
		w.gz.Reset(w.ResponseWriter)
	}
	w.ResponseWriter.WriteHeader(w.status)
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	w.decide()
	if w.gz == nil {
		return w.ResponseWriter.Write(b)
	}
	return w.gz.Write(b)
}

// Flush pushes buffered compressed bytes to the client.
func (w *gzipResponseWriter) Flush() {
	w.decide()
	if w.gz != nil {
		_ = w.gz.Flush()
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// finish writes the header for empty responses and returns the gzip writer
// to the pool.
func (w *gzipResponseWriter) finish() {
	if !w.decided {
		if !w.wroteHeader {
			return
		}
		// A status without a body is never compressed.
		w.decided = true
		w.ResponseWriter.WriteHeader(w.status)
		return
	}
	if w.gz != nil {
		_ = w.gz.Close()
		gzipWriterPool.Put(w.gz)
		w.gz = nil
	}
}

// CacheControl lets clients cache directory reads; donor and request data
// is always revalidated.
func CacheControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isDirectoryRead(r) {
			w.Header().Set("Cache-Control", "public, max-age=300, must-revalidate")
		} else {
			w.Header().Set("Cache-Control", "private, no-cache, must-revalidate")
		}
		next.ServeHTTP(w, r)
	})
}

// ResponseOptimization combines cache headers and compression
func ResponseOptimization(next http.Handler) http.Handler {
	return CacheControl(Compression(next))
}
