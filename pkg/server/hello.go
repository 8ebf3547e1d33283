package server

import (
	"io"
	"net/http"
	"strconv"

	"brainbuddy/focusws/pkg/metrics"
)

// Greeting is the body of every answered request.
const Greeting = "Hello from uWebSockets!"

// Hello answers GET and HEAD on any path with Greeting.
func Hello() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		metrics.HelloRequests.Inc()
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(Greeting)))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = io.WriteString(w, Greeting)
	})
}
