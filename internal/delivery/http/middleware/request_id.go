package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jaevor/go-nanoid"
)

const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID reuses an inbound X-Request-ID or generates a nanoid, and echoes it back.
func RequestID() (func(http.Handler) http.Handler, error) {
	generate, err := nanoid.Standard(21)
	if err != nil {
		return nil, fmt.Errorf("failed to create request id generator: %w", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = generate()
			}
			w.Header().Set(RequestIDHeader, id)
			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}, nil
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
