// Package site serves the embedded chart UI.
package site

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Register serves the embedded UI at / and its assets below it. API routes
// registered on r take precedence over the catch-all.
func Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}

	files := http.FileServer(FS())
	r.Handle("/*", files)
}
