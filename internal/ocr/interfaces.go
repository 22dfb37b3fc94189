// Package ocr normalizes heterogeneous extraction backends behind one
// interface. Each adapter owns its vendor's transport quirks end to end and
// converges on the canonical page/table shape; nothing vendor-specific
// leaks past this package.
package ocr

import (
	"context"

	"docflow/internal/document"
)

// Provider is the capability every extraction backend exposes. The set of
// implementations is closed (native, azure layout, mistral, marker) and
// selected by the router's enum, so there is no registration mechanism.
type Provider interface {
	// ProcessDocument fetches/submits the document at url and returns it
	// in canonical form.
	ProcessDocument(ctx context.Context, url string, opts document.Options) (*document.NormalizedDocument, error)
	// ExtractPage returns a single 1-indexed page in canonical form.
	ExtractPage(ctx context.Context, url string, pageNumber int) (document.PageContent, error)
	// Name reports the provider tag stamped into document metadata.
	Name() document.Provider
}

// Registry maps the router's provider enum to concrete adapters.
type Registry map[document.Provider]Provider

func (r Registry) Get(p document.Provider) (Provider, bool) {
	prov, ok := r[p]
	return prov, ok
}
