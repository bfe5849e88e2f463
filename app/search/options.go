package search

import (
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/rerootagency/esquery/app/search/index"
)

// DefaultChunkSize is the number of documents sent in one bulk request
const DefaultChunkSize = 1000

// Option func type
type Option func(b *Builder)

// WithLogger sets logger, lgr.Printf used by default
func WithLogger(l lgr.L) Option {
	return func(b *Builder) {
		if l != nil {
			b.l = l
		}
	}
}

// WithChunkSize sets bulk chunk size, non-positive size ignored
func WithChunkSize(size int) Option {
	return func(b *Builder) {
		if size > 0 {
			b.chunkSize = size
		}
	}
}

// WithRegistry sets descriptors used by ForName
func WithRegistry(r *index.Registry) Option {
	return func(b *Builder) {
		b.registry = r
	}
}

// WithIndexCache remembers existing indices for ttl, so writes skip the exists check.
// Index dropped outside of the builder stays known until ttl expires.
func WithIndexCache(ttl time.Duration) Option {
	return func(b *Builder) {
		b.cacheTTL = ttl
	}
}
