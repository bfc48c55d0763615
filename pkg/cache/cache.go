// Package cache provides byte-oriented caching for pipeline artifacts.
//
// Simplifying a metropolitan extract costs seconds to minutes; the result
// for a given extract and option set never changes. Backends store the
// serialized graph (and rendered images) keyed by content fingerprints so
// repeat runs skip straight to export.
//
// Three backends are provided: [FileCache] for local CLI use, [RedisCache]
// for shared deployments, and [NullCache] to disable caching.
package cache

import (
	"context"
	"time"
)

// Default retention for cached pipeline artifacts.
const (
	// TTLGraph applies to simplified graphs. Extracts change rarely, so
	// repeat runs over the same region stay warm for a week.
	TTLGraph = 7 * 24 * time.Hour

	// TTLArtifact applies to rendered artifacts, which are cheap to
	// rebuild from a cached graph.
	TTLArtifact = 24 * time.Hour
)

// Cache stores opaque byte blobs under string keys with optional expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero or negative ttl means the entry never
	// expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys for pipeline artifacts. Keys are stable across
// runs for identical inputs and differ whenever an option that shapes the
// artifact differs.
type Keyer interface {
	// GraphKey identifies a simplified graph by the fingerprint of its
	// source extract and the options that shape the simplification.
	GraphKey(sourceHash string, opts GraphKeyOpts) string

	// ArtifactKey identifies a rendered artifact by the fingerprint of
	// the graph it draws and the render options.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// GraphKeyOpts are the inputs that change simplification output.
type GraphKeyOpts struct {
	Keep      []string
	Drop      []string
	MaxPasses int
}

// ArtifactKeyOpts are the inputs that change rendered output.
type ArtifactKeyOpts struct {
	Format string
	Labels bool
	Width  float64
}

// DefaultKeyer hashes option structs into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// GraphKey generates a key for simplified-graph caching.
func (k *DefaultKeyer) GraphKey(sourceHash string, opts GraphKeyOpts) string {
	return hashKey("graph:"+sourceHash, opts)
}

// ArtifactKey generates a key for rendered-artifact caching.
func (k *DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+graphHash, opts)
}
