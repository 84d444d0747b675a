package digest

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"sort"
	"sync"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
)

// DefaultAlgorithm is used when no algorithm is configured.
const DefaultAlgorithm = "sha256"

// HexLen is the width of every digest field in a manifest. All registered
// algorithms produce 256-bit output.
const HexLen = 64

// Factory creates a fresh hash state.
type Factory func() hash.Hash

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a named algorithm. It replaces any existing registration
// with the same name. The factory must produce a 32-byte digest, otherwise
// Register panics, since manifests assume fixed-width 64-character hex.
func Register(name string, factory Factory) {
	if size := factory().Size(); size*2 != HexLen {
		panic(fmt.Sprintf("digest: algorithm %q has %d-byte output, want %d", name, size, HexLen/2))
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown digest algorithm %q (available: %v)", name, availableLocked())
	}
	return factory, nil
}

// Available returns the sorted names of all registered algorithms.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return availableLocked()
}

func availableLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register("sha256", sha256.New)
	Register("blake3", func() hash.Hash { return blake3.New() })
	Register("sha3-256", func() hash.Hash { return sha3.New256() })
}
