package util

import "github.com/google/uuid"

// GenerateID returns a random version-4 UUID, optionally prefixed with
// "<prefix>_". The underlying source is crypto/rand, so uniqueness is
// probabilistic on 122 random bits; no existence check is made against
// the store.
func GenerateID(prefix string) string {
	id := uuid.NewString()
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
