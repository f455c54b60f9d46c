package hasher

import (
	"crypto/sha256"
	"encoding/hex"
)

// AnonymousIP is the fixed value emitted when no client IP is available.
const AnonymousIP = "anonymous"

// IPHash returns a stable, non-reversible token for a client IP. The salt
// keeps hashes unlinkable across deployments; the same salt and IP always
// produce the same token. Raw IPs must never reach a log line or a storage
// key, so callers hash before use.
func IPHash(salt, ip string) string {
	if ip == "" {
		return AnonymousIP
	}

	sum := sha256.Sum256([]byte(salt + "|" + ip))
	return hex.EncodeToString(sum[:16])
}
