package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Keyer builds cache keys.
type Keyer interface {
	// ThumbKey is the key of a downloaded thumbnail.
	ThumbKey(url string) string

	// ViewKey is the key of a saved grid view.
	ViewKey(id string) string
}

// Keys is the standard Keyer. A non-empty Prefix scopes every key, so
// several report sources or deployments can share one backend:
//
//	k := cache.NewScopedKeyer("season-2024:")
//	k.ViewKey("abc") // "season-2024:view:abc"
type Keys struct {
	Prefix string
}

// NewDefaultKeyer returns an unscoped Keyer.
func NewDefaultKeyer() Keyer { return Keys{} }

// NewScopedKeyer returns a Keyer that prepends prefix to every key.
func NewScopedKeyer(prefix string) Keyer { return Keys{Prefix: prefix} }

// ThumbKey hashes the URL so arbitrary URLs make safe keys.
func (k Keys) ThumbKey(url string) string {
	return k.Prefix + "thumb:" + digest(url)[:32]
}

// ViewKey keeps view IDs readable.
func (k Keys) ViewKey(id string) string {
	return k.Prefix + "view:" + id
}

// KeyType returns the kind segment of key ("thumb", "view"), skipping any
// scope prefix. It labels cache metrics.
func KeyType(key string) string {
	last := strings.LastIndexByte(key, ':')
	if last < 0 {
		return key
	}
	return key[strings.LastIndexByte(key[:last], ':')+1 : last]
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
