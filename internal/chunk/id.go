package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// idSep separates the hash inputs so that ("ab","c") and ("a","bc") never
// produce the same digest. 0x1f is the ASCII unit separator and does not
// occur in URLs, file paths or decimal ordinals.
const idSep = "\x1f"

// ID derives the stable identifier for a segment from its source key, its
// content and its ordinal. The same inputs always produce the same id; any
// content change produces a different one. sha256 keeps accidental collisions
// negligible at database scale.
func ID(sourceKey, content string, ordinal int) string {
	h := sha256.New()
	h.Write([]byte(sourceKey))
	h.Write([]byte(idSep))
	h.Write([]byte(content))
	h.Write([]byte(idSep))
	h.Write([]byte(strconv.Itoa(ordinal)))
	return hex.EncodeToString(h.Sum(nil))
}
