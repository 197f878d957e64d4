package utils

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// JoinBytes renders b the way the node spells datastore keys: decimal byte
// values joined by commas, e.g. "110,97".
func JoinBytes(b []byte) string {
	var sb strings.Builder
	for i, v := range b {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(int(v)))
	}
	return sb.String()
}

// DecodeDatastoreKey turns a comma-joined byte list back into bytes.
// Anything that is not such a list is returned as its literal text and ok is false.
func DecodeDatastoreKey(raw string) (key []byte, ok bool) {
	if raw == "" {
		return []byte{}, false
	}
	parts := strings.Split(raw, ",")
	out := make([]byte, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return []byte(raw), false
		}
		out = append(out, byte(n))
	}
	return out, true
}

// DecodeUTF8 converts b to a string, replacing every invalid byte with U+FFFD.
func DecodeUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		sb.WriteRune(r)
		b = b[size:]
	}
	return sb.String()
}
