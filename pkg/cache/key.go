// Package cache computes the natural keys used by cache gates and the
// record store to recognize equivalent prior work.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// Key computes a deterministic SHA256 hash over the given parts.
// Parts are length-prefix separated so ("ab","c") and ("a","bc") differ.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		var lenBuf [8]byte
		n := len(p)
		for i := 0; i < 8; i++ {
			lenBuf[i] = byte(n >> (8 * i))
		}
		h.Write(lenBuf[:])
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// URLKey computes the natural key for a job posting URL. The URL is
// normalized (lowercased scheme and host, fragment dropped, trailing slash
// trimmed) so trivially different spellings of the same posting match.
func URLKey(rawURL string) string {
	return Key("url", NormalizeURL(rawURL))
}

// PairKey computes the natural key for a company + job title pair,
// case-insensitive and whitespace-trimmed.
func PairKey(company, title string) string {
	return Key("pair",
		strings.ToLower(strings.TrimSpace(company)),
		strings.ToLower(strings.TrimSpace(title)),
	)
}

// NormalizeURL canonicalizes a posting URL for key computation. Unparseable
// input is returned trimmed; key equality then degrades to string equality.
func NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}
