package helpers

import (
	"crypto/md5"  //nolint:gosec
	"crypto/sha1" //nolint:gosec
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"hash"
	"strings"
)

// DigestAlgorithms maps RFC 3230 digest algorithm names to hash constructors.
var DigestAlgorithms = map[string]func() hash.Hash{ //nolint:gochecknoglobals
	"md5":     md5.New,
	"sha":     sha1.New,
	"sha-256": sha256.New,
	"sha-512": sha512.New,
}

// Digest returns the base64 digest of data for an RFC 3230 algorithm name.
func Digest(algorithm string, data []byte) (string, error) {
	newHash, ok := DigestAlgorithms[strings.ToLower(algorithm)]
	if !ok {
		return "", fmt.Errorf("unsupported digest algorithm %q", algorithm)
	}
	h := newHash()
	_, _ = h.Write(data)
	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

// DigestHeader formats a Digest header value, e.g. "sha=F6Q...".
func DigestHeader(algorithm string, data []byte) string {
	d, err := Digest(algorithm, data)
	if err != nil {
		return ""
	}
	return strings.ToLower(algorithm) + "=" + d
}

// ParseDigestHeader splits a Digest header into algorithm/value pairs. Algorithm names are
// lowercased; q-values in Want-Digest style lists are dropped.
func ParseDigestHeader(header string) map[string]string {
	ret := make(map[string]string)
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if i := strings.Index(part, ";"); i >= 0 {
			part = part[:i]
		}
		alg, value, _ := strings.Cut(part, "=")
		ret[strings.ToLower(strings.TrimSpace(alg))] = strings.TrimSpace(value)
	}
	return ret
}
