package anubis

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
)

func isCircuitFailure(err error) bool {
	return errors.Is(err, errAnubisTransient)
}

// principalKey keys the principal cache by token digest so raw tokens never
// sit in memory longer than the request.
func principalKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "principal:" + hex.EncodeToString(sum[:])
}

// resolveIntrospectURL joins the introspection path onto the base URL. An
// absolute path wins over the base.
func resolveIntrospectURL(baseURL, path string) string {
	baseURL = strings.TrimSpace(baseURL)
	path = strings.TrimSpace(path)
	if path == "" {
		return strings.TrimSuffix(baseURL, "/")
	}

	ref, err := url.Parse(path)
	if err != nil {
		return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	}
	if ref.IsAbs() {
		return ref.String()
	}

	base, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	}
	return base.ResolveReference(&url.URL{Path: strings.TrimPrefix(ref.Path, "/"), RawQuery: ref.RawQuery}).String()
}
