// Package agent identifies and gates automated clients of the bridge.
//
// Assistant agents announce themselves with an X-Client-Agent header in
// RFC 8941 Dictionary form, e.g.:
//
//	X-Client-Agent: name="pos-assistant", version="1.4.0"
//
// The header is optional; when present it must parse, and its version must
// meet the configured minimum or the request is rejected with 426.
package agent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dunglas/httpsfv"
	"golang.org/x/mod/semver"
)

// ClientAgent describes a self-identified automated client.
type ClientAgent struct {
	Name    string
	Version string
}

// ParseAgentHeader parses an X-Client-Agent header value.
//
// Examples:
//   - name="pos-assistant", version="1.4.0"
//   - name="pos-assistant";channel=beta, version="2.0.0" (params ignored)
//
// Returns error if the header is empty, malformed, or missing the name key.
// Version is optional in the header; callers decide whether to require it.
func ParseAgentHeader(header string) (*ClientAgent, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, errors.New("empty X-Client-Agent header")
	}

	dict, err := httpsfv.UnmarshalDictionary([]string{header})
	if err != nil {
		return nil, fmt.Errorf("invalid X-Client-Agent header: %w", err)
	}

	name, err := stringMember(dict, "name")
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errors.New("name key not found in X-Client-Agent header")
	}

	version, err := stringMember(dict, "version")
	if err != nil {
		return nil, err
	}

	return &ClientAgent{Name: name, Version: version}, nil
}

func stringMember(dict *httpsfv.Dictionary, key string) (string, error) {
	member, ok := dict.Get(key)
	if !ok {
		return "", nil
	}

	item, ok := member.(httpsfv.Item)
	if !ok {
		return "", fmt.Errorf("%s value must be an item", key)
	}

	s, ok := item.Value.(string)
	if !ok {
		return "", fmt.Errorf("%s value must be a string", key)
	}

	return s, nil
}

// MeetsMinimum reports whether the agent's version satisfies min.
// Uses semver comparison when both sides parse as semver, otherwise
// string comparison. An agent without a version never satisfies a
// non-empty minimum.
func (a *ClientAgent) MeetsMinimum(min string) bool {
	if min == "" {
		return true
	}
	if a.Version == "" {
		return false
	}

	av := normalizeVersion(a.Version)
	mv := normalizeVersion(min)

	if !semver.IsValid(av) || !semver.IsValid(mv) {
		return a.Version >= min
	}

	return semver.Compare(av, mv) >= 0
}

// normalizeVersion adds "v" prefix if needed for semver parsing.
func normalizeVersion(v string) string {
	if v == "" {
		return "v0.0.0"
	}
	if v[0] != 'v' {
		return "v" + v
	}
	return v
}
