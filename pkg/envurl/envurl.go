// Package envurl builds absolute links for the environment the shell is
// served from.
package envurl

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"strings"

	"github.com/jllopis/surveyshell/pkg/errors"
)

// Environment names a deployment.
type Environment string

const (
	Local      Environment = "local"
	Staging    Environment = "staging"
	Production Environment = "production"
)

// ParseEnvironment accepts the three known environment names, case-insensitively.
func ParseEnvironment(s string) (Environment, error) {
	switch env := Environment(strings.ToLower(strings.TrimSpace(s))); env {
	case Local, Staging, Production:
		return env, nil
	default:
		return "", errors.New(errors.CodeInvalidInput, fmt.Sprintf("unknown environment %q", s), nil)
	}
}

// Detect guesses the environment from a host name, with or without port.
// Loopback addresses, localhost and .local names are local; names with a
// "staging" or "stage" label are staging; everything else is production.
func Detect(host string) Environment {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")

	if host == "" || host == "localhost" || strings.HasSuffix(host, ".local") || strings.HasSuffix(host, ".localhost") {
		return Local
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return Local
	}
	for _, label := range strings.Split(host, ".") {
		if label == "staging" || label == "stage" || strings.HasPrefix(label, "staging-") {
			return Staging
		}
	}
	return Production
}

// Builder joins paths onto the base URL of one environment.
type Builder struct {
	env  Environment
	base *url.URL
}

// NewBuilder picks the base URL for env from bases, keyed by environment name.
func NewBuilder(env Environment, bases map[string]string) (*Builder, error) {
	raw, ok := bases[string(env)]
	if !ok || raw == "" {
		return nil, errors.New(errors.CodeNotFound, "no base url for environment", nil).
			WithContext("environment", string(env))
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, errors.New(errors.CodeInvalidInput, "invalid base url", err).
			WithContext("environment", string(env))
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.New(errors.CodeInvalidInput, "base url must be absolute", nil).
			WithContext("environment", string(env)).
			WithContext("url", raw)
	}
	return &Builder{env: env, base: base}, nil
}

// Environment returns the environment the builder targets.
func (b *Builder) Environment() Environment {
	return b.env
}

// Build returns the absolute URL for path with query appended. Query keys
// are encoded in sorted order.
func (b *Builder) Build(path string, query map[string]string) (string, error) {
	rel, err := url.Parse(path)
	if err != nil {
		return "", errors.New(errors.CodeInvalidInput, "invalid path", err).WithContext("path", path)
	}
	if rel.IsAbs() || rel.Host != "" {
		return "", errors.New(errors.CodeInvalidInput, "path must be relative", nil).WithContext("path", path)
	}

	u := b.base.JoinPath(strings.Split(strings.TrimPrefix(rel.Path, "/"), "/")...)
	values := u.Query()
	for k, vs := range rel.Query() {
		for _, v := range vs {
			values.Add(k, v)
		}
	}
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		values.Set(k, query[k])
	}
	u.RawQuery = values.Encode()
	u.Fragment = rel.Fragment
	return u.String(), nil
}
