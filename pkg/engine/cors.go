// CORS policy derivation and middleware for the mock server.

package engine

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/staticmock/staticmock/pkg/config"
)

// corsPolicy is the immutable CORS policy derived from a configuration
// snapshot at server start. Origins are kept as a list; the allow-origin
// header is resolved per request against the caller's Origin header.
type corsPolicy struct {
	enabled  bool
	allowAll bool
	origins  []string
	methods  string
	headers  string
	maxAge   string
}

// buildCORSPolicy derives the policy per the configured mode.
//
// Simple mode allows everything. Advanced mode uses the configured lists:
// a list containing "*" degrades that dimension to wildcard, entries that
// fail to parse are skipped, and a nil list is treated as wildcard. When
// every configured origin is invalid the policy degrades to no CORS at
// all rather than failing the start.
func buildCORSPolicy(cfg *config.ServerConfig) corsPolicy {
	maxAge := cfg.CORSMaxAge
	if maxAge < 0 {
		maxAge = config.DefaultCORSMaxAge
	}
	p := corsPolicy{enabled: true, maxAge: strconv.Itoa(maxAge)}

	if cfg.CORSMode != config.CORSModeAdvanced {
		p.allowAll = true
		p.methods, p.headers = "*", "*"
		return p
	}

	p.allowAll, p.origins = filterOrigins(cfg.CORSOrigins)
	p.methods = joinDimension(cfg.CORSMethods, validToken)
	p.headers = joinDimension(cfg.CORSHeaders, validToken)

	if !p.allowAll && len(p.origins) == 0 {
		// Origins were configured but none survived parsing.
		return corsPolicy{}
	}
	return p
}

// filterOrigins keeps the configured origins that parse. A nil list or a
// list containing "*" means any origin is allowed.
func filterOrigins(list []string) (allowAll bool, kept []string) {
	if list == nil {
		return true, nil
	}
	kept = make([]string, 0, len(list))
	for _, item := range list {
		item = strings.TrimSpace(item)
		if item == "*" {
			return true, nil
		}
		if validOrigin(item) {
			kept = append(kept, item)
		}
	}
	return false, kept
}

// allowOriginValue returns the Access-Control-Allow-Origin value for a
// request from origin, or "" when the origin is not allowed. The single
// matching origin is echoed back rather than the whole configured list.
func (p corsPolicy) allowOriginValue(origin string) string {
	if p.allowAll {
		return "*"
	}
	for _, allowed := range p.origins {
		if allowed == origin {
			return origin
		}
	}
	return ""
}

// joinDimension filters one configured list through valid and joins the
// survivors. nil lists and lists containing "*" yield the wildcard.
func joinDimension(list []string, valid func(string) bool) string {
	if list == nil {
		return "*"
	}
	kept := make([]string, 0, len(list))
	for _, item := range list {
		item = strings.TrimSpace(item)
		if item == "*" {
			return "*"
		}
		if valid(item) {
			kept = append(kept, item)
		}
	}
	return strings.Join(kept, ", ")
}

func validOrigin(o string) bool {
	u, err := url.Parse(o)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" && u.Path == ""
}

// validToken reports whether s is a valid HTTP token (RFC 9110 tchar).
func validToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case strings.IndexByte("!#$%&'*+-.^_`|~", c) >= 0:
		default:
			return false
		}
	}
	return true
}

// corsMiddleware applies the policy headers to every response and answers
// preflight requests.
func corsMiddleware(p corsPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !p.enabled {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			if !p.allowAll {
				// Response depends on the caller's Origin header.
				h.Add("Vary", "Origin")
			}
			if allowOrigin := p.allowOriginValue(r.Header.Get("Origin")); allowOrigin != "" {
				h.Set("Access-Control-Allow-Origin", allowOrigin)
			}
			if p.methods != "" {
				h.Set("Access-Control-Allow-Methods", p.methods)
			}
			if p.headers != "" {
				h.Set("Access-Control-Allow-Headers", p.headers)
			}
			h.Set("Access-Control-Max-Age", p.maxAge)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
