package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Header lists used when CORSConfig leaves them empty. Content-Disposition is
// exposed so exports keep their filename.
var (
	DefaultCORSAllowedHeaders = []string{"Authorization", "Content-Type", "X-Request-Id"}
	DefaultCORSExposedHeaders = []string{"Content-Disposition", "X-Request-Id"}
)

const (
	corsAllowedMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	defaultCORSMaxAge  = 10 * time.Minute
)

// CORSConfig describes which browser origins may call the API and which
// headers they may send and read. "*" in Origins echoes any Origin.
type CORSConfig struct {
	Origins        []string
	AllowedHeaders []string
	ExposedHeaders []string
	MaxAge         time.Duration
}

// Enabled reports whether any origin is configured.
func (c CORSConfig) Enabled() bool {
	for _, origin := range c.Origins {
		if strings.TrimSpace(origin) != "" {
			return true
		}
	}
	return false
}

type corsPolicy struct {
	anyOrigin bool
	origins   map[string]struct{}
	allowed   string
	exposed   string
	maxAge    string
}

func newCORSPolicy(cfg CORSConfig) corsPolicy {
	p := corsPolicy{origins: map[string]struct{}{}}
	for _, origin := range cfg.Origins {
		switch origin = strings.TrimSpace(origin); origin {
		case "":
		case "*":
			p.anyOrigin = true
		default:
			p.origins[origin] = struct{}{}
		}
	}
	p.allowed = headerList(cfg.AllowedHeaders, DefaultCORSAllowedHeaders)
	p.exposed = headerList(cfg.ExposedHeaders, DefaultCORSExposedHeaders)
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = defaultCORSMaxAge
	}
	p.maxAge = strconv.Itoa(int(maxAge / time.Second))
	return p
}

func (p corsPolicy) permits(origin string) bool {
	if p.anyOrigin {
		return true
	}
	_, ok := p.origins[origin]
	return ok
}

// headerList canonicalises and de-duplicates names, falling back to defaults
// when none survive.
func headerList(names, defaults []string) string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = http.CanonicalHeaderKey(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	if len(out) == 0 {
		return strings.Join(defaults, ", ")
	}
	return strings.Join(out, ", ")
}

// CORS applies cfg to every request. Preflights from a permitted origin end
// with 204; preflights from any other origin are refused with 403.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	policy := newCORSPolicy(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Add("Vary", "Origin")
			permitted := policy.permits(origin)
			if permitted {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Headers", policy.allowed)
				h.Set("Access-Control-Allow-Methods", corsAllowedMethods)
				h.Set("Access-Control-Expose-Headers", policy.exposed)
				h.Set("Access-Control-Max-Age", policy.maxAge)
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if !permitted {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
