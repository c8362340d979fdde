package cors

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/corsgate/corsgate/pkg/stream"
	"github.com/mitchellh/mapstructure"
)

const (
	HeaderAllowOrigin      = "Access-Control-Allow-Origin"
	HeaderAllowCredentials = "Access-Control-Allow-Credentials"
	HeaderAllowMethods     = "Access-Control-Allow-Methods"
	HeaderAllowHeaders     = "Access-Control-Allow-Headers"
	HeaderExposeHeaders    = "Access-Control-Expose-Headers"
	HeaderMaxAge           = "Access-Control-Max-Age"
	HeaderRequestMethod    = "Access-Control-Request-Method"
	HeaderVary             = "Vary"
)

const defaultMaxAge = 600 * time.Second

type Config struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	ExposeHeaders    []string `mapstructure:"expose_headers"`
	MaxAge           string   `mapstructure:"max_age"`
}

func (c Config) Validate() error {
	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("allowed_origins must contain at least one origin (use [\"*\"] to allow all)")
	}
	for _, origin := range c.AllowedOrigins {
		if origin == "*" {
			continue
		}
		parsed, err := url.Parse(origin)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("invalid origin format: %q", origin)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("origin must use http or https scheme: %q", origin)
		}
	}

	allowedHTTPMethods := map[string]struct{}{
		"GET": {}, "POST": {}, "PUT": {}, "DELETE": {},
		"OPTIONS": {}, "HEAD": {}, "PATCH": {},
	}
	for _, method := range c.AllowedMethods {
		if _, ok := allowedHTTPMethods[strings.ToUpper(method)]; !ok {
			return fmt.Errorf("invalid HTTP method in allowed_methods: %q", method)
		}
	}

	if c.MaxAge != "" {
		if _, err := time.ParseDuration(c.MaxAge); err != nil {
			return fmt.Errorf("invalid max_age value: %v", err)
		}
	}

	return nil
}

// Policy is the compiled, immutable form of a Config. It is built once at
// startup and read concurrently by every request without synchronization.
type Policy struct {
	allowAll    bool
	origins     map[string]struct{}
	credentials bool
	methods     string
	headers     string
	expose      string
	maxAge      string
}

func NewPolicy(cfg Config) (*Policy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Policy{
		origins:     make(map[string]struct{}, len(cfg.AllowedOrigins)),
		credentials: cfg.AllowCredentials,
		methods:     strings.Join(cfg.AllowedMethods, ", "),
		headers:     strings.Join(cfg.AllowedHeaders, ", "),
		expose:      strings.Join(cfg.ExposeHeaders, ", "),
	}

	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			p.allowAll = true
			continue
		}
		p.origins[strings.ToLower(origin)] = struct{}{}
	}

	maxAge := defaultMaxAge
	if cfg.MaxAge != "" {
		d, err := time.ParseDuration(cfg.MaxAge)
		if err != nil {
			return nil, fmt.Errorf("invalid max_age value: %v", err)
		}
		maxAge = d
	}
	p.maxAge = strconv.Itoa(int(maxAge.Seconds()))

	return p, nil
}

// FromSettings builds a Policy from a loosely typed settings map, the shape
// used by plugin-style configuration payloads.
func FromSettings(settings map[string]interface{}) (*Policy, error) {
	var cfg Config
	if err := mapstructure.Decode(settings, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode cors settings: %v", err)
	}
	return NewPolicy(cfg)
}

// IsAllowed reports whether the given origin passes the policy.
func (p *Policy) IsAllowed(origin string) bool {
	if p.allowAll {
		return true
	}
	_, ok := p.origins[strings.ToLower(origin)]
	return ok
}

// Resolve computes the ordered header set to inject for a request carrying
// the given origin. The result may be empty (origin not allowed and no
// credential or verbatim headers configured); an absent Allow-Origin header
// is the denial signal, never an error.
//
// The credentialed rule takes precedence over the wildcard: a credentialed
// response must mirror the literal origin, so "*" is never emitted when
// credentials are enabled.
func (p *Policy) Resolve(origin string) []stream.Header {
	var headers []stream.Header

	switch {
	case p.credentials:
		if origin != "" && p.IsAllowed(origin) {
			headers = append(headers,
				stream.Header{Name: HeaderAllowOrigin, Value: origin},
				stream.Header{Name: HeaderVary, Value: "Origin"},
			)
		}
		headers = append(headers, stream.Header{Name: HeaderAllowCredentials, Value: "true"})
	case p.allowAll:
		headers = append(headers, stream.Header{Name: HeaderAllowOrigin, Value: "*"})
	default:
		if origin != "" && p.IsAllowed(origin) {
			headers = append(headers,
				stream.Header{Name: HeaderAllowOrigin, Value: origin},
				stream.Header{Name: HeaderVary, Value: "Origin"},
			)
		}
	}

	if p.methods != "" {
		headers = append(headers, stream.Header{Name: HeaderAllowMethods, Value: p.methods})
	}
	if p.headers != "" {
		headers = append(headers, stream.Header{Name: HeaderAllowHeaders, Value: p.headers})
	}
	if p.expose != "" {
		headers = append(headers, stream.Header{Name: HeaderExposeHeaders, Value: p.expose})
	}

	return headers
}
