package http

// Parsing of request bodies and query parameters into domain values.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"parishfinance/internal/core"
	"parishfinance/internal/shell"
)

// maxBodyBytes caps form and JSON bodies.
const maxBodyBytes = 64 << 10

var ErrBodyTooLarge = errors.New("request body too large")

// RequestBodyParser reads a request body once and exposes its values
// whether it was posted as JSON (htmx json-enc) or form-encoded.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads at most maxBodyBytes of r's body.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = ErrBodyTooLarge
	}
	return p
}

// Parse decodes the body as JSON when it looks like an object, otherwise
// as form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.err = fmt.Errorf("decode json body: %w", err)
		}
		return p.err
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	if p.err != nil {
		p.err = fmt.Errorf("decode form body: %w", p.err)
	}
	return p.err
}

// Get returns the raw value for key.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		return stringValue(p.jsonData[key])
	}
	if p.formData != nil {
		return p.formData.Get(key)
	}
	return ""
}

// Fields returns every posted value keyed by name, first value only.
// Password-like fields are left out; they must never reach a sink.
func (p *RequestBodyParser) Fields() map[string]string {
	out := make(map[string]string)
	add := func(k, v string) {
		if isSecretField(k) {
			return
		}
		out[k] = v
	}
	if p.jsonData != nil {
		for k, v := range p.jsonData {
			add(k, stringValue(v))
		}
		return out
	}
	for k, vs := range p.formData {
		if len(vs) > 0 {
			add(k, vs[0])
		}
	}
	return out
}

func isSecretField(name string) bool {
	return strings.Contains(strings.ToLower(name), "password")
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseCredentials reads the login form. The password is passed through
// untouched; only its presence is ever checked.
func ParseCredentials(p *RequestBodyParser) shell.Credentials {
	return shell.Credentials{
		Email:    sanitizeInput(p.Get("email")),
		Password: p.Get("password"),
	}
}

// DateRange is an optional report window. Zero dates mean "use the default".
type DateRange struct {
	From core.Date
	To   core.Date
}

// ParseDateRange reads "start" and "end" in YYYY-MM-DD form. Missing
// values stay zero; malformed ones are an error.
func ParseDateRange(values url.Values) (DateRange, error) {
	var dr DateRange
	var errs []error
	if v := strings.TrimSpace(values.Get("start")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("start date %q: %w", v, err))
		}
		dr.From = d
	}
	if v := strings.TrimSpace(values.Get("end")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("end date %q: %w", v, err))
		}
		dr.To = d
	}
	return dr, errors.Join(errs...)
}

// sanitizeInput removes control characters except tab and newline and
// trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' {
			return -1
		}
		return r
	}, s))
}

// isHTMX reports whether the request came from htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
