package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const maxBodyBytes = 1 << 20

// FieldError describes one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Rule checks a single field of a request. It returns nil when the field is valid.
type Rule func(in *Input) *FieldError

// Input is the view of a request that rules inspect. The JSON body is decoded
// on first access and the request body is restored for the handler.
type Input struct {
	r       *http.Request
	body    map[string]any
	parsed  bool
	bodyErr *FieldError
}

// NewInput wraps r for validation.
func NewInput(r *http.Request) *Input {
	return &Input{r: r}
}

// NewBodyInput builds an Input over an already decoded body, such as a submitted form.
func NewBodyInput(body map[string]any) *Input {
	return &Input{body: body, parsed: true}
}

// Param returns the chi URL parameter with the given name.
func (in *Input) Param(name string) string {
	if in.r == nil {
		return ""
	}
	return chi.URLParam(in.r, name)
}

// Field returns the value of a top-level body field. Numbers are json.Number.
func (in *Input) Field(name string) (any, bool) {
	in.parseBody()
	v, ok := in.body[name]
	return v, ok
}

// BodyError reports whether the body could not be decoded as a JSON object.
func (in *Input) BodyError() *FieldError {
	in.parseBody()
	return in.bodyErr
}

func (in *Input) parseBody() {
	if in.parsed {
		return
	}
	in.parsed = true
	in.body = map[string]any{}

	if in.r.Body == nil || in.r.Body == http.NoBody {
		return
	}
	raw, err := io.ReadAll(io.LimitReader(in.r.Body, maxBodyBytes))
	_ = in.r.Body.Close()
	in.r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		in.bodyErr = &FieldError{Field: "body", Message: "invalid JSON body"}
		return
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil || body == nil {
		in.bodyErr = &FieldError{Field: "body", Message: "invalid JSON body"}
		return
	}
	in.body = body
}

// String returns a body field holding a JSON string.
func (in *Input) String(name string) (string, bool) {
	v, _ := in.Field(name)
	s, ok := v.(string)
	return s, ok
}

// Decimal returns a body field holding a JSON number or a numeric string.
func (in *Input) Decimal(name string) (decimal.Decimal, bool) {
	v, _ := in.Field(name)
	d, err := parseDecimal(v)
	return d, err == nil
}

// Bool returns a body field holding a JSON boolean.
func (in *Input) Bool(name string) (bool, bool) {
	v, _ := in.Field(name)
	b, ok := v.(bool)
	return b, ok
}

// Collector accumulates field errors for the lifetime of a request.
type Collector struct {
	errs  []FieldError
	input *Input
}

func (c *Collector) Add(fe *FieldError) {
	if fe != nil {
		c.errs = append(c.errs, *fe)
	}
}

func (c *Collector) Errors() []FieldError {
	return c.errs
}

type collectorKey struct{}

// CollectorFrom returns the request's collector, or nil if none was attached.
func CollectorFrom(ctx context.Context) *Collector {
	c, _ := ctx.Value(collectorKey{}).(*Collector)
	return c
}

// InputFrom returns the Input the route's rules validated, so handlers read the
// same decoded body. Without a validation chain it wraps r.
func InputFrom(r *http.Request) *Input {
	if c := CollectorFrom(r.Context()); c != nil && c.input != nil {
		return c.input
	}
	return NewInput(r)
}

// Run applies every rule to in and returns all resulting errors in rule order.
// A malformed body is reported first.
func Run(in *Input, rules ...Rule) []FieldError {
	c := &Collector{}
	runInto(c, in, rules)
	return c.Errors()
}

func runInto(c *Collector, in *Input, rules []Rule) {
	errsBefore := len(c.errs)
	for _, rule := range rules {
		c.Add(rule(in))
	}
	if in.parsed && in.bodyErr != nil {
		// body error goes in front of the field errors it caused
		c.errs = append(c.errs[:errsBefore], append([]FieldError{*in.bodyErr}, c.errs[errsBefore:]...)...)
	}
}

// Collect runs every rule against the request, regardless of earlier failures,
// and records the errors in a request-scoped Collector.
func Collect(rules ...Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := CollectorFrom(r.Context())
			if c == nil {
				c = &Collector{}
				r = r.WithContext(context.WithValue(r.Context(), collectorKey{}, c))
			}
			in := NewInput(r)
			c.input = in
			runInto(c, in, rules)
			next.ServeHTTP(w, r)
		})
	}
}

// CheckErrors stops the request with 400 when the collector holds any error.
func CheckErrors(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c := CollectorFrom(r.Context()); c != nil && len(c.Errors()) > 0 {
				logger.DebugContext(r.Context(), "Request validation failed", "errors", c.Errors())
				RespondJSON(w, logger, http.StatusBadRequest, ValidationErrorResponse{Errors: c.Errors()})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Validate builds the validator chain for a route: the rules followed by the error check.
func Validate(logger *slog.Logger, rules ...Rule) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{Collect(rules...), CheckErrors(logger)}
}
