package web

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var priceMessages = PositiveDecimalMessages{
	Empty:       "price empty",
	Invalid:     "price invalid",
	NotPositive: "price not positive",
}

func TestValidate(t *testing.T) {
	// given
	testCases := []struct {
		name               string
		path               string
		body               string
		expectedStatusCode int
		expectedErrors     []FieldError
		shouldCallNext     bool
	}{
		{
			name:               "Success - all fields valid",
			path:               "/items/7",
			body:               `{"name":"Pen","price":1.5,"available":true}`,
			expectedStatusCode: http.StatusOK,
			shouldCallNext:     true,
		},
		{
			name:               "Success - price as numeric string",
			path:               "/items/7",
			body:               `{"name":"Pen","price":"2.10","available":false}`,
			expectedStatusCode: http.StatusOK,
			shouldCallNext:     true,
		},
		{
			name:               "Failure - every rule runs",
			path:               "/items/abc",
			body:               `{}`,
			expectedStatusCode: http.StatusBadRequest,
			expectedErrors: []FieldError{
				{Field: "id", Message: "bad id"},
				{Field: "name", Message: "name empty"},
				{Field: "price", Message: "price empty"},
				{Field: "available", Message: "bad available"},
			},
		},
		{
			name:               "Failure - wrong types",
			path:               "/items/1",
			body:               `{"name":12,"price":"abc","available":"yes"}`,
			expectedStatusCode: http.StatusBadRequest,
			expectedErrors: []FieldError{
				{Field: "name", Message: "name empty"},
				{Field: "price", Message: "price invalid"},
				{Field: "available", Message: "bad available"},
			},
		},
		{
			name:               "Failure - blank name and negative price",
			path:               "/items/1",
			body:               `{"name":"   ","price":-3,"available":true}`,
			expectedStatusCode: http.StatusBadRequest,
			expectedErrors: []FieldError{
				{Field: "name", Message: "name empty"},
				{Field: "price", Message: "price not positive"},
			},
		},
		{
			name:               "Failure - zero price",
			path:               "/items/1",
			body:               `{"name":"Pen","price":0,"available":true}`,
			expectedStatusCode: http.StatusBadRequest,
			expectedErrors:     []FieldError{{Field: "price", Message: "price not positive"}},
		},
		{
			name:               "Failure - malformed body",
			path:               "/items/1",
			body:               `{"name":`,
			expectedStatusCode: http.StatusBadRequest,
			expectedErrors: []FieldError{
				{Field: "body", Message: "invalid JSON body"},
				{Field: "name", Message: "name empty"},
				{Field: "price", Message: "price empty"},
				{Field: "available", Message: "bad available"},
			},
		},
		{
			name:               "Failure - body is not an object",
			path:               "/items/1",
			body:               `[1,2]`,
			expectedStatusCode: http.StatusBadRequest,
			expectedErrors: []FieldError{
				{Field: "body", Message: "invalid JSON body"},
				{Field: "name", Message: "name empty"},
				{Field: "price", Message: "price empty"},
				{Field: "available", Message: "bad available"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			nextHandlerCalled := false
			var bodySeenByHandler string

			r := chi.NewRouter()
			r.With(Validate(slog.New(slog.DiscardHandler),
				IntParam("id", "bad id"),
				NonEmptyString("name", "name empty"),
				PositiveDecimal("price", priceMessages),
				Boolean("available", "bad available"),
			)...).Put("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
				nextHandlerCalled = true
				b, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				bodySeenByHandler = string(b)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPut, tc.path, strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			// when
			r.ServeHTTP(rr, req)

			// then
			assert.Equal(t, tc.expectedStatusCode, rr.Code)
			assert.Equal(t, tc.shouldCallNext, nextHandlerCalled)
			if tc.shouldCallNext {
				assert.Equal(t, tc.body, bodySeenByHandler, "body must be restored for the handler")
				return
			}

			var resp ValidationErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tc.expectedErrors, resp.Errors)
		})
	}
}

func TestValidate_ParamOnlyRouteIgnoresBody(t *testing.T) {
	// given
	called := false
	r := chi.NewRouter()
	r.With(Validate(slog.New(slog.DiscardHandler), IntParam("id", "bad id"))...).
		Patch("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusNoContent)
		})
	req := httptest.NewRequest(http.MethodPatch, "/items/-4", strings.NewReader("not json"))
	rr := httptest.NewRecorder()

	// when
	r.ServeHTTP(rr, req)

	// then
	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestRun_BodyInput(t *testing.T) {
	in := NewBodyInput(map[string]any{"name": "Lamp", "price": "0"})

	errs := Run(in,
		NonEmptyString("name", "name empty"),
		PositiveDecimal("price", priceMessages),
	)

	assert.Equal(t, []FieldError{{Field: "price", Message: "price not positive"}}, errs)
	assert.Empty(t, in.Param("id"))
}

func TestPositiveDecimal(t *testing.T) {
	rule := PositiveDecimal("price", priceMessages)
	testCases := []struct {
		name     string
		value    any
		present  bool
		expected *FieldError
	}{
		{name: "missing", present: false, expected: &FieldError{Field: "price", Message: "price empty"}},
		{name: "null", value: nil, present: true, expected: &FieldError{Field: "price", Message: "price empty"}},
		{name: "empty string", value: "", present: true, expected: &FieldError{Field: "price", Message: "price empty"}},
		{name: "bool", value: true, present: true, expected: &FieldError{Field: "price", Message: "price invalid"}},
		{name: "exponent string", value: "1e3", present: true, expected: &FieldError{Field: "price", Message: "price invalid"}},
		{name: "number", value: json.Number("10.25"), present: true},
		{name: "string", value: "0.01", present: true},
		{name: "negative string", value: "-1", present: true, expected: &FieldError{Field: "price", Message: "price not positive"}},
		{name: "padded string", value: " 5 ", present: true, expected: &FieldError{Field: "price", Message: "price invalid"}},
		{name: "blank string", value: "   ", present: true, expected: &FieldError{Field: "price", Message: "price invalid"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			body := map[string]any{}
			if tc.present {
				body["price"] = tc.value
			}
			assert.Equal(t, tc.expected, rule(NewBodyInput(body)))
		})
	}
}

func TestInputFrom_ReturnsValidatedBody(t *testing.T) {
	// given
	var (
		name      string
		price     string
		available bool
	)
	r := chi.NewRouter()
	r.With(Validate(slog.New(slog.DiscardHandler),
		NonEmptyString("name", "name empty"),
		PositiveDecimal("price", priceMessages),
		Boolean("available", "bad availability"),
	)...).Post("/items", func(w http.ResponseWriter, r *http.Request) {
		in := InputFrom(r)
		name, _ = in.String("name")
		d, _ := in.Decimal("price")
		price = d.String()
		available, _ = in.Bool("available")
		w.WriteHeader(http.StatusCreated)
	})
	body := `{"name":"Pen","price":"1.50","available":true,"NAME":"  ","Price":-1,"AVAILABLE":false}`
	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(body))
	rr := httptest.NewRecorder()

	// when
	r.ServeHTTP(rr, req)

	// then
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "Pen", name)
	assert.Equal(t, "1.5", price)
	assert.True(t, available)
}

func TestInputFrom_WithoutValidation(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{"price":2}`))

	in := InputFrom(req)

	d, ok := in.Decimal("price")
	require.True(t, ok)
	assert.Equal(t, "2", d.String())
	_, ok = in.String("name")
	assert.False(t, ok)
	_, ok = in.Bool("price")
	assert.False(t, ok)
}
