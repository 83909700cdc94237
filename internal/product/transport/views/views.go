// Package views renders the HTML pages for browsing and registering products.
package views

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/abgdnv/catalog/internal/platform/web"
	"github.com/abgdnv/catalog/internal/product/service"
	"github.com/abgdnv/catalog/internal/product/transport/rest"
	"github.com/go-chi/chi/v5"
)

//go:embed templates/*.html
var templateFS embed.FS

type page string

const (
	productsPage   page = "products.html"
	newProductPage page = "new_product.html"
)

type listData struct {
	Title    string
	Products []service.ProductSummaryDto
}

type formData struct {
	Title  string
	Name   string
	Price  string
	Errors []web.FieldError
}

type Handler struct {
	service service.ProductService
	logger  *slog.Logger
	pages   map[page]*template.Template
}

// NewHandler parses the embedded templates. Each page is combined with the shared layout.
func NewHandler(svc service.ProductService, logger *slog.Logger) (*Handler, error) {
	pages := make(map[page]*template.Template)
	for _, p := range []page{productsPage, newProductPage} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+string(p))
		if err != nil {
			return nil, err
		}
		pages[p] = t
	}
	return &Handler{
		service: svc,
		logger:  logger.With("component", "views"),
		pages:   pages,
	}, nil
}

// RegisterRoutes registers the HTML pages.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/products/new", h.NewForm)
	r.Post("/products/new", h.Create)
}

// List renders every product, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.FindAll(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		http.Error(w, "Failed to fetch products", http.StatusInternalServerError)
		return
	}
	h.render(w, r, http.StatusOK, productsPage, listData{Title: "Products", Products: products})
}

// NewForm renders an empty product form.
func (h *Handler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, newProductPage, formData{Title: "Register product"})
}

// Create validates the submitted form with the API rules. Invalid input re-renders
// the form with the messages, a stored product redirects to the list.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.WarnContext(r.Context(), "Error parsing form", "error", err)
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	data := formData{
		Title: "Register product",
		Name:  r.PostForm.Get("name"),
		Price: r.PostForm.Get("price"),
	}

	fields := map[string]any{}
	if r.PostForm.Has("name") {
		fields["name"] = data.Name
	}
	if r.PostForm.Has("price") {
		fields["price"] = data.Price
	}
	in := web.NewBodyInput(fields)
	if errs := web.Run(in, rest.CreateRules()...); len(errs) > 0 {
		h.logger.DebugContext(r.Context(), "Product form validation failed", "errors", errs)
		data.Errors = errs
		h.render(w, r, http.StatusBadRequest, newProductPage, data)
		return
	}

	price, ok := in.Decimal("price")
	if !ok {
		data.Errors = []web.FieldError{{Field: "price", Message: rest.MsgPriceInvalid}}
		h.render(w, r, http.StatusBadRequest, newProductPage, data)
		return
	}

	created, err := h.service.Create(r.Context(), service.ProductCreateDto{Name: data.Name, Price: price})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error creating product", "error", err)
		data.Errors = []web.FieldError{{Message: "Failed to create product"}}
		h.render(w, r, http.StatusInternalServerError, newProductPage, data)
		return
	}
	h.logger.InfoContext(r.Context(), "Product created from form", "ID", created.ID, "Name", created.Name)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, p page, data any) {
	var buf bytes.Buffer
	if err := h.pages[p].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.ErrorContext(r.Context(), "Error rendering page", "page", p, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
