// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/abgdnv/catalog/internal/platform/web"
	producterrors "github.com/abgdnv/catalog/internal/product/errors"
	"github.com/abgdnv/catalog/internal/product/service"
	"github.com/go-chi/chi/v5"
)

// ProductDeletedMessage is the payload of a successful delete.
const ProductDeletedMessage = "Product deleted"

type Handler struct {
	service service.ProductService
	logger  *slog.Logger
}

// NewHandler creates a new instance of the products API with the provided service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the product service.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.With(web.Validate(h.logger, CreateRules()...)...).Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.With(web.Validate(h.logger, idRules()...)...).Get("/", h.FindByID)
			r.With(web.Validate(h.logger, updateRules()...)...).Put("/", h.Update)
			r.With(web.Validate(h.logger, idRules()...)...).Patch("/", h.ToggleAvailability)
			r.With(web.Validate(h.logger, idRules()...)...).Delete("/", h.DeleteByID)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// FindAll godoc
//
//	@Summary		List products
//	@Description	Returns every product, newest first.
//	@Tags			Products
//	@Produce		json
//	@Success		200	{object}	ProductListResponse
//	@Failure		500	{object}	web.ErrorResponse
//	@Router			/api/products [get]
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received request to find all products")
	list, err := h.service.FindAll(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondData(w, h.logger, http.StatusOK, list)
}

// FindByID godoc
//
//	@Summary	Get a product by id
//	@Tags		Products
//	@Produce	json
//	@Param		id	path		int	true	"Product ID"
//	@Success	200	{object}	ProductResponse
//	@Failure	400	{object}	web.ValidationErrorResponse
//	@Failure	404	{object}	web.ErrorResponse
//	@Failure	500	{object}	web.ErrorResponse
//	@Router		/api/products/{id} [get]
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	h.logger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to retrieve product", id)
		return
	}
	web.RespondData(w, h.logger, http.StatusOK, found)
}

// Create godoc
//
//	@Summary	Create a product
//	@Tags		Products
//	@Accept		json
//	@Produce	json
//	@Param		product	body		service.ProductCreateDto	true	"New product"
//	@Success	201		{object}	ProductResponse
//	@Failure	400		{object}	web.ValidationErrorResponse
//	@Failure	500		{object}	web.ErrorResponse
//	@Router		/api/products [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	in := web.InputFrom(r)
	name, nameOK := in.String("name")
	price, priceOK := in.Decimal("price")
	if !nameOK || !priceOK {
		h.logger.WarnContext(r.Context(), "Request body does not hold a product")
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	dto := service.ProductCreateDto{Name: name, Price: price}
	h.logger.DebugContext(r.Context(), "Received request to create product", "product", dto)

	created, err := h.service.Create(r.Context(), dto)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondData(w, h.logger, http.StatusCreated, created)
}

// Update godoc
//
//	@Summary	Replace a product
//	@Tags		Products
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int							true	"Product ID"
//	@Param		product	body		service.ProductUpdateDto	true	"Product fields"
//	@Success	200		{object}	ProductResponse
//	@Failure	400		{object}	web.ValidationErrorResponse
//	@Failure	404		{object}	web.ErrorResponse
//	@Failure	500		{object}	web.ErrorResponse
//	@Router		/api/products/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	in := web.InputFrom(r)
	name, nameOK := in.String("name")
	price, priceOK := in.Decimal("price")
	availability, availabilityOK := in.Bool("availability")
	if !nameOK || !priceOK || !availabilityOK {
		h.logger.WarnContext(r.Context(), "Request body does not hold a product", "ID", id)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	dto := service.ProductUpdateDto{Name: name, Price: price, Availability: availability}
	h.logger.DebugContext(r.Context(), "Received request to update product", "ID", id)

	updated, err := h.service.Update(r.Context(), id, dto)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to update product", id)
		return
	}
	h.logger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondData(w, h.logger, http.StatusOK, updated)
}

// ToggleAvailability godoc
//
//	@Summary		Toggle product availability
//	@Description	Flips the availability flag. The request body is ignored.
//	@Tags			Products
//	@Produce		json
//	@Param			id	path		int	true	"Product ID"
//	@Success		200	{object}	ProductResponse
//	@Failure		400	{object}	web.ValidationErrorResponse
//	@Failure		404	{object}	web.ErrorResponse
//	@Failure		500	{object}	web.ErrorResponse
//	@Router			/api/products/{id} [patch]
func (h *Handler) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	h.logger.DebugContext(r.Context(), "Received request to toggle product availability", "ID", id)
	updated, err := h.service.ToggleAvailability(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to update product", id)
		return
	}
	h.logger.InfoContext(r.Context(), "Product availability toggled", "ID", updated.ID, "Availability", updated.Availability)
	web.RespondData(w, h.logger, http.StatusOK, updated)
}

// DeleteByID godoc
//
//	@Summary	Delete a product
//	@Tags		Products
//	@Produce	json
//	@Param		id	path		int	true	"Product ID"
//	@Success	200	{object}	MessageResponse
//	@Failure	400	{object}	web.ValidationErrorResponse
//	@Failure	404	{object}	web.ErrorResponse
//	@Failure	500	{object}	web.ErrorResponse
//	@Router		/api/products/{id} [delete]
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	h.logger.DebugContext(r.Context(), "Received request to delete product", "ID", id)
	if err := h.service.DeleteByID(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err, "Failed to delete product", id)
		return
	}
	h.logger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	web.RespondData(w, h.logger, http.StatusOK, ProductDeletedMessage)
}

// HealthCheck reports 200 while the product store is reachable and 503 otherwise.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ping(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "Health check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, msg string, id int64) {
	if errors.Is(err, producterrors.ErrProductNotFound) {
		h.logger.WarnContext(r.Context(), "Product not found", "ID", id)
		web.RespondError(w, h.logger, http.StatusNotFound, producterrors.ErrProductNotFound.Error())
		return
	}
	h.logger.ErrorContext(r.Context(), msg, "ID", id, "error", err)
	web.RespondError(w, h.logger, http.StatusInternalServerError, msg)
}

// pathID returns the id path parameter. Routes validate it before the handler runs.
func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}
