package rest

import "github.com/abgdnv/catalog/internal/product/service"

// The types below only describe response envelopes for the API documentation.

type ProductResponse struct {
	Data service.ProductDto `json:"data"`
}

type ProductListResponse struct {
	Data []service.ProductSummaryDto `json:"data"`
}

type MessageResponse struct {
	Data string `json:"data" example:"Product deleted"`
}
