package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/awardrobe/pricetracker/internal/apperr"
	"github.com/awardrobe/pricetracker/internal/ingest"
	"github.com/awardrobe/pricetracker/internal/service"
)

// Tracker starts tracking products.
type Tracker interface {
	AddProduct(ctx context.Context, productURL string) (ingest.ProductResult, error)
	DiscoverAndTrack(ctx context.Context, storeHandle string, limit int) (ingest.DiscoverResult, error)
}

type productHandler struct {
	*responder
	productSvc service.ProductService
	tracker    Tracker
}

func newProductHandler(r *responder, productSvc service.ProductService, tracker Tracker) *productHandler {
	return &productHandler{
		responder:  r,
		productSvc: productSvc,
		tracker:    tracker,
	}
}

func (h *productHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := h.decode(r, &req); err != nil {
		h.error(w, r, err)
		return
	}

	res, err := h.tracker.AddProduct(r.Context(), req.ProductURL)
	if err != nil {
		h.error(w, r, fmt.Errorf("tracker add product: %w", err))
		return
	}

	h.json(w, r, http.StatusCreated, toProductDetailsResponse(res.Product, res.Variants))
}

func (h *productHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.error(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		h.error(w, r, err)
		return
	}

	products, err := h.productSvc.ListProducts(r.Context(), service.ListProductsParams{Limit: limit, Offset: offset})
	if err != nil {
		h.error(w, r, fmt.Errorf("product service list products: %w", err))
		return
	}

	items := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, toProductResponse(p))
	}

	h.json(w, r, http.StatusOK, items)
}

func (h *productHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "productId")
	if err != nil {
		h.error(w, r, err)
		return
	}

	details, err := h.productSvc.GetProduct(r.Context(), productID)
	if err != nil {
		h.error(w, r, fmt.Errorf("product service get product: %w", err))
		return
	}

	h.json(w, r, http.StatusOK, toProductDetailsResponse(details.Product, details.Variants))
}

func (h *productHandler) ListPriceHistory(w http.ResponseWriter, r *http.Request) {
	variantID, err := pathUUID(r, "variantId")
	if err != nil {
		h.error(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.error(w, r, err)
		return
	}

	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		since, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			h.error(w, r, apperr.ValidationErr.WrapParent(fmt.Errorf("parse since: %w", err)))
			return
		}
	}

	prices, err := h.productSvc.ListPriceHistory(r.Context(), service.ListPriceHistoryParams{
		VariantID: variantID,
		Since:     since,
		Limit:     limit,
	})
	if err != nil {
		h.error(w, r, fmt.Errorf("product service list price history: %w", err))
		return
	}

	items := make([]PriceResponse, 0, len(prices))
	for _, p := range prices {
		items = append(items, toPriceResponse(p))
	}

	h.json(w, r, http.StatusOK, items)
}

func (h *productHandler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "productId")
	if err != nil {
		h.error(w, r, err)
		return
	}

	var req CreateNotificationRequest
	if err := h.decode(r, &req); err != nil {
		h.error(w, r, err)
		return
	}
	if req.PriceThresholdCents == nil && !req.NotifyOnRestock {
		h.error(w, r, apperr.ValidationErr.WrapParent(fmt.Errorf("rule watches neither price nor stock")))
		return
	}

	n, err := h.productSvc.CreateNotification(r.Context(), service.CreateNotificationParams{
		UserID:              req.UserID,
		ProductID:           productID,
		VariantID:           req.VariantID,
		PriceThresholdCents: req.PriceThresholdCents,
		NotifyOnRestock:     req.NotifyOnRestock,
	})
	if err != nil {
		h.error(w, r, fmt.Errorf("product service create notification: %w", err))
		return
	}

	h.json(w, r, http.StatusCreated, toNotificationResponse(n, productID))
}

func (h *productHandler) DiscoverStore(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.error(w, r, err)
		return
	}

	req := DiscoverRequest{StoreHandle: chi.URLParam(r, "storeHandle"), Limit: limit}
	if err := h.validator.Validate(req); err != nil {
		h.error(w, r, err)
		return
	}

	res, err := h.tracker.DiscoverAndTrack(r.Context(), req.StoreHandle, req.Limit)
	if err != nil {
		h.error(w, r, fmt.Errorf("tracker discover and track: %w", err))
		return
	}

	h.json(w, r, http.StatusOK, toDiscoverResponse(res))
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.ValidationErr.WrapParent(fmt.Errorf("parse %s: %w", name, err))
	}
	return id, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.ValidationErr.WrapParent(fmt.Errorf("parse %s: %w", name, err))
	}
	return v, nil
}
