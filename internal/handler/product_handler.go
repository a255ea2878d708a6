package handler

import (
	"io"
	"net/http"
	"strconv"

	"tiendita/internal/model"
	"tiendita/internal/service"

	"github.com/rs/zerolog"
)

// maxImageBytes caps uploaded product images at 5 MiB.
const maxImageBytes = 5 << 20

// ProductHandler handles catalogue HTTP requests, public reads and
// admin-only writes.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// GetAll handles GET /api/products requests with pagination.
func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			writeError(w, model.NewDomainError(model.ErrCodeMissingField, "invalid limit parameter"), h.logger)
			return
		}
		limit = v
	}

	offset := 0
	if s := r.URL.Query().Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			writeError(w, model.NewDomainError(model.ErrCodeMissingField, "invalid offset parameter"), h.logger)
			return
		}
		offset = v
	}

	products, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// GetByID handles GET /api/products/{id} requests.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	product, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// GetImage handles GET /api/products/{id}/image requests. The body is the
// raw image with its sniffed content type.
func (h *ProductHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	data, mime, err := h.service.GetImage(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Create handles POST /api/admin/products requests.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err, h.logger)
		return
	}

	product, err := h.service.Create(r.Context(), in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	h.logger.Info().Int64("product_id", product.ID).Str("name", product.Name).Msg("product created")
	writeJSON(w, http.StatusCreated, product)
}

// Update handles PUT /api/admin/products/{id} requests.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var in model.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err, h.logger)
		return
	}

	product, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/admin/products/{id} requests.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err, h.logger)
		return
	}

	h.logger.Info().Int64("product_id", id).Msg("product deleted")
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage handles PUT /api/admin/products/{id}/image requests. The
// image arrives as a multipart form with an "image" field.
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, model.NewDomainError(model.ErrCodeMissingField, "expected multipart form with an image field"), h.logger)
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, model.NewDomainError(model.ErrCodeMissingField, "image field is required"), h.logger)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.service.SetImage(r.Context(), id, data); err != nil {
		writeError(w, err, h.logger)
		return
	}

	h.logger.Info().Int64("product_id", id).Int("bytes", len(data)).Msg("product image stored")
	w.WriteHeader(http.StatusNoContent)
}

// pathID parses the named path segment as an int64 and writes a 404 when it
// is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request, name string, logger zerolog.Logger) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, model.NewDomainError(model.ErrCodeNotFound, "resource not found"), logger)
		return 0, false
	}
	return id, true
}
