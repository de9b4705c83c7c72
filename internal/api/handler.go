package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/alexivanou/citylist-api/internal/model"
	"github.com/alexivanou/citylist-api/internal/seeder"
	"github.com/alexivanou/citylist-api/internal/service"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxUploadSize = 32 << 20

// DBInitializer runs the one-shot seeding of an empty city table
type DBInitializer interface {
	InitializeDB(ctx context.Context) (seeder.Result, error)
}

// Handler handles HTTP requests
type Handler struct {
	responder
	service     service.ServiceInterface
	initializer DBInitializer
}

// NewHandler creates a new handler instance
func NewHandler(service service.ServiceInterface, initializer DBInitializer, logger *zap.Logger) *Handler {
	return &Handler{
		responder:   responder{logger: logger},
		service:     service,
		initializer: initializer,
	}
}

// GetByPage handles GET /city-list/get
func (h *Handler) GetByPage(w http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if _, err := h.initializer.InitializeDB(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}

	response, err := h.service.GetCitiesByPage(r.Context(), page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, response)
}

// Search handles GET /city-list/search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	name, ok := r.URL.Query()["name"]
	if !ok {
		h.writeError(w, r, fmt.Errorf("%w: query parameter 'name' is required", model.ErrValidation))
		return
	}

	response, err := h.service.GetCitiesByPageAndName(r.Context(), page, name[0])
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, response)
}

// GetImage handles GET /city-list/images/{id}
func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	image, err := h.service.GetImageByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer image.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, image); err != nil {
		h.logger.Warn("Failed to stream image", zap.Int64("id", id), zap.Error(err))
	}
}

// Update handles PUT /city-list/update/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: malformed multipart request: %v", model.ErrValidation, err))
		return
	}

	image, err := readFilePart(r, "image")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		h.writeError(w, r, fmt.Errorf("%w: unreadable image part: %v", model.ErrValidation, err))
		return
	}

	props, err := cityProperties(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req model.CityUpdateRequest
	if err := json.Unmarshal(props, &req); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: malformed cityProperties: %v", model.ErrValidation, err))
		return
	}

	response, err := h.service.Update(r.Context(), id, image, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func pageParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 0, fmt.Errorf("%w: query parameter 'page' is required", model.ErrValidation)
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid page parameter %q", model.ErrValidation, raw)
	}
	return page, nil
}

func idParam(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid city id %q", model.ErrValidation, raw)
	}
	return id, nil
}

// cityProperties accepts the JSON either as a plain form value or as a file part,
// which is how browsers send a Blob.
func cityProperties(r *http.Request) ([]byte, error) {
	if v := r.FormValue("cityProperties"); v != "" {
		return []byte(v), nil
	}
	data, err := readFilePart(r, "cityProperties")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, fmt.Errorf("%w: part 'cityProperties' is required", model.ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable cityProperties part: %v", model.ErrValidation, err)
	}
	return data, nil
}

func readFilePart(r *http.Request, name string) ([]byte, error) {
	file, _, err := r.FormFile(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
