package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/diogoX451/devicedb/internal/api/dto"
	"github.com/diogoX451/devicedb/internal/core/domain"
	"github.com/diogoX451/devicedb/internal/core/ports"
	"github.com/diogoX451/devicedb/internal/patch"
)

const (
	requestTimeout = 5 * time.Second
	maxBodyBytes   = 1 << 20
)

// Handler: GET /api/v1/device/{id}
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := deviceIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	device, err := s.devices.GetDevice(ctx, id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.FromDevice(device))
}

// Handler: GET /api/v1/device[?brand=&offset=&size=]
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if !query.Has("brand") {
		if query.Has("offset") || query.Has("size") {
			respondError(w, http.StatusBadRequest, "INVALID_QUERY", "offset and size require brand")
			return
		}
		s.streamDevices(w, r, s.devices.ListDevices(r.Context()))
		return
	}

	brand, err := domain.BrandIDFrom(query.Get("brand"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BRAND", err.Error())
		return
	}
	offset, err := intParam(query.Get("offset"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PAGE", "offset must be a non-negative integer")
		return
	}
	size, err := intParam(query.Get("size"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PAGE", "size must be a non-negative integer")
		return
	}

	page := ports.Page{Offset: offset, Size: size}
	s.streamDevices(w, r, s.devices.ListDevicesByBrand(r.Context(), brand, page))
}

// streamDevices escreve o array conforme o iterador avança. O status só é
// enviado depois do primeiro item, então erros iniciais ainda viram 500.
func (s *Server) streamDevices(w http.ResponseWriter, r *http.Request, seq iter.Seq2[*domain.Device, error]) {
	next, stop := iter.Pull2(seq)
	defer stop()

	device, err, ok := next()
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "[")
	enc := json.NewEncoder(w)
	for written := 0; ok; written++ {
		if written > 0 {
			io.WriteString(w, ",")
		}
		if err := enc.Encode(dto.FromDevice(device)); err != nil {
			s.log.Warn("list stream aborted", "error", err)
			return
		}
		device, err, ok = next()
		if err != nil {
			// headers já foram enviados: corta o array
			s.log.Error("list stream failed", "path", r.URL.Path, "error", err)
			return
		}
	}
	io.WriteString(w, "]")
}

// Handler: POST /api/v1/device
func (s *Server) handleAddDevice(w http.ResponseWriter, r *http.Request) {
	var req dto.AddDeviceRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	device, err := s.devices.CreateDevice(ctx, req.Name, req.Brand)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/device/"+device.ID().String())
	w.WriteHeader(http.StatusCreated)
}

// Handler: DELETE /api/v1/device/{id}
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := deviceIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := s.devices.DeleteDevice(ctx, id); err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Handler: PATCH /api/v1/device/{id}
func (s *Server) handlePatchDevice(w http.ResponseWriter, r *http.Request) {
	if !patchMediaType(r.Header.Get("Content-Type")) {
		respondError(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE",
			"use application/json-patch+json or application/json")
		return
	}

	id, ok := deviceIDParam(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	doc, err := patch.Parse(body)
	if err != nil {
		if errors.Is(err, patch.ErrEmpty) {
			respondError(w, http.StatusBadRequest, "EMPTY_PATCH", "patch document is required")
			return
		}
		respondErrorDetails(w, http.StatusBadRequest, "INVALID_PATCH", "invalid patch document", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if _, err := s.devices.PatchDevice(ctx, id, doc); err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// deviceIDParam lê {id} e já responde 400 quando inválido.
func deviceIDParam(w http.ResponseWriter, r *http.Request) (domain.DeviceID, bool) {
	id, err := domain.ParseDeviceID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_DEVICE_ID", err.Error())
		return domain.DeviceID{}, false
	}
	return id, true
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

// Sem Content-Type é aceito como JSON.
func patchMediaType(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || mediaType == "application/json-patch+json"
}
