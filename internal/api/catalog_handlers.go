package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/atlasdental/clinic-booking/internal/catalog"
)

func listServicesHandler(repo catalog.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services, err := repo.ListServices(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]ServiceResponse, 0, len(services))
		for _, svc := range services {
			resp = append(resp, serviceResponse(svc))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func addServiceHandler(repo catalog.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ServiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.TitleFr == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "title_fr is required")
			return
		}

		created, err := repo.AddService(r.Context(), catalog.Service{
			TitleFr:       req.TitleFr,
			TitleAr:       req.TitleAr,
			Price:         req.Price,
			DescriptionFr: req.DescriptionFr,
			DescriptionAr: req.DescriptionAr,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, serviceResponse(*created))
	}
}

func updateServiceHandler(repo catalog.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_service_id", "id must be a valid UUID")
			return
		}

		var req ServiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		err = repo.UpdateService(r.Context(), catalog.Service{
			ID:            id,
			TitleFr:       req.TitleFr,
			TitleAr:       req.TitleAr,
			Price:         req.Price,
			DescriptionFr: req.DescriptionFr,
			DescriptionAr: req.DescriptionAr,
		})
		if err != nil {
			if errors.Is(err, catalog.ErrServiceNotFound) {
				writeError(w, http.StatusNotFound, "service_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func deleteServiceHandler(repo catalog.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_service_id", "id must be a valid UUID")
			return
		}

		if err := repo.DeleteService(r.Context(), id); err != nil {
			if errors.Is(err, catalog.ErrServiceNotFound) {
				writeError(w, http.StatusNotFound, "service_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func getSettingsHandler(repo catalog.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := repo.GetSettings(r.Context())
		if err != nil {
			if errors.Is(err, catalog.ErrSettingsNotFound) {
				writeError(w, http.StatusNotFound, "settings_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, SettingsPayload{
			ClinicName: settings.ClinicName,
			Phone:      settings.Phone,
			Email:      settings.Email,
			Address:    settings.Address,
			Whatsapp:   settings.Whatsapp,
		})
	}
}

func updateSettingsHandler(repo catalog.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SettingsPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		current, err := repo.GetSettings(r.Context())
		id := uuid.New()
		if err == nil {
			id = current.ID
		} else if !errors.Is(err, catalog.ErrSettingsNotFound) {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		err = repo.UpdateSettings(r.Context(), catalog.ClinicSettings{
			ID:         id,
			ClinicName: req.ClinicName,
			Phone:      req.Phone,
			Email:      req.Email,
			Address:    req.Address,
			Whatsapp:   req.Whatsapp,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func serviceResponse(svc catalog.Service) ServiceResponse {
	return ServiceResponse{
		ID:            svc.ID,
		TitleFr:       svc.TitleFr,
		TitleAr:       svc.TitleAr,
		Price:         svc.Price,
		DescriptionFr: svc.DescriptionFr,
		DescriptionAr: svc.DescriptionAr,
	}
}
