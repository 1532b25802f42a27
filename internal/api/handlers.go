package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/atlasdental/clinic-booking/internal/booking"
	"github.com/atlasdental/clinic-booking/internal/schedule"
)

func generateSlotsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GenerateSlotsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		cfg, err := req.toConfig()
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_config", err.Error())
			return
		}

		count, err := svc.GenerateSlots(r.Context(), cfg)
		if err != nil {
			if errors.Is(err, schedule.ErrInvalidConfig) {
				writeError(w, http.StatusBadRequest, "invalid_config", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, GenerateSlotsResponse{Count: count})
	}
}

func (req GenerateSlotsRequest) toConfig() (schedule.Config, error) {
	startDate, err := schedule.ParseDate(req.StartDate)
	if err != nil {
		return schedule.Config{}, err
	}
	endDate, err := schedule.ParseDate(req.EndDate)
	if err != nil {
		return schedule.Config{}, err
	}
	startTime, err := schedule.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return schedule.Config{}, err
	}
	endTime, err := schedule.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return schedule.Config{}, err
	}

	cfg := schedule.Config{
		StartDate:       startDate,
		EndDate:         endDate,
		Weekdays:        req.Weekdays,
		StartTime:       startTime,
		EndTime:         endTime,
		DurationMinutes: req.DurationMinutes,
	}

	if req.BreakStart != "" {
		bs, err := schedule.ParseTimeOfDay(req.BreakStart)
		if err != nil {
			return schedule.Config{}, err
		}
		cfg.BreakStart = &bs
	}
	if req.BreakEnd != "" {
		be, err := schedule.ParseTimeOfDay(req.BreakEnd)
		if err != nil {
			return schedule.Config{}, err
		}
		cfg.BreakEnd = &be
	}

	return cfg, nil
}

func listSlotsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var date *schedule.Date
		if raw := r.URL.Query().Get("date"); raw != "" {
			d, err := schedule.ParseDate(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
				return
			}
			date = &d
		}

		slots, err := svc.ListSlots(r.Context(), date)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]SlotResponse, 0, len(slots))
		for _, s := range slots {
			resp = append(resp, SlotResponse{
				ID:            s.ID,
				Date:          s.Date.String(),
				Time:          s.Time,
				Status:        string(s.Status),
				AppointmentID: s.AppointmentID,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func deleteSlotHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_slot_id", "id must be a valid UUID")
			return
		}

		if err := svc.DeleteSlot(r.Context(), id); err != nil {
			switch {
			case errors.Is(err, booking.ErrSlotNotFound):
				writeError(w, http.StatusNotFound, "slot_not_found", err.Error())
			case errors.Is(err, booking.ErrSlotNotDeletable):
				writeError(w, http.StatusConflict, "slot_not_deletable", "booked slots must be freed before deletion")
			default:
				writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func availabilityHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("date")
		date, err := schedule.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		times, err := svc.AvailableTimes(r.Context(), date)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, AvailabilityResponse{
			Date:  date.String(),
			Times: times,
		})
	}
}

func bookAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BookAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		date, err := schedule.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		appt, err := svc.BookAppointment(r.Context(), booking.BookingRequest{
			Date:        date,
			Time:        req.Time,
			FullName:    req.FullName,
			Email:       req.Email,
			Phone:       req.Phone,
			ServiceName: req.ServiceName,
			Notes:       req.Notes,
		})
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, appointmentResponse(appt))
	}
}

func handleBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, booking.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, "slot_unavailable", "this time is no longer available, please choose another")
	case errors.Is(err, booking.ErrSlotBeingBooked):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func listAppointmentsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f booking.AppointmentFilter
		if raw := r.URL.Query().Get("status"); raw != "" {
			f.Status = booking.AppointmentStatus(raw)
		}
		if raw := r.URL.Query().Get("date"); raw != "" {
			d, err := schedule.ParseDate(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
				return
			}
			f.Date = &d
		}

		appts, err := svc.ListAppointments(r.Context(), f)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]AppointmentResponse, 0, len(appts))
		for i := range appts {
			resp = append(resp, appointmentResponse(&appts[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func setAppointmentStatusHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req SetStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := svc.SetAppointmentStatus(r.Context(), id, booking.AppointmentStatus(req.Status))
		if err != nil {
			switch {
			case errors.Is(err, booking.ErrAppointmentNotFound):
				writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
			case errors.Is(err, booking.ErrInvalidTransition):
				writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
			default:
				writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			}
			return
		}

		writeJSON(w, http.StatusOK, appointmentResponse(appt))
	}
}

func deleteAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		if err := svc.DeleteAppointment(r.Context(), id); err != nil {
			if errors.Is(err, booking.ErrAppointmentNotFound) {
				writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func appointmentResponse(a *booking.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:          a.ID,
		CreatedAt:   a.CreatedAt,
		FullName:    a.FullName,
		Email:       a.Email,
		Phone:       a.Phone,
		ServiceName: a.ServiceName,
		Notes:       a.Notes,
		Date:        a.Date.String(),
		Time:        a.Time,
		Status:      string(a.Status),
	}
}
