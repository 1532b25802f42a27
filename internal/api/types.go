package api

import (
	"time"

	"github.com/google/uuid"
)

type GenerateSlotsRequest struct {
	StartDate       string `json:"start_date"` // YYYY-MM-DD
	EndDate         string `json:"end_date"`
	Weekdays        []int  `json:"weekdays"` // 0=Sunday .. 6=Saturday
	StartTime       string `json:"start_time"` // HH:MM, 24h
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
	BreakStart      string `json:"break_start,omitempty"`
	BreakEnd        string `json:"break_end,omitempty"`
}

type GenerateSlotsResponse struct {
	Count int `json:"count"`
}

type SlotResponse struct {
	ID            uuid.UUID  `json:"id"`
	Date          string     `json:"date"`
	Time          string     `json:"time"`
	Status        string     `json:"status"`
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty"`
}

type AvailabilityResponse struct {
	Date  string   `json:"date"`
	Times []string `json:"times"`
}

type BookAppointmentRequest struct {
	Date        string `json:"date"` // YYYY-MM-DD
	Time        string `json:"time"` // display form, e.g. "09:00 AM"
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	ServiceName string `json:"service_name"`
	Notes       string `json:"notes,omitempty"`
}

type AppointmentResponse struct {
	ID          uuid.UUID `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	ServiceName string    `json:"service_name"`
	Notes       string    `json:"notes,omitempty"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Status      string    `json:"status"`
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

type ServiceRequest struct {
	TitleFr       string `json:"title_fr"`
	TitleAr       string `json:"title_ar,omitempty"`
	Price         string `json:"price,omitempty"`
	DescriptionFr string `json:"description_fr,omitempty"`
	DescriptionAr string `json:"description_ar,omitempty"`
}

type ServiceResponse struct {
	ID            uuid.UUID `json:"id"`
	TitleFr       string    `json:"title_fr"`
	TitleAr       string    `json:"title_ar,omitempty"`
	Price         string    `json:"price,omitempty"`
	DescriptionFr string    `json:"description_fr,omitempty"`
	DescriptionAr string    `json:"description_ar,omitempty"`
}

type SettingsPayload struct {
	ClinicName string `json:"clinic_name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	Whatsapp   string `json:"whatsapp"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
