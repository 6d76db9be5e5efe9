package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ms-booking/internal/event"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/seatmap"
	"ms-booking/internal/utils"
)

const headerUserRole = "X-User-Role"

type Handler struct {
	EventService *event.Service
	Logger       *logger.Logger
}

type createEventRequest struct {
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Location      string             `json:"location"`
	Venue         string             `json:"venue"`
	Date          time.Time          `json:"date"`
	Time          string             `json:"time"`
	PosterImage   string             `json:"posterImage"`
	Category      string             `json:"category"`
	Rows          int                `json:"rows"`
	Columns       int                `json:"columns"`
	PricePerSeat  float64            `json:"pricePerSeat"`
	CustomSeatMap seatmap.SeatMap    `json:"customSeatMap,omitempty"`
	Sections      models.SectionList `json:"sections,omitempty"`
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		writeJSON(w, http.StatusForbidden, utils.ErrorResponse("Forbidden", "admin access required"))
		return
	}

	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	created, err := h.EventService.Create(r.Context(), event.CreateParams{
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		Venue:         req.Venue,
		Date:          req.Date,
		Time:          req.Time,
		PosterImage:   req.PosterImage,
		Category:      req.Category,
		Rows:          req.Rows,
		Columns:       req.Columns,
		PricePerSeat:  req.PricePerSeat,
		CustomSeatMap: req.CustomSeatMap,
		Sections:      req.Sections,
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Could not create event", err.Error()))
		return
	}

	h.Logger.LogEvent("CREATE", created.ID, created.Title)
	writeJSON(w, http.StatusCreated, utils.SuccessResponse("Event created successfully", created))
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.EventService.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not list events", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Events retrieved", events))
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	e, err := h.EventService.Get(r.Context(), eventID)
	if err != nil {
		h.writeEventError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Event retrieved", e))
}

type updateEventRequest struct {
	Title        *string             `json:"title"`
	Description  *string             `json:"description"`
	Location     *string             `json:"location"`
	Venue        *string             `json:"venue"`
	Date         *time.Time          `json:"date"`
	Time         *string             `json:"time"`
	PosterImage  *string             `json:"posterImage"`
	Category     *string             `json:"category"`
	Status       *string             `json:"status"`
	Rows         *int                `json:"rows"`
	Columns      *int                `json:"columns"`
	PricePerSeat *float64            `json:"pricePerSeat"`
	Sections     *models.SectionList `json:"sections"`
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		writeJSON(w, http.StatusForbidden, utils.ErrorResponse("Forbidden", "admin access required"))
		return
	}
	eventID := chi.URLParam(r, "eventId")

	var req updateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	updated, err := h.EventService.Update(r.Context(), eventID, event.UpdateParams{
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		Venue:        req.Venue,
		Date:         req.Date,
		Time:         req.Time,
		PosterImage:  req.PosterImage,
		Category:     req.Category,
		Status:       req.Status,
		Rows:         req.Rows,
		Columns:      req.Columns,
		PricePerSeat: req.PricePerSeat,
		Sections:     req.Sections,
	})
	if err != nil {
		h.writeEventError(w, err)
		return
	}

	h.Logger.LogEvent("UPDATE", eventID, "event updated")
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Event updated successfully", updated))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		writeJSON(w, http.StatusForbidden, utils.ErrorResponse("Forbidden", "admin access required"))
		return
	}
	eventID := chi.URLParam(r, "eventId")

	if err := h.EventService.Delete(r.Context(), eventID); err != nil {
		h.writeEventError(w, err)
		return
	}

	h.Logger.LogEvent("DELETE", eventID, "event deleted")
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Event deleted successfully", nil))
}

// GetEventSeats returns just the layout for seat pickers.
func (h *Handler) GetEventSeats(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	m, rows, columns, err := h.EventService.SeatMap(r.Context(), eventID)
	if err != nil {
		h.writeEventError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("Seat map retrieved", map[string]interface{}{
		"seatMap": m,
		"rows":    rows,
		"columns": columns,
	}))
}

func (h *Handler) writeEventError(w http.ResponseWriter, err error) {
	if errors.Is(err, event.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Event not found", err.Error()))
		return
	}
	writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Could not process event request", err.Error()))
}

func isAdmin(r *http.Request) bool {
	return r.Header.Get(headerUserRole) == "admin"
}

func writeJSON(w http.ResponseWriter, status int, body utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
