package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-booking/internal/booking"
	"ms-booking/internal/booking/qr"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/seatmap"
	"ms-booking/internal/utils"
)

// Identity headers injected by the auth layer in front of this service.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

type Handler struct {
	BookingService *booking.Service
	QR             *qr.QRGenerator
	Logger         *logger.Logger
}

type createBookingRequest struct {
	EventID       string   `json:"eventId"`
	SelectedSeats []string `json:"selectedSeats"`
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(HeaderUserID)
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized", "missing user identity"))
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	b, err := h.BookingService.Reserve(r.Context(), req.EventID, userID, req.SelectedSeats)
	if err != nil {
		h.Logger.LogBooking("RESERVE", req.EventID, fmt.Sprintf("rejected: %v", err))
		h.writeBookingError(w, err)
		return
	}

	h.Logger.LogBooking("RESERVE", b.ID, fmt.Sprintf("booked %d seat(s) on event %s", b.TotalSeats, b.EventID))
	writeJSON(w, http.StatusCreated, utils.SuccessResponse("Booking created successfully", b))
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")

	b, err := h.BookingService.GetBooking(r.Context(), bookingID)
	if err != nil {
		h.writeBookingError(w, err)
		return
	}
	if !h.callerOwns(r, b) {
		writeJSON(w, http.StatusForbidden, utils.ErrorResponse("Forbidden", "not authorized to cancel this booking"))
		return
	}

	cancelled, err := h.BookingService.Cancel(r.Context(), bookingID)
	if err != nil {
		h.writeBookingError(w, err)
		return
	}

	h.Logger.LogBooking("CANCEL", bookingID, "booking cancelled, seats released")
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Booking cancelled successfully", cancelled))
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")

	b, err := h.BookingService.GetBookingWithEvent(r.Context(), bookingID)
	if err != nil {
		h.writeBookingError(w, err)
		return
	}
	if !h.callerOwns(r, &b.Booking) {
		writeJSON(w, http.StatusForbidden, utils.ErrorResponse("Forbidden", "not authorized to access this booking"))
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("Booking retrieved", b))
}

func (h *Handler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(HeaderUserID)
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized", "missing user identity"))
		return
	}

	bookings, err := h.BookingService.GetUserBookings(r.Context(), userID)
	if err != nil {
		h.writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Bookings retrieved", bookings))
}

func (h *Handler) GetAllBookings(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(HeaderUserRole) != "admin" {
		writeJSON(w, http.StatusForbidden, utils.ErrorResponse("Forbidden", "admin access required"))
		return
	}

	bookings, err := h.BookingService.GetAllBookings(r.Context())
	if err != nil {
		h.writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Bookings retrieved", bookings))
}

// GetBookingQR renders the booking as an encrypted QR PNG for entry.
func (h *Handler) GetBookingQR(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")

	b, err := h.BookingService.GetBooking(r.Context(), bookingID)
	if err != nil {
		h.writeBookingError(w, err)
		return
	}
	if !h.callerOwns(r, b) {
		writeJSON(w, http.StatusForbidden, utils.ErrorResponse("Forbidden", "not authorized to access this booking"))
		return
	}
	if b.Status != models.BookingConfirmed {
		writeJSON(w, http.StatusConflict, utils.ErrorResponse("Booking not confirmed", "QR codes are only issued for confirmed bookings"))
		return
	}

	png, err := h.QR.GenerateEncryptedQR(*b)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not generate QR", err.Error()))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *Handler) callerOwns(r *http.Request, b *models.Booking) bool {
	if r.Header.Get(HeaderUserRole) == "admin" {
		return true
	}
	userID := r.Header.Get(HeaderUserID)
	return userID != "" && userID == b.UserID
}

// writeBookingError maps engine error kinds onto HTTP statuses. Every
// rejection carries enough detail for the client to refresh its seat
// picker.
func (h *Handler) writeBookingError(w http.ResponseWriter, err error) {
	var (
		unavailable *booking.SeatsUnavailableError
		outOfBounds *booking.SeatOutOfBoundsError
		badLabel    *seatmap.InvalidLabelError
		persistence *booking.PersistenceError
	)
	switch {
	case errors.Is(err, booking.ErrEmptySelection):
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Please select at least one seat", err.Error()))
	case errors.As(err, &badLabel), errors.As(err, &outOfBounds):
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid seat selection", err.Error()))
	case errors.Is(err, booking.ErrEventNotFound):
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Event not found", err.Error()))
	case errors.Is(err, booking.ErrBookingNotFound):
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Booking not found", err.Error()))
	case errors.As(err, &unavailable):
		writeJSON(w, http.StatusConflict, utils.ErrorResponseWithData(
			"Some seats are already booked", err.Error(),
			map[string]interface{}{"unavailableSeats": unavailable.Seats}))
	case errors.Is(err, booking.ErrAlreadyCancelled):
		writeJSON(w, http.StatusConflict, utils.ErrorResponse("Booking is already cancelled", err.Error()))
	case errors.As(err, &persistence):
		writeJSON(w, http.StatusServiceUnavailable, utils.ErrorResponse("Could not complete the reservation, please retry", err.Error()))
	default:
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal error", err.Error()))
	}
}

func writeJSON(w http.ResponseWriter, status int, body utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
