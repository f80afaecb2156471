package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Domenick1991/airwallet/internal/domain"
	"github.com/Domenick1991/airwallet/internal/service/booking"
	"github.com/Domenick1991/airwallet/internal/ticket"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type passengerRequest struct {
	Name   string      `json:"name"`
	Age    json.Number `json:"age"`
	Gender string      `json:"gender"`
}

type createBookingRequest struct {
	FlightID   int64              `json:"flight_id"`
	Passengers []passengerRequest `json:"passengers"`
}

type createBookingResponse struct {
	Booking      *domain.Booking `json:"booking"`
	SurgeApplied bool            `json:"surge_applied"`
	PricePerSeat int64           `json:"price_per_seat"`
}

type cancelBookingResponse struct {
	Message          string          `json:"message"`
	Booking          *domain.Booking `json:"booking"`
	RefundAmount     int64           `json:"refund_amount"`
	DeductionAmount  int64           `json:"deduction_amount"`
	NewWalletBalance int64           `json:"new_wallet_balance"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/my-bookings", h.list)
	router.GET("/:pnr/ticket", h.ticket)
	router.PUT("/:pnr/cancel", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.ErrInvalidPassengerData)
		return
	}
	if req.FlightID <= 0 {
		writeError(c, domain.ErrInvalidFlightID)
		return
	}

	input := booking.CreateBookingInput{
		UserID:     currentUserID(c),
		FlightID:   req.FlightID,
		Passengers: make([]booking.PassengerInput, 0, len(req.Passengers)),
	}
	for _, p := range req.Passengers {
		input.Passengers = append(input.Passengers, booking.PassengerInput{
			Name:   p.Name,
			Age:    p.Age.String(),
			Gender: p.Gender,
		})
	}

	result, err := h.service.CreateBooking(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createBookingResponse{
		Booking:      result.Booking,
		SurgeApplied: result.SurgeApplied,
		PricePerSeat: result.PricePerSeat,
	})
}

func (h *BookingHandler) list(c *gin.Context) {
	bookings, err := h.service.ListBookings(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) ticket(c *gin.Context) {
	b, user, err := h.service.GetTicket(c.Request.Context(), currentUserID(c), c.Param("pnr"))
	if err != nil {
		writeError(c, err)
		return
	}
	body, err := ticket.Render(b, user)
	if err != nil {
		writeError(c, domain.Internal(err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, ticket.FileName(b.PNR)))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", body)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	result, err := h.service.CancelBooking(c.Request.Context(), currentUserID(c), c.Param("pnr"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, cancelBookingResponse{
		Message:          "Booking cancelled. 80% of the fare has been refunded to your wallet.",
		Booking:          result.Booking,
		RefundAmount:     result.RefundAmount,
		DeductionAmount:  result.DeductionAmount,
		NewWalletBalance: result.NewBalance,
	})
}
