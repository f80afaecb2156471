package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/airwallet/internal/domain"
	"github.com/Domenick1991/airwallet/internal/service/flights"
	"github.com/gin-gonic/gin"
)

// flightResponse is a catalog entry as a booking client sees it: Fare is the
// per-seat price a booking starts from before any surge.
type flightResponse struct {
	domain.Flight
	Fare    int64 `json:"fare"`
	SoldOut bool  `json:"sold_out"`
}

func newFlightResponse(f *domain.Flight) flightResponse {
	return flightResponse{
		Flight:  *f,
		Fare:    f.ReferenceFare(),
		SoldOut: f.AvailableSeats <= 0,
	}
}

type FlightHandler struct {
	catalog flights.FlightUseCase
}

func NewFlightHandler(catalog flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{catalog: catalog}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.listFlights)
	router.GET("/:id", h.getFlight)
}

func (h *FlightHandler) listFlights(c *gin.Context) {
	list, err := h.catalog.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]flightResponse, 0, len(list))
	for i := range list {
		out = append(out, newFlightResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *FlightHandler) getFlight(c *gin.Context) {
	flightID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || flightID <= 0 {
		writeError(c, domain.ErrInvalidFlightID)
		return
	}

	flight, err := h.catalog.GetByID(c.Request.Context(), flightID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newFlightResponse(flight))
}
