package gin

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"spacehub/internal/app/commands"
	"spacehub/internal/app/dto"
	appbooking "spacehub/internal/app/handlers/booking"
	"spacehub/internal/app/queries"
	domainbooking "spacehub/internal/domain/booking"
	domainlistings "spacehub/internal/domain/listings"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type requestBookingPayload struct {
	ListingID string      `json:"listing_id" binding:"required"`
	Sessions  []time.Time `json:"sessions" binding:"required"`
	Hours     []int       `json:"hours" binding:"required"`
}

func (h *BookingHandler) Request(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var payload requestBookingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := commands.Dispatch[appbooking.RequestBookingCommand, *appbooking.RequestBookingResult](
		c.Request.Context(), h.Commands, appbooking.RequestBookingCommand{
			ListingID:    payload.ListingID,
			ActingUserID: userID,
			Sessions:     payload.Sessions,
			Hours:        payload.Hours,
			IdemKey:      idempotencyKey(c),
		})
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *BookingHandler) CancellationQuote(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	result, err := queries.Ask[appbooking.GetCancellationQuoteQuery, dto.CancellationQuote](
		c.Request.Context(), h.Queries, appbooking.GetCancellationQuoteQuery{
			BookingID:    c.Param("id"),
			ActingUserID: userID,
		})
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	result, err := commands.Dispatch[appbooking.CancelBookingCommand, *appbooking.CancelBookingResult](
		c.Request.Context(), h.Commands, appbooking.CancelBookingCommand{
			BookingID:    c.Param("id"),
			ActingUserID: userID,
			IdemKey:      idempotencyKey(c),
		})
	if err != nil {
		writeBookingError(c, err)
		return
	}
	status := http.StatusOK
	if !result.Success {
		status = http.StatusConflict
	}
	c.JSON(status, result)
}

func (h *BookingHandler) GroupCancellationQuote(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	result, err := queries.Ask[appbooking.GetGroupCancellationQuoteQuery, dto.GroupCancellationQuote](
		c.Request.Context(), h.Queries, appbooking.GetGroupCancellationQuoteQuery{
			GroupID:      c.Param("group_id"),
			ActingUserID: userID,
		})
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *BookingHandler) CancelGroup(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	result, err := commands.Dispatch[appbooking.CancelGroupCommand, *appbooking.CancelGroupResult](
		c.Request.Context(), h.Commands, appbooking.CancelGroupCommand{
			GroupID:      c.Param("group_id"),
			ActingUserID: userID,
			IdemKey:      idempotencyKey(c),
		})
	if err != nil {
		writeBookingError(c, err)
		return
	}
	status := http.StatusOK
	if !result.Success {
		status = http.StatusConflict
	}
	c.JSON(status, result)
}

func writeBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainbooking.ErrBookingNotFound),
		errors.Is(err, domainlistings.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, appbooking.ErrNotBookingOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, appbooking.ErrBookingIDEmpty),
		errors.Is(err, appbooking.ErrGroupIDEmpty),
		errors.Is(err, appbooking.ErrActorRequired),
		errors.Is(err, appbooking.ErrListingIDEmpty),
		errors.Is(err, appbooking.ErrNoSessions),
		errors.Is(err, appbooking.ErrNoHours),
		errors.Is(err, appbooking.ErrListingInactive):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
