package gin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"spacehub/internal/app/dto"
	"spacehub/internal/app/handlers/me"
	"spacehub/internal/app/queries"
	"spacehub/internal/infra/notify"
)

type MeHandler struct {
	Queries       queries.Bus
	Notifications notify.Store
}

func (h *MeHandler) Bookings(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	result, err := queries.Ask[me.ListMyBookingsQuery, []dto.BookingSummary](
		c.Request.Context(), h.Queries, me.ListMyBookingsQuery{GuestID: userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": result})
}

func (h *MeHandler) ListNotifications(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	records, err := h.Notifications.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": records})
}
