package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/qudmeet/exchange-service/internal/api_gateway/middleware"
	"github.com/qudmeet/exchange-service/internal/api_gateway/service"
	"github.com/qudmeet/exchange-service/internal/domain/notification"
)

// NotificationHandler handles HTTP requests for the notification inbox
type NotificationHandler struct {
	logger              *slog.Logger
	notificationService service.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(logger *slog.Logger, notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		logger:              logger,
		notificationService: notificationService,
	}
}

// List handles GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	notifications, total, err := h.notificationService.ListByUser(c.Request.Context(), middleware.GetUserID(c), params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list notifications", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		responses = append(responses, toNotificationResponse(n))
	}
	RespondWithPaginatedData(c, http.StatusOK, responses, params.Page, params.PerPage, int(total))
}

// MarkRead handles POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "notification id must be a UUID")
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), id); err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound{}) {
			RespondNotFound(c, "Notification not found")
			return
		}
		h.logger.Error("Failed to mark notification as read", "notification_id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}
