package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/parkeat/internal/api/dto"
	"github.com/RoyceAzure/lab/parkeat/internal/service"
	"github.com/RoyceAzure/rj/api"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type NotificationHandler struct {
	notificationService service.INotificationService
	logger              zerolog.Logger
}

func NewNotificationHandler(notificationService service.INotificationService, logger zerolog.Logger) *NotificationHandler {
	if notificationService == nil {
		panic("notificationService cannot be nil")
	}
	return &NotificationHandler{notificationService: notificationService, logger: logger}
}

// GET /notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	api.SuccessJSON(w, dto.NotificationsResponse{
		Notifications: h.notificationService.Notifications(),
		UnreadCount:   h.notificationService.UnreadCount(),
	}, nil)
}

// POST /notifications/{id}/read
func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notificationService.MarkAsRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	noContent(w)
}

// POST /notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notificationService.MarkAllAsRead(r.Context()); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	noContent(w)
}

// DELETE /notifications
func (h *NotificationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.notificationService.ClearNotifications(r.Context()); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	noContent(w)
}
