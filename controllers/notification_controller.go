package controllers

import (
	"backoffice/services"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// NotificationController уведомления текущего пользователя
type NotificationController struct {
	notificationService *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notifications}
}

// List возвращает уведомления: ?unread=true только непрочитанные
func (c *NotificationController) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	unreadOnly := false
	if raw := r.URL.Query().Get("unread"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(w, err)
			return
		}
		unreadOnly = v
	}

	list, err := c.notificationService.List(actor.ID, unreadOnly)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (c *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}

	notification, err := c.notificationService.MarkRead(id, actor.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, notification, "Уведомление прочитано")
}

func (c *NotificationController) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	count, err := c.notificationService.MarkAllRead(actor.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, map[string]int64{"updated": count}, "Все уведомления прочитаны")
}

// RegisterRoutes регистрирует маршруты контроллера
func (c *NotificationController) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/notifications", c.List).Methods("GET")
	router.HandleFunc("/notifications/read-all", c.MarkAllRead).Methods("POST")
	router.HandleFunc("/notifications/{id:[0-9]+}/read", c.MarkRead).Methods("POST")
}
