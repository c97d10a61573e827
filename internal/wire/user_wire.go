package wire

import (
	"marketplace-api/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireUser(r chi.Router, userHandler *adaptor.UserHandler, guards routeGuards) {
	r.Route("/users", func(r chi.Router) {
		r.Use(guards.auth)

		r.Post("/fcm-token", userHandler.UpdateFCMToken)
	})
}

func wireNotification(r chi.Router, notificationHandler *adaptor.NotificationHandler, guards routeGuards) {
	r.Route("/notifications", func(r chi.Router) {
		r.Use(guards.auth)

		r.Get("/", notificationHandler.List)
		r.Patch("/{id}/mark-read", notificationHandler.MarkRead)
	})
}
