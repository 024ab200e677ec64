package api

import "github.com/RoyceAzure/lab/parkeat/internal/api/handler"

type Server struct {
	AuthHandler         *handler.AuthHandler
	StoreHandler        *handler.StoreHandler
	CartHandler         *handler.CartHandler
	OrderHandler        *handler.OrderHandler
	NotificationHandler *handler.NotificationHandler
	LocationHandler     *handler.LocationHandler
}

func NewServer(
	authHandler *handler.AuthHandler,
	storeHandler *handler.StoreHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	notificationHandler *handler.NotificationHandler,
	locationHandler *handler.LocationHandler,
) *Server {
	return &Server{
		AuthHandler:         authHandler,
		StoreHandler:        storeHandler,
		CartHandler:         cartHandler,
		OrderHandler:        orderHandler,
		NotificationHandler: notificationHandler,
		LocationHandler:     locationHandler,
	}
}
