package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/joakmannn/SocialMed/internal/app/registry"
	"github.com/joakmannn/SocialMed/internal/app/server/handlers"
	"github.com/joakmannn/SocialMed/internal/core/services"
	"github.com/joakmannn/SocialMed/pkg/middleware"
)

type Server struct {
	mux         *http.ServeMux
	log         *slog.Logger
	addr        string
	serviceName string
	authHandler *handlers.AuthHandler
	convHandler *handlers.ConversationHandler
	wsHandler   *handlers.WSHandler
	sessionSvc  *services.SessionService
	httpServer  *http.Server
}

func NewServer(
	log *slog.Logger,
	addr string,
	serviceName string,
	authSvc services.IAuthService,
	sessionSvc *services.SessionService,
	convSvc services.IConversationService,
	msgSvc services.IMessageService,
	receiptSvc services.IReceiptService,
	hub *registry.Registry,
) *Server {
	s := &Server{
		mux:         http.NewServeMux(),
		log:         log,
		addr:        addr,
		serviceName: serviceName,
		authHandler: handlers.NewAuthHandler(authSvc),
		convHandler: handlers.NewConversationHandler(convSvc, msgSvc, receiptSvc),
		wsHandler:   handlers.NewWSHandler(hub, msgSvc, receiptSvc),
		sessionSvc:  sessionSvc,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	auth := middleware.AuthMiddleware(s.sessionSvc)

	// Public routes
	s.mux.HandleFunc("POST /auth/signup", s.authHandler.SignUp)
	s.mux.HandleFunc("POST /auth/signin", s.authHandler.SignIn)
	s.mux.HandleFunc("POST /auth/google", s.authHandler.GoogleSignIn)

	// Protected routes
	s.mux.Handle("POST /auth/signout", auth(http.HandlerFunc(s.authHandler.SignOut)))
	s.mux.Handle("GET /me", auth(http.HandlerFunc(s.authHandler.Me)))
	s.mux.Handle("PATCH /me", auth(http.HandlerFunc(s.authHandler.UpdateProfile)))
	s.mux.Handle("GET /conversations", auth(http.HandlerFunc(s.convHandler.List)))
	s.mux.Handle("GET /conversations/{user_id}/messages", auth(http.HandlerFunc(s.convHandler.Messages)))
	s.mux.Handle("POST /conversations/{user_id}/messages", auth(http.HandlerFunc(s.convHandler.Send)))
	s.mux.Handle("POST /conversations/{user_id}/read", auth(http.HandlerFunc(s.convHandler.MarkRead)))
	s.mux.Handle("GET /notifications", auth(http.HandlerFunc(s.convHandler.Notifications)))
	s.mux.Handle("POST /notifications/{message_id}/read", auth(http.HandlerFunc(s.convHandler.MarkNotificationRead)))
	s.mux.Handle("GET /ws", auth(http.HandlerFunc(s.wsHandler.Handler)))
}

func (s *Server) Start() error {
	handler := middleware.TracerMiddleware(s.serviceName)(
		middleware.RequestLogger(s.log)(s.mux),
	)
	s.httpServer = &http.Server{
		Addr:        s.addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: websocket connections stay open indefinitely.
	}

	s.log.Info("server starting", "addr", s.addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
