package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	sessions := s.app.Sessions
	auth := s.app.AuthHandler
	dashboard := s.app.DashboardHandler
	admin := s.app.AdminHandler
	api := s.app.APIHandler

	// Static files (CSS)
	mux.HandleFunc("GET /static/", s.app.PageHandler.StaticFileHandler)

	// Account pages
	mux.HandleFunc("GET /{$}", auth.IndexHandler)
	mux.HandleFunc("/register", getOrPost(auth.RegisterHandler))
	mux.HandleFunc("/login", getOrPost(auth.LoginHandler))
	mux.HandleFunc("GET /logout", auth.LogoutHandler)
	mux.HandleFunc("GET /verify/{token}", auth.VerifyHandler)
	mux.HandleFunc("/forgot-password", getOrPost(auth.ForgotPasswordHandler))
	mux.HandleFunc("/reset/{token}", getOrPost(auth.ResetPasswordHandler))

	// Dashboard and watchlist (login required)
	mux.HandleFunc("/dashboard", getOrPost(sessions.RequireLogin(dashboard.DashboardHandler)))
	mux.HandleFunc("POST /watchlist/add", sessions.RequireLogin(dashboard.AddWatchlistHandler))
	mux.HandleFunc("POST /watchlist/delete/{id}", sessions.RequireLogin(dashboard.DeleteWatchlistHandler))

	// Admin pages
	mux.HandleFunc("GET /admin", sessions.RequireAdmin(admin.IndexHandler))
	mux.HandleFunc("GET /admin/users", sessions.RequireAdmin(admin.UsersHandler))
	mux.HandleFunc("GET /admin/watchlist", sessions.RequireAdmin(admin.WatchlistHandler))
	mux.HandleFunc("/admin/logs/files", sessions.RequireAdmin(s.app.LogsHandler.ListFilesHandler))
	mux.HandleFunc("/admin/logs/content", sessions.RequireAdmin(s.app.LogsHandler.ContentHandler))

	// API routes
	mux.HandleFunc("/api/health", api.HealthHandler)
	mux.HandleFunc("/api/version", api.VersionHandler)
	mux.HandleFunc("/api/analyze", sessions.RequireAPILogin(api.AnalyzeHandler))
	mux.HandleFunc("/api/report", sessions.RequireAPILogin(api.ReportHandler))
	mux.HandleFunc("/api/", api.NotFoundHandler)

	return mux
}
