// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"net/http"

	"mindcare/internal/app"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OIDCConfig holds the optional SSO login configuration.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config *oauth2.Config
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	diary      *app.DiaryService
	moods      *app.MoodService
	authSvc    *app.AuthService
	oidcConfig OIDCConfig

	disableAuth bool // tests only
}

// New creates a Server wired to the given application services.
func New(diary *app.DiaryService, moods *app.MoodService, auth *app.AuthService, oidcCfg OIDCConfig) *Server {
	return &Server{diary: diary, moods: moods, authSvc: auth, oidcConfig: oidcCfg}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	api.HandleFunc("/config", s.handleConfig)
	api.HandleFunc("/auth/register", s.handleRegister)
	api.HandleFunc("/auth/login", s.handleLogin)
	api.HandleFunc("/auth/logout", s.handleLogout)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)

	private := http.NewServeMux()
	private.HandleFunc("/user", s.handleUser)

	private.HandleFunc("/diary/save", s.handleDiarySave)
	private.HandleFunc("/diary/upload", s.handleDiaryUpload)
	private.HandleFunc("/diary/entries", s.handleDiaryEntries)
	private.HandleFunc("/diary/entry", s.handleDiaryEntry)

	private.HandleFunc("/mood/checkin", s.handleMoodCheckIn)
	private.HandleFunc("/mood/today", s.handleMoodToday)
	private.HandleFunc("/mood/report", s.handleMoodReport)
	private.HandleFunc("/mood/recent", s.handleMoodRecent)
	private.HandleFunc("/mood/stats", s.handleMoodStats)

	api.Handle("/", s.authMiddleware(private))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	return s.loggingMiddleware(withNoCache(root))
}
