// Package stubserver assembles an in-memory CompVerse API. It exists for
// local development and end-to-end tests; nothing survives a restart.
package stubserver

import (
	"context"
	"net/http"
	"time"

	"github.com/RakhaaNZ/CompVerse-app/internal/handlers"
	"github.com/RakhaaNZ/CompVerse-app/internal/middleware"
	"github.com/RakhaaNZ/CompVerse-app/internal/models"
	"github.com/RakhaaNZ/CompVerse-app/internal/repository"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"
)

// Server bundles the stub API's repositories and handlers.
type Server struct {
	Users         *repository.UserRepository
	Competitions  *repository.CompetitionRepository
	Teams         *repository.TeamRepository
	Registrations *repository.RegistrationRepository
	Tokens        *handlers.Tokens

	router http.Handler
}

// NewServer creates a stub server signing tokens with the given secret.
func NewServer(secret string) *Server {
	s := &Server{
		Users:         repository.NewUserRepository(),
		Competitions:  repository.NewCompetitionRepository(),
		Teams:         repository.NewTeamRepository(),
		Registrations: repository.NewRegistrationRepository(),
		Tokens:        handlers.NewTokens(secret),
	}

	authHandler := handlers.NewAuthHandler(s.Users, s.Tokens)
	competitionHandler := handlers.NewCompetitionHandler(s.Competitions)
	teamHandler := handlers.NewTeamHandler(s.Teams, s.Users, s.Competitions, s.Registrations)
	registrationHandler := handlers.NewRegistrationHandler(s.Registrations, s.Competitions, s.Users)
	userHandler := handlers.NewUserHandler(s.Users)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/register/", authHandler.SignUp)
		r.Post("/token/", authHandler.Token)
		r.Post("/token/refresh/", authHandler.Refresh)
		r.Get("/competitions/", competitionHandler.List)
		r.Get("/competitions/{id}/", competitionHandler.Get)
		r.Get("/teams/", teamHandler.List)
		r.Get("/teams/{id}/", teamHandler.Get)
		r.Get("/registrations/", registrationHandler.List)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(s.Tokens))
			r.Get("/users/", userHandler.Current)
			r.Post("/teams/", teamHandler.Create)
			r.Post("/teams/{id}/join/", teamHandler.Join)
			r.Post("/teams/{id}/add-member/", teamHandler.AddMember)
			r.Delete("/teams/{id}/remove-member/{memberID}/", teamHandler.RemoveMember)
			r.Post("/registrations/", registrationHandler.Create)
		})
	})

	s.router = r
	return s
}

// Handler returns the stub's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Seed loads a small demo dataset: two users (alice@example.com and
// bob@example.com, password "password") and three competitions covering the
// individual, team-based, and closed-registration cases.
func (s *Server) Seed(ctx context.Context) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if _, err := s.Users.Create(ctx, "Alice", "Anders", "alice@example.com", hash); err != nil {
		return err
	}
	if _, err := s.Users.Create(ctx, "Bob", "Brandt", "bob@example.com", hash); err != nil {
		return err
	}

	now := time.Now()
	s.Competitions.Create(ctx, models.Competition{
		Title:             "Solo Algorithm Sprint",
		Description:       "A timed, individual algorithm contest.",
		Category:          "Programming",
		Type:              models.CompetitionTypeIndividual,
		StartDate:         now.Add(7 * 24 * time.Hour),
		EndDate:           now.Add(8 * 24 * time.Hour),
		CloseRegistration: now.Add(6 * 24 * time.Hour),
		MaxParticipants:   100,
		IsTeamBased:       false,
	})
	s.Competitions.Create(ctx, models.Competition{
		Title:             "Hackathon CompVerse",
		Description:       "48-hour team hackathon.",
		Category:          "Hackathon",
		Type:              models.CompetitionTypeTeam,
		StartDate:         now.Add(14 * 24 * time.Hour),
		EndDate:           now.Add(16 * 24 * time.Hour),
		CloseRegistration: now.Add(10 * 24 * time.Hour),
		MaxParticipants:   4,
		IsTeamBased:       true,
	})
	s.Competitions.Create(ctx, models.Competition{
		Title:             "Last Season's Design Jam",
		Description:       "Registration already closed.",
		Category:          "Design",
		Type:              models.CompetitionTypeTeam,
		StartDate:         now.Add(-10 * 24 * time.Hour),
		EndDate:           now.Add(-8 * 24 * time.Hour),
		CloseRegistration: now.Add(-12 * 24 * time.Hour),
		MaxParticipants:   4,
		IsTeamBased:       true,
	})
	return nil
}

// corsMiddleware handles CORS for browser clients of the stub.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
