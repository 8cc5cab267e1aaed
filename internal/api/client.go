// Package api is the typed client for the CompVerse REST API. All
// authoritative state lives behind this API; the client never persists
// entities locally.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/RakhaaNZ/CompVerse-app/internal/models"
	"github.com/RakhaaNZ/CompVerse-app/internal/session"
)

// Client talks to the CompVerse API on behalf of one session.
type Client struct {
	baseURL string
	httpc   *http.Client
	session *session.Session
}

// NewClient creates an API client. baseURL includes the path prefix,
// e.g. "http://localhost:8000/api".
func NewClient(baseURL string, timeout time.Duration, sess *session.Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		session: sess,
	}
}

// CompetitionFilter narrows ListCompetitions. Zero values mean no filter.
type CompetitionFilter struct {
	Category string
	Type     string
}

// ListCompetitions fetches competitions, optionally filtered.
func (c *Client) ListCompetitions(ctx context.Context, filter CompetitionFilter) ([]models.Competition, error) {
	query := url.Values{}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.Type != "" {
		query.Set("type", filter.Type)
	}

	var competitions []models.Competition
	if err := c.do(ctx, http.MethodGet, "/competitions/", query, nil, &competitions); err != nil {
		return nil, fmt.Errorf("failed to list competitions: %w", err)
	}
	return competitions, nil
}

// GetCompetition fetches one competition by id.
func (c *Client) GetCompetition(ctx context.Context, id int64) (*models.Competition, error) {
	var competition models.Competition
	path := fmt.Sprintf("/competitions/%d/", id)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &competition); err != nil {
		return nil, fmt.Errorf("failed to get competition: %w", err)
	}
	return &competition, nil
}

// ListOpenTeams fetches the teams for a competition that accept members.
func (c *Client) ListOpenTeams(ctx context.Context, competitionID int64) ([]models.Team, error) {
	query := url.Values{}
	query.Set("competition", strconv.FormatInt(competitionID, 10))
	query.Set("is_looking_for_members", "true")

	var teams []models.Team
	if err := c.do(ctx, http.MethodGet, "/teams/", query, nil, &teams); err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

// GetTeam fetches one team with its full roster.
func (c *Client) GetTeam(ctx context.Context, id int64) (*models.Team, error) {
	var team models.Team
	path := fmt.Sprintf("/teams/%d/", id)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &team); err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return &team, nil
}

// CreateTeamRequest is the body for CreateTeam.
type CreateTeamRequest struct {
	TeamName      string `json:"team_name"`
	CompetitionID int64  `json:"competition_id"`
}

// CreateTeam creates a team. The caller becomes the leader and is
// registered for the competition server-side.
func (c *Client) CreateTeam(ctx context.Context, name string, competitionID int64) (*models.Team, error) {
	body := CreateTeamRequest{TeamName: name, CompetitionID: competitionID}
	var team models.Team
	if err := c.do(ctx, http.MethodPost, "/teams/", nil, body, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

// JoinTeam joins the caller to a team. The server rejects joins that would
// duplicate a registration or exceed the competition's member cap.
func (c *Client) JoinTeam(ctx context.Context, teamID int64) error {
	path := fmt.Sprintf("/teams/%d/join/", teamID)
	return c.do(ctx, http.MethodPost, path, nil, struct{}{}, nil)
}

// AddTeamMember adds a user to a team by email. Leader only.
func (c *Client) AddTeamMember(ctx context.Context, teamID int64, email string) error {
	path := fmt.Sprintf("/teams/%d/add-member/", teamID)
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, path, nil, body, nil)
}

// RemoveTeamMember removes a member from a team. Leader only.
func (c *Client) RemoveTeamMember(ctx context.Context, teamID, memberID int64) error {
	path := fmt.Sprintf("/teams/%d/remove-member/%d/", teamID, memberID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// CreateRegistration registers the caller individually for a competition.
func (c *Client) CreateRegistration(ctx context.Context, competitionID int64) (*models.Registration, error) {
	body := map[string]int64{"competition_id": competitionID}
	var registration models.Registration
	if err := c.do(ctx, http.MethodPost, "/registrations/", nil, body, &registration); err != nil {
		return nil, err
	}
	return &registration, nil
}

// ListRegistrations fetches registrations filtered by competition and user.
// Zero values skip the corresponding filter.
func (c *Client) ListRegistrations(ctx context.Context, competitionID, userID int64) ([]models.Registration, error) {
	query := url.Values{}
	if competitionID != 0 {
		query.Set("competition", strconv.FormatInt(competitionID, 10))
	}
	if userID != 0 {
		query.Set("user", strconv.FormatInt(userID, 10))
	}

	var registrations []models.Registration
	if err := c.do(ctx, http.MethodGet, "/registrations/", query, nil, &registrations); err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	return registrations, nil
}

// CurrentUser resolves the authenticated profile.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/users/", nil, nil, &user); err != nil {
		return nil, fmt.Errorf("failed to resolve current user: %w", err)
	}
	return &user, nil
}

// do issues one request and decodes the response into out (when non-nil).
// Non-2xx responses are decoded through the error envelope.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env envelope
		// A non-JSON error body falls through to the generic message.
		_ = json.NewDecoder(resp.Body).Decode(&env)
		return newError(resp.StatusCode, env)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
