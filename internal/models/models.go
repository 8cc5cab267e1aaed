package models

import "time"

// Competition types as reported by the API.
const (
	CompetitionTypeIndividual = "Individual"
	CompetitionTypeTeam       = "Team"
)

// Competition represents a hosted competition
type Competition struct {
	ID                int64     `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Category          string    `json:"category"`
	Type              string    `json:"type"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	CloseRegistration time.Time `json:"close_registration"`
	MaxParticipants   int       `json:"max_participants"`
	Poster            *string   `json:"poster,omitempty"`
	IsTeamBased       bool      `json:"is_team_based"`
}

// RegistrationClosed reports whether registration actions are disallowed
// at the given instant.
func (c *Competition) RegistrationClosed(now time.Time) bool {
	return !now.Before(c.CloseRegistration)
}

// User represents a platform user profile
type User struct {
	ID           int64   `json:"id"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Email        string  `json:"email"`
	ProfileImage *string `json:"profile_image,omitempty"`
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Team represents a named group bound to one competition. The leader is
// always present in Members.
type Team struct {
	ID                  int64       `json:"id"`
	Name                string      `json:"name"`
	Competition         Competition `json:"competition"`
	Leader              User        `json:"leader"`
	Members             []User      `json:"members"`
	IsLookingForMembers bool        `json:"is_looking_for_members"`
	CreatedAt           time.Time   `json:"created_at"`
}

// HasMember reports whether the given user is on the roster.
func (t *Team) HasMember(userID int64) bool {
	for _, m := range t.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// Registration binds a user to a competition
type Registration struct {
	ID           int64       `json:"id"`
	User         User        `json:"user"`
	Competition  Competition `json:"competition"`
	RegisteredAt time.Time   `json:"registered_at"`
}
