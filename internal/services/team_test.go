package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/RakhaaNZ/CompVerse-app/internal/models"
	"github.com/RakhaaNZ/CompVerse-app/internal/services"
	"github.com/RakhaaNZ/CompVerse-app/internal/session"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeTeamAPI counts requests and scripts responses.
type fakeTeamAPI struct {
	getCalls    int
	addCalls    int
	removeCalls int

	team      *models.Team
	getErr    error
	addErr    error
	removeErr error
}

func (f *fakeTeamAPI) GetTeam(ctx context.Context, id int64) (*models.Team, error) {
	f.getCalls++
	return f.team, f.getErr
}

func (f *fakeTeamAPI) AddTeamMember(ctx context.Context, teamID int64, email string) error {
	f.addCalls++
	return f.addErr
}

func (f *fakeTeamAPI) RemoveTeamMember(ctx context.Context, teamID, memberID int64) error {
	f.removeCalls++
	return f.removeErr
}

func sessionForUser(t *testing.T, userID int64) *session.Session {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": userID})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return session.New(signed)
}

func rocketTeam() *models.Team {
	return &models.Team{
		ID:     3,
		Name:   "Rocket",
		Leader: models.User{ID: 10, FirstName: "Alice"},
		Members: []models.User{
			{ID: 10, FirstName: "Alice"},
			{ID: 11, FirstName: "Bob"},
		},
	}
}

func TestAddMember(t *testing.T) {
	accept := func(string) bool { return true }

	Convey("Given a team service", t, func() {
		fake := &fakeTeamAPI{team: rocketTeam()}
		svc := services.NewTeamService(fake, sessionForUser(t, 10), accept)

		Convey("When adding with an empty email", func() {
			_, err := svc.AddMember(context.Background(), 3, "  ")

			Convey("Then it fails locally without a request", func() {
				So(err, ShouldEqual, services.ErrEmailRequired)
				So(fake.addCalls, ShouldEqual, 0)
			})
		})

		Convey("When adding with an implausible email", func() {
			_, err := svc.AddMember(context.Background(), 3, "not-an-email")

			Convey("Then it fails locally without a request", func() {
				So(err, ShouldEqual, services.ErrInvalidEmail)
				So(fake.addCalls, ShouldEqual, 0)
			})
		})

		Convey("When adding succeeds", func() {
			team, err := svc.AddMember(context.Background(), 3, "carol@example.com")

			Convey("Then exactly one re-fetch is triggered and its result returned", func() {
				So(err, ShouldBeNil)
				So(fake.addCalls, ShouldEqual, 1)
				So(fake.getCalls, ShouldEqual, 1)
				So(team, ShouldEqual, fake.team)
			})
		})

		Convey("When the server reports an existing membership", func() {
			fake.addErr = errors.New("User is already a member of this team")
			_, err := svc.AddMember(context.Background(), 3, "bob@example.com")

			Convey("Then the conflict is surfaced distinctly and no re-fetch happens", func() {
				So(err, ShouldEqual, services.ErrAlreadyMember)
				So(fake.getCalls, ShouldEqual, 0)
			})
		})

		Convey("When the server fails generically", func() {
			fake.addErr = errors.New("User not found")
			_, err := svc.AddMember(context.Background(), 3, "ghost@example.com")

			Convey("Then the server message is surfaced", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldEqual, "User not found")
				So(fake.getCalls, ShouldEqual, 0)
			})
		})
	})
}

func TestRemoveMember(t *testing.T) {
	Convey("Given a team service with a confirming user", t, func() {
		fake := &fakeTeamAPI{team: rocketTeam()}
		svc := services.NewTeamService(fake, sessionForUser(t, 10), func(string) bool { return true })
		team := rocketTeam()

		Convey("When removing the leader", func() {
			_, err := svc.RemoveMember(context.Background(), team, team.Leader.ID)

			Convey("Then the guard rejects before any request", func() {
				So(err, ShouldEqual, services.ErrRemoveLeader)
				So(fake.removeCalls, ShouldEqual, 0)
			})
		})

		Convey("When removing a regular member", func() {
			_, err := svc.RemoveMember(context.Background(), team, 11)

			Convey("Then the request is issued and the roster re-fetched once", func() {
				So(err, ShouldBeNil)
				So(fake.removeCalls, ShouldEqual, 1)
				So(fake.getCalls, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a declining confirmation gate", t, func() {
		fake := &fakeTeamAPI{team: rocketTeam()}
		svc := services.NewTeamService(fake, sessionForUser(t, 10), func(string) bool { return false })

		Convey("Then the removal is aborted before any request", func() {
			_, err := svc.RemoveMember(context.Background(), rocketTeam(), 11)
			So(err, ShouldEqual, services.ErrNotConfirmed)
			So(fake.removeCalls, ShouldEqual, 0)
		})
	})

	Convey("Given no confirmation gate at all", t, func() {
		fake := &fakeTeamAPI{team: rocketTeam()}
		svc := services.NewTeamService(fake, sessionForUser(t, 10), nil)

		Convey("Then removals are always declined", func() {
			_, err := svc.RemoveMember(context.Background(), rocketTeam(), 11)
			So(err, ShouldEqual, services.ErrNotConfirmed)
			So(fake.removeCalls, ShouldEqual, 0)
		})
	})
}

func TestIsLeader(t *testing.T) {
	fake := &fakeTeamAPI{}

	Convey("Given a session matching the leader", t, func() {
		svc := services.NewTeamService(fake, sessionForUser(t, 10), nil)
		So(svc.IsLeader(rocketTeam()), ShouldBeTrue)
	})

	Convey("Given a session of a regular member", t, func() {
		svc := services.NewTeamService(fake, sessionForUser(t, 11), nil)
		So(svc.IsLeader(rocketTeam()), ShouldBeFalse)
	})

	Convey("Given an undecodable token and no fallback", t, func() {
		svc := services.NewTeamService(fake, session.New("garbage"), nil)

		Convey("Then leader-only actions are disabled, not crashed", func() {
			So(svc.IsLeader(rocketTeam()), ShouldBeFalse)
		})
	})
}
