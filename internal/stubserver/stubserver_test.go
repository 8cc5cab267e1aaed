package stubserver_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RakhaaNZ/CompVerse-app/internal/api"
	"github.com/RakhaaNZ/CompVerse-app/internal/models"
	"github.com/RakhaaNZ/CompVerse-app/internal/services"
	"github.com/RakhaaNZ/CompVerse-app/internal/session"
	"github.com/RakhaaNZ/CompVerse-app/internal/stubserver"

	. "github.com/smartystreets/goconvey/convey"
)

const testTimeout = 5 * time.Second

type fixture struct {
	stub   *stubserver.Server
	server *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stub := stubserver.NewServer("test-secret")
	server := httptest.NewServer(stub.Handler())
	t.Cleanup(server.Close)
	return &fixture{stub: stub, server: server}
}

// signupAndLogin creates an account and returns a client authenticated as it.
func (f *fixture) signupAndLogin(t *testing.T, first, email string) (*api.Client, *session.Session) {
	t.Helper()
	ctx := context.Background()

	anonymous := api.NewClient(f.server.URL+"/api", testTimeout, session.New(""))
	if _, err := anonymous.SignUp(ctx, first, "Tester", email, "password"); err != nil {
		t.Fatalf("failed to sign up %s: %v", email, err)
	}
	pair, err := anonymous.ObtainToken(ctx, email, "password")
	if err != nil {
		t.Fatalf("failed to log in %s: %v", email, err)
	}

	sess := session.New(pair.Access)
	return api.NewClient(f.server.URL+"/api", testTimeout, sess), sess
}

func (f *fixture) addCompetition(teamBased bool, maxParticipants int, close time.Time) models.Competition {
	competitionType := models.CompetitionTypeIndividual
	if teamBased {
		competitionType = models.CompetitionTypeTeam
	}
	return f.stub.Competitions.Create(context.Background(), models.Competition{
		Title:             "E2E Competition",
		Category:          "Testing",
		Type:              competitionType,
		StartDate:         close.Add(24 * time.Hour),
		EndDate:           close.Add(48 * time.Hour),
		CloseRegistration: close,
		MaxParticipants:   maxParticipants,
		IsTeamBased:       teamBased,
	})
}

func TestAuthAndIdentity(t *testing.T) {
	Convey("Given a stub server", t, func() {
		f := newFixture(t)
		ctx := context.Background()

		Convey("When a user signs up and logs in", func() {
			client, sess := f.signupAndLogin(t, "Alice", "alice@e2e.test")

			Convey("Then the profile resolves and the token carries the identity", func() {
				user, err := client.CurrentUser(ctx)
				So(err, ShouldBeNil)
				So(user.Email, ShouldEqual, "alice@e2e.test")

				id, ok := sess.UserID()
				So(ok, ShouldBeTrue)
				So(id, ShouldEqual, user.ID)
			})
		})

		Convey("When an anonymous client hits a protected route", func() {
			anonymous := api.NewClient(f.server.URL+"/api", testTimeout, session.New(""))
			_, err := anonymous.CurrentUser(ctx)

			Convey("Then ErrUnauthorized is surfaced", func() {
				So(errors.Is(err, api.ErrUnauthorized), ShouldBeTrue)
			})
		})

		Convey("When a refresh token is exchanged", func() {
			anonymous := api.NewClient(f.server.URL+"/api", testTimeout, session.New(""))
			_, err := anonymous.SignUp(ctx, "Bob", "Tester", "bob@e2e.test", "password")
			So(err, ShouldBeNil)
			pair, err := anonymous.ObtainToken(ctx, "bob@e2e.test", "password")
			So(err, ShouldBeNil)

			fresh, err := anonymous.RefreshToken(ctx, pair.Refresh)

			Convey("Then a new access token is issued", func() {
				So(err, ShouldBeNil)
				So(fresh.Access, ShouldNotBeEmpty)
			})
		})
	})
}

func TestIndividualRegistrationFlow(t *testing.T) {
	Convey("Given an open individual competition", t, func() {
		f := newFixture(t)
		ctx := context.Background()
		competition := f.addCompetition(false, 100, time.Now().Add(24*time.Hour))
		client, _ := f.signupAndLogin(t, "Alice", "alice@e2e.test")

		coordinator := services.NewRegistrationCoordinator(client, competition, nil)

		Convey("When registering individually", func() {
			err := coordinator.RegisterIndividual(ctx)

			Convey("Then the registration exists server-side", func() {
				So(err, ShouldBeNil)
				So(coordinator.Mode(), ShouldEqual, services.ModeDone)

				user, err := client.CurrentUser(ctx)
				So(err, ShouldBeNil)
				registrations, err := client.ListRegistrations(ctx, competition.ID, user.ID)
				So(err, ShouldBeNil)
				So(registrations, ShouldHaveLength, 1)
			})

			Convey("And registering again is rejected by the server", func() {
				retry := services.NewRegistrationCoordinator(client, competition, nil)
				err := retry.RegisterIndividual(ctx)
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "already registered")
			})
		})
	})

	Convey("Given a competition whose registration closed", t, func() {
		f := newFixture(t)
		competition := f.addCompetition(false, 100, time.Now().Add(-time.Hour))
		client, _ := f.signupAndLogin(t, "Alice", "alice@e2e.test")

		coordinator := services.NewRegistrationCoordinator(client, competition, nil)

		Convey("Then the coordinator rejects locally", func() {
			err := coordinator.RegisterIndividual(context.Background())
			So(err, ShouldEqual, services.ErrRegistrationClosed)
		})
	})
}

func TestTeamRegistrationFlow(t *testing.T) {
	Convey("Given an open team competition and two users", t, func() {
		f := newFixture(t)
		ctx := context.Background()
		competition := f.addCompetition(true, 3, time.Now().Add(24*time.Hour))
		aliceClient, _ := f.signupAndLogin(t, "Alice", "alice@e2e.test")
		bobClient, _ := f.signupAndLogin(t, "Bob", "bob@e2e.test")

		Convey("When Alice creates a team", func() {
			created := 0
			coordinator := services.NewRegistrationCoordinator(aliceClient, competition, func() {
				created++
			})
			So(coordinator.ChooseCreate(), ShouldBeNil)
			So(coordinator.CreateTeam(ctx, "Rocket", nil), ShouldBeNil)
			So(created, ShouldEqual, 1)

			teams, err := aliceClient.ListOpenTeams(ctx, competition.ID)
			So(err, ShouldBeNil)
			So(teams, ShouldHaveLength, 1)
			team := teams[0]

			Convey("Then she is the leader and registered", func() {
				alice, err := aliceClient.CurrentUser(ctx)
				So(err, ShouldBeNil)
				So(team.Leader.ID, ShouldEqual, alice.ID)
				So(team.Members, ShouldHaveLength, 1)
				So(team.IsLookingForMembers, ShouldBeTrue)

				registrations, err := aliceClient.ListRegistrations(ctx, competition.ID, alice.ID)
				So(err, ShouldBeNil)
				So(registrations, ShouldHaveLength, 1)
			})

			Convey("And Bob can find and join it", func() {
				joined := 0
				bobCoordinator := services.NewRegistrationCoordinator(bobClient, competition, func() {
					joined++
				})
				So(bobCoordinator.ChooseFind(ctx), ShouldBeNil)
				So(bobCoordinator.Teams(), ShouldHaveLength, 1)

				bobCoordinator.SelectTeam(team.ID)
				So(bobCoordinator.JoinTeam(ctx), ShouldBeNil)
				So(joined, ShouldEqual, 1)

				roster, err := bobClient.GetTeam(ctx, team.ID)
				So(err, ShouldBeNil)
				So(roster.Members, ShouldHaveLength, 2)

				Convey("And joining twice surfaces the recognized conflict", func() {
					again := services.NewRegistrationCoordinator(bobClient, competition, nil)
					So(again.ChooseFind(ctx), ShouldBeNil)
					again.SelectTeam(team.ID)
					err := again.JoinTeam(ctx)
					So(err, ShouldEqual, services.ErrAlreadyRegistered)
				})
			})

			Convey("And Bob cannot create a second registration via a second team after joining", func() {
				So(bobClient.JoinTeam(ctx, team.ID), ShouldBeNil)
				_, err := bobClient.CreateTeam(ctx, "Sidecar", competition.ID)
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "already registered")
			})

			Convey("And a full team stops accepting members", func() {
				So(bobClient.JoinTeam(ctx, team.ID), ShouldBeNil)
				carolClient, _ := f.signupAndLogin(t, "Carol", "carol@e2e.test")
				So(carolClient.JoinTeam(ctx, team.ID), ShouldBeNil)

				open, err := aliceClient.ListOpenTeams(ctx, competition.ID)
				So(err, ShouldBeNil)
				So(open, ShouldBeEmpty)

				daveClient, _ := f.signupAndLogin(t, "Dave", "dave@e2e.test")
				err = daveClient.JoinTeam(ctx, team.ID)
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "maximum number of members")
			})
		})
	})
}

func TestMembershipManagementFlow(t *testing.T) {
	Convey("Given a team led by Alice with Bob as a member", t, func() {
		f := newFixture(t)
		ctx := context.Background()
		competition := f.addCompetition(true, 4, time.Now().Add(24*time.Hour))
		aliceClient, aliceSession := f.signupAndLogin(t, "Alice", "alice@e2e.test")
		bobClient, bobSession := f.signupAndLogin(t, "Bob", "bob@e2e.test")
		f.signupAndLogin(t, "Carol", "carol@e2e.test")

		team, err := aliceClient.CreateTeam(ctx, "Rocket", competition.ID)
		So(err, ShouldBeNil)
		So(bobClient.JoinTeam(ctx, team.ID), ShouldBeNil)

		accept := func(string) bool { return true }
		aliceService := services.NewTeamService(aliceClient, aliceSession, accept)
		bobService := services.NewTeamService(bobClient, bobSession, accept)

		Convey("Then only Alice is recognized as leader", func() {
			roster, err := aliceService.Team(ctx, team.ID)
			So(err, ShouldBeNil)
			So(aliceService.IsLeader(roster), ShouldBeTrue)
			So(bobService.IsLeader(roster), ShouldBeFalse)
		})

		Convey("When Alice adds Carol by email", func() {
			roster, err := aliceService.AddMember(ctx, team.ID, "carol@e2e.test")

			Convey("Then the re-fetched roster includes her", func() {
				So(err, ShouldBeNil)
				So(roster.Members, ShouldHaveLength, 3)
			})

			Convey("And adding her again surfaces the recognized conflict", func() {
				_, err := aliceService.AddMember(ctx, team.ID, "carol@e2e.test")
				So(err, ShouldEqual, services.ErrAlreadyMember)
			})
		})

		Convey("When Alice adds an unknown email", func() {
			_, err := aliceService.AddMember(ctx, team.ID, "ghost@e2e.test")

			Convey("Then the server message is surfaced", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldEqual, "User not found")
			})
		})

		Convey("When Bob tries to add a member", func() {
			_, err := bobService.AddMember(ctx, team.ID, "carol@e2e.test")

			Convey("Then the server denies it", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "permission")
			})
		})

		Convey("When Alice removes Bob", func() {
			roster, err := aliceService.Team(ctx, team.ID)
			So(err, ShouldBeNil)
			bob, err := bobClient.CurrentUser(ctx)
			So(err, ShouldBeNil)

			updated, err := aliceService.RemoveMember(ctx, roster, bob.ID)

			Convey("Then the roster shrinks and Bob may register again", func() {
				So(err, ShouldBeNil)
				So(updated.Members, ShouldHaveLength, 1)

				So(bobClient.JoinTeam(ctx, team.ID), ShouldBeNil)
			})
		})

		Convey("When the server is asked to remove the leader directly", func() {
			alice, err := aliceClient.CurrentUser(ctx)
			So(err, ShouldBeNil)

			err = aliceClient.RemoveTeamMember(ctx, team.ID, alice.ID)

			Convey("Then it refuses", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "leader")
			})
		})
	})
}

func TestCompetitionListing(t *testing.T) {
	Convey("Given a seeded stub", t, func() {
		f := newFixture(t)
		ctx := context.Background()
		So(f.stub.Seed(ctx), ShouldBeNil)

		client := api.NewClient(f.server.URL+"/api", testTimeout, session.New(""))

		Convey("Then competitions list publicly", func() {
			competitions, err := client.ListCompetitions(ctx, api.CompetitionFilter{})
			So(err, ShouldBeNil)
			So(len(competitions), ShouldEqual, 3)
		})

		Convey("Then the type filter narrows the list", func() {
			competitions, err := client.ListCompetitions(ctx, api.CompetitionFilter{
				Type: models.CompetitionTypeTeam,
			})
			So(err, ShouldBeNil)
			So(len(competitions), ShouldEqual, 2)
			for _, c := range competitions {
				So(c.IsTeamBased, ShouldBeTrue)
			}
		})

		Convey("Then a single competition resolves by id", func() {
			competitions, err := client.ListCompetitions(ctx, api.CompetitionFilter{})
			So(err, ShouldBeNil)
			one, err := client.GetCompetition(ctx, competitions[0].ID)
			So(err, ShouldBeNil)
			So(one.Title, ShouldEqual, competitions[0].Title)
		})

		Convey("Then an unknown competition is a 404 detail", func() {
			_, err := client.GetCompetition(ctx, 999)
			So(err, ShouldNotBeNil)
			var apiErr *api.Error
			So(errors.As(err, &apiErr), ShouldBeTrue)
			So(apiErr.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}
