// Package cmd wires configuration, logging, and the compverse subcommands.
package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/RakhaaNZ/CompVerse-app/internal/api"
	"github.com/RakhaaNZ/CompVerse-app/internal/config"
	"github.com/RakhaaNZ/CompVerse-app/internal/models"
	"github.com/RakhaaNZ/CompVerse-app/internal/services"
	"github.com/RakhaaNZ/CompVerse-app/internal/session"
	"github.com/RakhaaNZ/CompVerse-app/internal/stubserver"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const tokenFilePermission = 0600

// Run dispatches the compverse CLI.
func Run() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "competitions":
		err = runCompetitions(args)
	case "register":
		err = runRegister(args)
	case "team":
		err = runTeam(args)
	case "whoami":
		err = runWhoami(args)
	case "signup":
		err = runSignup(args)
	case "login":
		err = runLogin(args)
	case "stub":
		err = runStub(args)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("Command failed")
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `compverse - CompVerse competition platform client

Usage:
  compverse <command> [flags]

Commands:
  competitions  List competitions or show one (-id)
  register      Register for a competition, individually or via a team
  team          Show a team roster; leaders can -add or -remove members
  whoami        Show the authenticated profile
  signup        Create an account
  login         Obtain a token and store it in the token file
  stub          Run the local stub API server
  help          Show this help

Each command accepts -config (default "config.yaml").
`)
}

// environment bundles what every subcommand needs.
type environment struct {
	cfg     *config.Config
	session *session.Session
	client  *api.Client
}

func setup(configPath string) (*environment, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	setupLogger(cfg.Log.Level)

	sess := session.Load(cfg.Auth.TokenFile, cfg.Auth.FallbackUserID)
	client := api.NewClient(cfg.API.BaseURL, cfg.API.RequestTimeout(), sess)
	return &environment{cfg: cfg, session: sess, client: client}, nil
}

// setupLogger configures zerolog
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func runCompetitions(args []string) error {
	fs := flag.NewFlagSet("competitions", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	category := fs.String("category", "", "filter by category")
	competitionType := fs.String("type", "", "filter by type (Individual or Team)")
	id := fs.Int64("id", 0, "show one competition")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := setup(*configPath)
	if err != nil {
		return err
	}
	ctx := context.Background()

	if *id != 0 {
		competition, err := env.client.GetCompetition(ctx, *id)
		if err != nil {
			return err
		}
		printCompetition(competition)
		return nil
	}

	competitions, err := env.client.ListCompetitions(ctx, api.CompetitionFilter{
		Category: *category,
		Type:     *competitionType,
	})
	if err != nil {
		return err
	}
	for i := range competitions {
		printCompetition(&competitions[i])
	}
	return nil
}

func printCompetition(c *models.Competition) {
	status := "open"
	if c.RegistrationClosed(time.Now()) {
		status = "closed"
	}
	fmt.Printf("#%d  %s  [%s/%s]  registration %s until %s\n",
		c.ID, c.Title, c.Category, c.Type, status,
		c.CloseRegistration.Format(time.RFC3339))
}

func runRegister(args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	competitionID := fs.Int64("competition", 0, "competition id (required)")
	teamID := fs.Int64("team", 0, "join this team")
	createName := fs.String("create", "", "create a team with this name")
	invites := fs.String("invite", "", "comma-separated emails to invite after creating")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *competitionID == 0 {
		return fmt.Errorf("-competition is required")
	}

	env, err := setup(*configPath)
	if err != nil {
		return err
	}
	ctx := context.Background()

	competition, err := env.client.GetCompetition(ctx, *competitionID)
	if err != nil {
		return err
	}

	coordinator := services.NewRegistrationCoordinator(env.client, *competition, func() {
		fmt.Printf("Registered for %q.\n", competition.Title)
	})

	if !competition.IsTeamBased {
		return coordinator.RegisterIndividual(ctx)
	}

	switch {
	case *createName != "":
		if err := coordinator.ChooseCreate(); err != nil {
			return err
		}
		var inviteEmails []string
		if *invites != "" {
			inviteEmails = strings.Split(*invites, ",")
		}
		return coordinator.CreateTeam(ctx, *createName, inviteEmails)

	case *teamID != 0:
		if err := coordinator.ChooseFind(ctx); err != nil {
			return err
		}
		coordinator.SelectTeam(*teamID)
		return coordinator.JoinTeam(ctx)

	default:
		// No team chosen yet: list the open teams so the user can pick.
		if err := coordinator.ChooseFind(ctx); err != nil {
			return err
		}
		teams := coordinator.Teams()
		if len(teams) == 0 {
			fmt.Println("No open teams found. Create one with -create NAME.")
			return nil
		}
		fmt.Println("Open teams (re-run with -team ID to join):")
		for i := range teams {
			t := &teams[i]
			fmt.Printf("#%d  %s  leader %s  members %d/%d\n",
				t.ID, t.Name, t.Leader.FullName(),
				len(t.Members), t.Competition.MaxParticipants)
		}
		return nil
	}
}

func runTeam(args []string) error {
	fs := flag.NewFlagSet("team", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	id := fs.Int64("id", 0, "team id (required)")
	addEmail := fs.String("add", "", "add a member by email (leader only)")
	removeID := fs.Int64("remove", 0, "remove a member by id (leader only)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return fmt.Errorf("-id is required")
	}

	env, err := setup(*configPath)
	if err != nil {
		return err
	}
	ctx := context.Background()

	teamService := services.NewTeamService(env.client, env.session, confirmOnStdin)

	team, err := teamService.Team(ctx, *id)
	if err != nil {
		return err
	}

	switch {
	case *addEmail != "":
		team, err = teamService.AddMember(ctx, team.ID, *addEmail)
		if err != nil {
			return err
		}
		fmt.Println("Member added.")

	case *removeID != 0:
		team, err = teamService.RemoveMember(ctx, team, *removeID)
		if err != nil {
			return err
		}
		fmt.Println("Member removed.")
	}

	printTeam(team, teamService.IsLeader(team))
	return nil
}

func printTeam(t *models.Team, isLeader bool) {
	fmt.Printf("Team %q (#%d) - %s\n", t.Name, t.ID, t.Competition.Title)
	for i := range t.Members {
		m := &t.Members[i]
		role := ""
		if m.ID == t.Leader.ID {
			role = "  (leader)"
		}
		fmt.Printf("  #%d  %s  <%s>%s\n", m.ID, m.FullName(), m.Email, role)
	}
	if isLeader {
		fmt.Println("You lead this team; use -add EMAIL or -remove ID to manage it.")
	}
}

// confirmOnStdin gates destructive operations behind a yes/no prompt.
func confirmOnStdin(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func runWhoami(args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := setup(*configPath)
	if err != nil {
		return err
	}

	user, err := env.client.CurrentUser(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("#%d  %s  <%s>\n", user.ID, user.FullName(), user.Email)
	return nil
}

func runSignup(args []string) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	email := fs.String("email", "", "email (required)")
	password := fs.String("password", "", "password (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("-email and -password are required")
	}

	env, err := setup(*configPath)
	if err != nil {
		return err
	}

	user, err := env.client.SignUp(context.Background(), *first, *last, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("Account created: #%d %s\n", user.ID, user.Email)
	return nil
}

func runLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	email := fs.String("email", "", "email (required)")
	password := fs.String("password", "", "password (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("-email and -password are required")
	}

	env, err := setup(*configPath)
	if err != nil {
		return err
	}

	pair, err := env.client.ObtainToken(context.Background(), *email, *password)
	if err != nil {
		return err
	}

	if err := os.WriteFile(env.cfg.Auth.TokenFile, []byte(pair.Access), tokenFilePermission); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	fmt.Printf("Logged in; token stored in %s\n", env.cfg.Auth.TokenFile)
	return nil
}

func runStub(args []string) error {
	fs := flag.NewFlagSet("stub", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	seed := fs.Bool("seed", true, "load demo users and competitions")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	setupLogger(cfg.Log.Level)

	server := stubserver.NewServer(cfg.Stub.Secret)
	if *seed {
		if err := server.Seed(context.Background()); err != nil {
			return fmt.Errorf("failed to seed stub data: %w", err)
		}
		log.Info().Msg("Demo data loaded")
	}

	srv := &http.Server{
		Addr:         cfg.Stub.Addr(),
		Handler:      server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Stub.Addr()).Msg("Starting stub API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Stub server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down stub server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Stub server forced to shutdown")
	}

	log.Info().Msg("Stub server exited")
	return nil
}
