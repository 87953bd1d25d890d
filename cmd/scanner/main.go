// Package main is the entry point for the PureMark scanner CLI. It wires the
// device store, the auth session, the backend selection and the scan client
// together and exposes the scan, history, profile and feedback operations
// from the command line.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/puremark/puremark-go/internal/auth"
	"github.com/puremark/puremark-go/internal/backend"
	"github.com/puremark/puremark-go/internal/client"
	"github.com/puremark/puremark-go/internal/config"
	"github.com/puremark/puremark-go/internal/history"
	"github.com/puremark/puremark-go/internal/mirror"
	"github.com/puremark/puremark-go/internal/onboarding"
	"github.com/puremark/puremark-go/internal/storage"
	"github.com/puremark/puremark-go/internal/utils"
)

// Version information is set during build time through linker flags.
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// init loads environment variables from a .env file if present.
func init() {
	// Not finding a .env file is a non-fatal condition, as configuration
	// might be provided by other means.
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found or couldn't be loaded")
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: scanner [flags] <command> [command flags]

Commands:
  scan      -image <file>              scan an ingredient label photo
  history                              list stored scans, newest first
  show      -id <id>                   show one stored scan
  rename    -id <id> -name <name>      rename a stored scan
  delete    -id <id>                   delete a stored scan
  clear                                clear the stored history
  profile   [-diet <d>] [-allergies a,b]  show or update the profile
  feedback  -category <c> -message <m> submit feedback
  health                               check backend reachability
  login     -token <jwt> [-user <id>] [-email <e>]  store a completed sign-in
  logout                               clear the stored session
  guest     [-off]                     continue as guest (or stop)

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	var (
		configPath  string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "./configs/config.yaml", "Path to configuration file")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Usage = usage
	flag.Parse()

	if showVersion {
		fmt.Printf("PureMark Scanner\nVersion: %s\nCommit: %s\nBuild Date: %s\n", version, commit, buildDate)
		os.Exit(0)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if version != "dev" {
		cfg.App.Version = version
	}

	utils.InitLogger(cfg)
	utils.InitValidator()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	if err := run(cfg, flag.Arg(0), flag.Args()[1:]); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// run wires the application components and dispatches the command.
func run(cfg *config.AppConfig, command string, args []string) error {
	ctx := context.Background()

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open device store: %w", err)
	}
	defer store.Close()

	session, err := auth.NewManager(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	firstRun := onboarding.NewFlag(store)
	if !firstRun.Completed(ctx) {
		log.Info().Msg("First run; set a profile with 'profile -diet' before scanning")
		if err := firstRun.SetCompleted(ctx, true); err != nil {
			log.Warn().Err(err).Msg("Could not record onboarding")
		}
	}

	endpoint, err := backend.Resolve(&cfg.Backend)
	if err != nil {
		return err
	}
	log.Info().Str("backend", endpoint.Name).Str("base_url", endpoint.BaseURL).Msg("Backend selected")

	scanClient := client.New(endpoint, session)

	var historyOpts []history.Option
	if cfg.Mirror.Enabled {
		remote, mirrorErr := mirror.Connect(ctx, cfg.Mirror.DSN)
		if mirrorErr != nil {
			// The local store is authoritative; run without the mirror.
			log.Warn().Err(mirrorErr).Msg("Mirror unavailable")
		} else {
			defer remote.Close()
			historyOpts = append(historyOpts, history.WithMirror(session, remote))
		}
	}
	scans := history.NewStore(store, historyOpts...)

	switch command {
	case "scan":
		return cmdScan(ctx, scanClient, scans, args)
	case "history":
		return printJSON(scans.ListScans(ctx))
	case "show":
		return cmdShow(ctx, scans, args)
	case "rename":
		return cmdRename(ctx, scans, args)
	case "delete":
		return cmdDelete(ctx, scans, args)
	case "clear":
		return scans.ClearAll(ctx)
	case "profile":
		return cmdProfile(ctx, scans, args)
	case "feedback":
		return cmdFeedback(ctx, scanClient, args)
	case "health":
		fmt.Println(scanClient.Health(ctx))
		return nil
	case "login":
		return cmdLogin(ctx, session, args)
	case "logout":
		return session.SignOut(ctx)
	case "guest":
		return cmdGuest(ctx, session, args)
	default:
		usage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func cmdScan(ctx context.Context, scanClient *client.ScanClient, scans *history.Store, args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	imagePath := fs.String("image", "", "Path to the label photo (JPEG, PNG or WebP)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *imagePath == "" {
		return fmt.Errorf("scan requires -image")
	}

	data, err := os.ReadFile(*imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	profile := scans.GetProfile(ctx)
	result := scanClient.Scan(ctx, base64.StdEncoding.EncodeToString(data), profile)

	if !result.Success {
		return printJSON(result)
	}

	item, err := scans.RecordScan(ctx, result, profile.Diet)
	if err != nil {
		return err
	}
	return printJSON(item)
}

func cmdShow(ctx context.Context, scans *history.Store, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	id := fs.String("id", "", "Scan record id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	item, err := scans.GetScan(ctx, *id)
	if err != nil {
		return err
	}
	return printJSON(item)
}

func cmdRename(ctx context.Context, scans *history.Store, args []string) error {
	fs := flag.NewFlagSet("rename", flag.ExitOnError)
	id := fs.String("id", "", "Scan record id")
	name := fs.String("name", "", "New product name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return scans.RenameScan(ctx, *id, *name)
}

func cmdDelete(ctx context.Context, scans *history.Store, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.String("id", "", "Scan record id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return scans.DeleteScan(ctx, *id)
}

func cmdProfile(ctx context.Context, scans *history.Store, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	diet := fs.String("diet", "", "Diet to evaluate scans against (halal, kosher or none)")
	allergies := fs.String("allergies", "", "Comma-separated allergen names")
	if err := fs.Parse(args); err != nil {
		return err
	}

	profile := scans.GetProfile(ctx)

	if *diet == "" && *allergies == "" {
		return printJSON(profile)
	}

	if *diet != "" {
		profile.Diet = *diet
	}
	if *allergies != "" {
		parts := strings.Split(*allergies, ",")
		profile.Allergies = profile.Allergies[:0]
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				profile.Allergies = append(profile.Allergies, trimmed)
			}
		}
	}

	if err := scans.SaveProfile(ctx, profile); err != nil {
		return err
	}
	return printJSON(profile)
}

func cmdFeedback(ctx context.Context, scanClient *client.ScanClient, args []string) error {
	fs := flag.NewFlagSet("feedback", flag.ExitOnError)
	category := fs.String("category", "other", "Feedback category (bug, suggestion, accuracy or other)")
	message := fs.String("message", "", "Feedback message")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return printJSON(scanClient.SubmitFeedback(ctx, *category, *message, nil))
}

// cmdLogin stores the outcome of a sign-in completed in the browser. The
// token's expiry is taken from its exp claim.
func cmdLogin(ctx context.Context, session *auth.Manager, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	token := fs.String("token", "", "Access token from the completed sign-in")
	userID := fs.String("user", "", "User id from the auth provider")
	email := fs.String("email", "", "Signed-in email address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *token == "" {
		return fmt.Errorf("login requires -token")
	}

	return session.SetSession(ctx, &auth.Session{
		UserID:      *userID,
		Email:       *email,
		AccessToken: *token,
	})
}

func cmdGuest(ctx context.Context, session *auth.Manager, args []string) error {
	fs := flag.NewFlagSet("guest", flag.ExitOnError)
	off := fs.Bool("off", false, "Stop browsing as a guest")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return session.SetGuest(ctx, !*off)
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
