package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pricetrail/internal/adapters/pocketbase"
	"pricetrail/internal/adapters/session"
	"pricetrail/internal/analytics"
	"pricetrail/internal/app"
	"pricetrail/internal/config"
	"pricetrail/internal/domain/series"
	"pricetrail/internal/domain/shared"
	"pricetrail/internal/ports/inbound"
	"pricetrail/internal/ports/outbound"
)

const usage = `usage: pricetrail <command> [args]

commands:
  login <email> <password>
  signup <username> <email> <password> <password-confirm>
  logout
  whoami
  list [search]
  add-item <name> [description] [category]
  add-price <item-id> <price>
  delete-item <item-id>
  stats <item-id> [days]
  chart <item-id> <width> <height> [days]
`

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	initLogging(cfg)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx := context.Background()

	client := pocketbase.NewClient(pocketbase.ClientParams{
		BaseURL: cfg.Remote.BaseURL,
		Timeout: cfg.Remote.Timeout,
		Logger:  log.Logger,
	})
	log.Info().Str("base_url", cfg.Remote.BaseURL).Msg("Record service client initialized")

	sessions, cleanup, err := newSessionStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize session store")
	}
	defer cleanup()

	auth := app.NewAuthManager(app.AuthManagerParams{
		API:           client,
		Sessions:      sessions,
		HealthTimeout: cfg.Remote.HealthCheckTimeout,
		Logger:        log.Logger,
	})
	tracker := app.NewTracker(app.TrackerParams{
		Records: client,
		Logger:  log.Logger,
	})
	holder := app.NewSnapshotHolder(app.SnapshotHolderParams{
		EpochFn: auth.Epoch,
		Logger:  log.Logger,
	})

	state := auth.Restore(ctx)
	log.Info().Str("state", state.String()).Msg("Session restore completed")

	if err := run(ctx, os.Args[1], os.Args[2:], auth, tracker, holder); err != nil {
		fmt.Fprintf(os.Stderr, "pricetrail: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string, auth *app.AuthManager, tracker *app.Tracker, holder *app.SnapshotHolder) error {
	switch command {
	case "login":
		if len(args) != 2 {
			return fmt.Errorf("usage: login <email> <password>")
		}
		user, err := auth.SignIn(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("signed in as %s (%s)\n", user.Username, user.Email)
		return nil

	case "signup":
		if len(args) != 4 {
			return fmt.Errorf("usage: signup <username> <email> <password> <password-confirm>")
		}
		user, err := auth.SignUp(ctx, inbound.SignUpRequest{
			Username:        args[0],
			Email:           args[1],
			Password:        args[2],
			PasswordConfirm: args[3],
		})
		if err != nil {
			return err
		}
		fmt.Printf("account created, signed in as %s (%s)\n", user.Username, user.Email)
		return nil

	case "logout":
		if err := auth.SignOut(ctx); err != nil {
			return err
		}
		holder.Reset()
		fmt.Println("signed out")
		return nil

	case "whoami":
		user := auth.CurrentUser()
		if user == nil {
			fmt.Println("not signed in")
			return nil
		}
		fmt.Printf("%s (%s)\n", user.Username, user.Email)
		return nil

	case "list":
		user, err := requireUser(auth)
		if err != nil {
			return err
		}
		return listItems(ctx, tracker, holder, user.ID, firstOr(args, ""))

	case "add-item":
		user, err := requireUser(auth)
		if err != nil {
			return err
		}
		if len(args) < 1 {
			return fmt.Errorf("usage: add-item <name> [description] [category]")
		}
		item, err := tracker.CreateItem(ctx, user.ID, args[0], nthOr(args, 1, ""), nthOr(args, 2, ""))
		if err != nil {
			return err
		}
		fmt.Printf("created item %s (%s)\n", item.Name, item.ID)
		return nil

	case "add-price":
		if _, err := requireUser(auth); err != nil {
			return err
		}
		if len(args) != 2 {
			return fmt.Errorf("usage: add-price <item-id> <price>")
		}
		obs, err := tracker.AddPrice(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("recorded $%.2f for item %s\n", obs.Price, obs.ItemID)
		return nil

	case "delete-item":
		if _, err := requireUser(auth); err != nil {
			return err
		}
		if len(args) != 1 {
			return fmt.Errorf("usage: delete-item <item-id>")
		}
		result, err := tracker.DeleteItemCascade(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("deleted item and %d of %d observations\n",
			result.ObservationsRemoved, result.ObservationsTotal)
		return nil

	case "stats":
		if _, err := requireUser(auth); err != nil {
			return err
		}
		if len(args) < 1 {
			return fmt.Errorf("usage: stats <item-id> [days]")
		}
		return printStats(ctx, tracker, args[0], daysArg(args, 1))

	case "chart":
		if _, err := requireUser(auth); err != nil {
			return err
		}
		if len(args) < 3 {
			return fmt.Errorf("usage: chart <item-id> <width> <height> [days]")
		}
		return printChart(ctx, tracker, args[0], args[1], args[2], daysArg(args, 3))

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func listItems(ctx context.Context, tracker *app.Tracker, holder *app.SnapshotHolder, userID, search string) error {
	seq, epoch := holder.Begin()

	dashboard, err := tracker.LoadDashboard(ctx, userID)
	if err != nil {
		return err
	}
	dashboard.Seq, dashboard.Epoch = seq, epoch

	if !holder.Apply(dashboard) {
		return fmt.Errorf("dashboard refresh superseded")
	}

	items := app.SearchItems(dashboard.Items, search)
	if len(items) == 0 {
		fmt.Println("no items")
		return nil
	}

	for _, item := range items {
		count := app.ObservationCount(dashboard.PricesByItem, item.ID)
		if price, ok := app.CurrentPrice(dashboard.PricesByItem, item.ID); ok {
			fmt.Printf("%s  %-20s $%.2f  (%d observations)\n", item.ID, item.Name, price, count)
		} else {
			fmt.Printf("%s  %-20s no prices yet\n", item.ID, item.Name)
		}
	}
	return nil
}

func printStats(ctx context.Context, tracker *app.Tracker, itemID string, days int) error {
	observations, err := tracker.ItemPrices(ctx, itemID, days)
	if err != nil {
		return err
	}

	s := series.FromObservations(observations)
	if s.IsEmpty() {
		fmt.Println("no observations in range")
		return nil
	}

	stats := analytics.Summarize(s)
	extremes := analytics.Extrema(s)

	fmt.Printf("latest   $%.2f\n", stats.Latest)
	fmt.Printf("average  $%.2f\n", stats.Average)
	fmt.Printf("change   %+.1f%%\n", stats.ChangePct)
	fmt.Printf("high     $%.2f on %s\n", extremes.High.Value, extremes.High.Time.Format("2006-01-02"))
	fmt.Printf("low      $%.2f on %s\n", extremes.Low.Value, extremes.Low.Time.Format("2006-01-02"))
	return nil
}

func printChart(ctx context.Context, tracker *app.Tracker, itemID, rawWidth, rawHeight string, days int) error {
	width, errW := strconv.ParseFloat(rawWidth, 64)
	height, errH := strconv.ParseFloat(rawHeight, 64)
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		return fmt.Errorf("width and height must be positive numbers")
	}

	observations, err := tracker.ItemPrices(ctx, itemID, days)
	if err != nil {
		return err
	}

	s := series.FromObservations(observations)
	if s.IsEmpty() {
		fmt.Println("no observations in range")
		return nil
	}

	scales := analytics.BuildScales(s, width, height, analytics.DefaultPaddingFraction)
	path := analytics.BuildPath(s, scales.Time, scales.Value)
	fmt.Println(path.SVG())
	return nil
}

func requireUser(auth *app.AuthManager) (*shared.User, error) {
	user := auth.CurrentUser()
	if user == nil {
		return nil, fmt.Errorf("not signed in; run `pricetrail login` first")
	}
	return user, nil
}

func newSessionStore(cfg *config.Config) (outbound.SessionStore, func(), error) {
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		redisClient := session.NewRedisClient(cfg)
		if err := session.PingRedis(redisClient); err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Redis session store initialized")
		store := session.NewRedisStore(session.RedisStoreParams{
			Client: redisClient,
			Logger: log.Logger,
		})
		return store, func() { redisClient.Close() }, nil
	default:
		store := session.NewFileStore(session.FileStoreParams{
			Path:   cfg.Session.FilePath,
			Logger: log.Logger,
		})
		return store, func() {}, nil
	}
}

func firstOr(args []string, fallback string) string {
	return nthOr(args, 0, fallback)
}

func nthOr(args []string, n int, fallback string) string {
	if len(args) > n {
		return args[n]
	}
	return fallback
}

func daysArg(args []string, n int) int {
	if len(args) > n {
		if days, err := strconv.Atoi(args[n]); err == nil && days > 0 {
			return days
		}
	}
	return 0
}

func initLogging(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Set log format
	if cfg.Logging.Format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	zerolog.DefaultContextLogger = &log.Logger
}
