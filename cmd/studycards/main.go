package main

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/ymatsuda/studycards/internal/config"
	"github.com/ymatsuda/studycards/internal/db"
	"github.com/ymatsuda/studycards/internal/deck"
	"github.com/ymatsuda/studycards/internal/logger"
	"github.com/ymatsuda/studycards/internal/models"
	"github.com/ymatsuda/studycards/internal/repository"
	"github.com/ymatsuda/studycards/internal/repository/sqlite"
	"github.com/ymatsuda/studycards/internal/services"
	"github.com/ymatsuda/studycards/internal/study"
)

const usage = `usage: studycards <command> [flags]

commands:
  stats      show global study statistics
  available  count cards available under the current session config
  session    run an interactive study session
  export     write a backup of all learning data to --out
  import     restore a backup from --in
`

func main() {
	cfg := config.Load()

	dbPath := pflag.String("db", cfg.DBPath, "path to the SQLite database")
	deckPath := pflag.String("deck", cfg.DeckPath, "path to the deck JSON file")
	logLevel := pflag.String("log-level", cfg.LogLevel, "log level (DEBUG, INFO, WARN, ERROR)")
	maxCards := pflag.Int("max-cards", cfg.MaxCards, "maximum cards per session")
	includeNew := pflag.Bool("new", cfg.IncludeNew, "include new cards")
	includeReview := pflag.Bool("review", cfg.IncludeReview, "include due review cards")
	categories := pflag.StringSlice("categories", nil, "restrict to these categories")
	difficulties := pflag.StringSlice("difficulties", nil, "restrict to these difficulty levels")
	out := pflag.String("out", "backup.json", "backup output path (export)")
	in := pflag.String("in", "backup.json", "backup input path (import)")
	seed := pflag.Int64("seed", time.Now().UnixNano(), "seed for card selection")
	pflag.Parse()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(*logLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	if pflag.NArg() < 1 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := pflag.Arg(0)

	cfg.DBPath = *dbPath
	cfg.DeckPath = *deckPath
	cfg.LogLevel = *logLevel
	cfg.MaxCards = *maxCards
	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}

	cards, err := deck.Load(cfg.DeckPath)
	if err != nil {
		log.Error("failed to load deck: %v", err)
		os.Exit(1)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer database.Close()

	progressRepo := sqlite.NewProgressRepository(database.DB)
	sessionRepo := sqlite.NewSessionRepository(database.DB)
	rng := rand.New(rand.NewSource(*seed))
	svc := services.NewStudyService(cards, progressRepo, sessionRepo, rng)

	sessionCfg := study.SessionConfig{
		MaxCards:      cfg.MaxCards,
		IncludeNew:    *includeNew,
		IncludeReview: *includeReview,
	}
	for _, c := range *categories {
		sessionCfg.Categories = append(sessionCfg.Categories, models.Category(c))
	}
	for _, d := range *difficulties {
		sessionCfg.Difficulties = append(sessionCfg.Difficulties, models.Difficulty(d))
	}

	ctx := logger.NewContext(context.Background(), log)
	now := time.Now()

	switch command {
	case "stats":
		err = runStats(ctx, svc, now)
	case "available":
		err = runAvailable(ctx, svc, sessionCfg, now)
	case "session":
		err = runSession(ctx, svc, sessionCfg)
	case "export":
		err = runExport(ctx, progressRepo, sessionRepo, now, *out)
	case "import":
		err = runImport(ctx, progressRepo, sessionRepo, *in)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Error("%s failed: %v", command, err)
		os.Exit(1)
	}
}

func runStats(ctx context.Context, svc services.StudyService, now time.Time) error {
	stats, err := svc.Stats(ctx, now)
	if err != nil {
		return err
	}

	fmt.Printf("cards:            %d\n", stats.TotalCards)
	fmt.Printf("due today:        %d\n", stats.DueToday)
	fmt.Printf("new:              %d\n", stats.NewToday)
	fmt.Printf("studied today:    %d\n", stats.StudiedToday)
	fmt.Printf("streak:           %d day(s)\n", stats.Streak)
	fmt.Printf("average accuracy: %.1f%%\n", stats.AverageAccuracy)
	fmt.Printf("total study time: %.1f min\n", stats.TotalStudyTime)
	for _, cp := range stats.CategoryProgress {
		fmt.Printf("  %-16s %3d cards, %3d mastered, %.1f%% accuracy\n",
			cp.Category, cp.TotalCards, cp.MasteredCards, cp.AverageAccuracy)
	}
	return nil
}

func runAvailable(ctx context.Context, svc services.StudyService, cfg study.SessionConfig, now time.Time) error {
	n, err := svc.AvailableCards(ctx, cfg, now)
	if err != nil {
		return err
	}
	fmt.Printf("%d card(s) available\n", n)
	return nil
}

func runSession(ctx context.Context, svc services.StudyService, cfg study.SessionConfig) error {
	session, cards, err := svc.StartSession(ctx, cfg, time.Now())
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		fmt.Println("no cards available for this configuration")
		_, err = svc.EndSession(ctx, session.ID, time.Now())
		return err
	}

	fmt.Printf("session %s: %d card(s)\n\n", session.ID, len(cards))
	reader := bufio.NewReader(os.Stdin)

	for i, card := range cards {
		fmt.Printf("[%d/%d] (%s, %s)\n%s\n", i+1, len(cards), card.Category, card.Difficulty, card.Question)
		fmt.Print("press enter to reveal... ")
		if _, err := reader.ReadString('\n'); err != nil {
			break
		}
		asked := time.Now()
		fmt.Printf("\n%s\n\n", card.Answer)

		quality, hints := promptScore(reader)
		responseTime := time.Since(asked).Seconds()
		ev := models.NewReviewEvent(card.ID, quality, responseTime, hints, time.Now())
		if _, _, err := svc.RecordReview(ctx, session.ID, ev, time.Now()); err != nil {
			return err
		}
	}

	if _, err := svc.EndSession(ctx, session.ID, time.Now()); err != nil {
		return err
	}

	stats, err := svc.SessionStats(ctx, session.ID)
	if err != nil {
		return err
	}
	fmt.Printf("\ndone: %d/%d correct, avg response %.1fs, %d hint(s)\n",
		stats.CorrectCount, stats.TotalCards, stats.AverageResponseTime, stats.HintsUsed)
	return nil
}

// promptScore reads "quality [hints]" from the learner, e.g. "4" or "3 1".
func promptScore(reader *bufio.Reader) (quality, hints int) {
	for {
		fmt.Print("quality 0-5 (optionally: hints used): ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return 0, 0
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		q, err := strconv.Atoi(fields[0])
		if err != nil || q < 0 || q > 5 {
			fmt.Println("enter a number between 0 and 5")
			continue
		}
		h := 0
		if len(fields) > 1 {
			if v, err := strconv.Atoi(fields[1]); err == nil && v >= 0 {
				h = v
			}
		}
		return q, h
	}
}

func runExport(ctx context.Context, progress repository.ProgressRepository, sessions repository.SessionRepository, now time.Time, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := deck.Export(ctx, progress, sessions, now, f); err != nil {
		return err
	}
	fmt.Printf("backup written to %s\n", path)
	return nil
}

func runImport(ctx context.Context, progress repository.ProgressRepository, sessions repository.SessionRepository, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := deck.Import(ctx, f, progress, sessions); err != nil {
		return err
	}
	fmt.Printf("backup restored from %s\n", path)
	return nil
}
