package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/mcdev12/livequiz/go/internal/answers"
	"github.com/mcdev12/livequiz/go/internal/dbconfig"
	"github.com/mcdev12/livequiz/go/internal/fixtures"
	"github.com/mcdev12/livequiz/go/internal/migrations"
	"github.com/mcdev12/livequiz/go/internal/tournament"
	"github.com/redis/go-redis/v9"
)

func main() {
	path := flag.String("fixtures", "go/internal/assets/tournaments.yaml", "fixture file to seed")
	migrate := flag.Bool("migrate", false, "apply schema migrations first")
	redisAddr := flag.String("redis", os.Getenv("REDIS_ADDR"), "also write answered sets to this Redis address")
	flag.Parse()

	ctx := context.Background()

	// 1) Load the fixture file
	file, err := fixtures.Load(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixtures: %v\n", err)
		os.Exit(1)
	}
	ds, err := file.Resolve(time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolve fixtures: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	cfg, err := dbconfig.NewConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if *migrate {
		if err := migrations.Up(cfg.DSN()); err != nil {
			fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
			os.Exit(1)
		}
	}

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	tournaments := tournament.NewRepository(db)
	registrations := tournament.NewRegistrationRepository(pool)
	responses := answers.NewPostgresRepository(pool)

	var answeredSets *answers.RedisRepository
	if *redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: *redisAddr})
		defer client.Close()
		answeredSets = answers.NewRedisRepository(client)
	}

	// 3) Insert and count
	var (
		total    = len(ds.Tournaments)
		inserted int
		skipped  int
		errs     int
	)

	for _, t := range ds.Tournaments {
		_, err := tournaments.GetTournamentWithQuestions(ctx, t.ID)
		if err == nil {
			skipped++
			continue
		}
		if !errors.Is(err, tournament.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "error checking tournament %s: %v\n", t.ID, err)
			errs++
			continue
		}
		if err := tournaments.CreateTournament(ctx, t, ds.CorrectOptions); err != nil {
			fmt.Fprintf(os.Stderr, "error inserting tournament %s: %v\n", t.ID, err)
			errs++
			continue
		}
		inserted++
	}

	for _, r := range ds.Registrations {
		if err := registrations.Register(ctx, r.UserID, r.TournamentID, r.HasPaid); err != nil {
			fmt.Fprintf(os.Stderr, "error registering user %s: %v\n", r.UserID, err)
			errs++
		}
	}

	for _, a := range ds.Answers {
		for _, questionID := range a.QuestionIDs {
			if err := responses.RecordResponse(ctx, a.UserID, a.TournamentID, questionID); err != nil {
				fmt.Fprintf(os.Stderr, "error recording response %s: %v\n", questionID, err)
				errs++
			}
		}
		if answeredSets != nil {
			if err := answeredSets.MarkAnswered(ctx, a.UserID, a.TournamentID, a.QuestionIDs...); err != nil {
				fmt.Fprintf(os.Stderr, "error writing answered set: %v\n", err)
				errs++
			}
		}
	}

	// 4) Summary
	fmt.Printf("Seed complete: total=%d inserted=%d skipped=%d errors=%d registrations=%d answers=%d\n",
		total, inserted, skipped, errs, len(ds.Registrations), len(ds.Answers))
	if errs > 0 {
		os.Exit(1)
	}
}
