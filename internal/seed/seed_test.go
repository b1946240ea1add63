package seed_test

import (
	"context"
	"path/filepath"
	"testing"

	repository "github.com/openflank/fire/internal/adapters/repository"
	"github.com/openflank/fire/internal/domain/model"
	seed "github.com/openflank/fire/internal/seed"
	"github.com/openflank/fire/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRun(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("init logger: %v", err)
	}

	Convey("Given a seed configuration", t, func() {
		ctx := context.Background()

		Convey("When the configuration is invalid", func() {
			_, err := seed.Run(ctx, &seed.Config{Teams: 1, Weeks: 4})
			So(err, ShouldNotBeNil)

			_, err = seed.Run(ctx, &seed.Config{Teams: 4, Weeks: 0})
			So(err, ShouldNotBeNil)

			_, err = seed.Run(ctx, &seed.Config{Teams: 4, Weeks: 19})
			So(err, ShouldNotBeNil)
		})

		Convey("When generating a small season", func() {
			dbPath := filepath.Join(t.TempDir(), "facts.db")
			cfg := &seed.Config{DBPath: dbPath, Season: 2024, Teams: 4, Weeks: 3, Seed: 7}

			stats, err := seed.Run(ctx, cfg)

			Convey("Then the run reports full rosters", func() {
				So(err, ShouldBeNil)
				So(stats.Players, ShouldEqual, 4*15) // 2 QB + 4 RB + 6 WR + 3 TE per team
				So(stats.TeamRows, ShouldEqual, 4*3)
				So(stats.AlphaRows, ShouldEqual, stats.Players*3)
				// A few missed games are expected, never more than the slate.
				So(stats.FactRows, ShouldBeLessThanOrEqualTo, stats.Players*3)
				So(stats.FactRows, ShouldBeGreaterThan, 0)
			})

			Convey("Then the database scores end to end", func() {
				store, err := repository.OpenSQLite(dbPath)
				So(err, ShouldBeNil)
				defer func() { _ = store.Close() }()

				facts, err := store.PlayerWeeks(ctx, 2024, 1, 3, nil, nil)
				So(err, ShouldBeNil)
				So(facts, ShouldHaveLength, stats.FactRows)

				totals, err := store.TeamWeeks(ctx, 2024, 1, 3)
				So(err, ShouldBeNil)
				So(totals, ShouldHaveLength, stats.TeamRows)

				alphas, err := store.Alphas(ctx, 2024, 3, model.PositionWR)
				So(err, ShouldBeNil)
				So(alphas, ShouldHaveLength, 4*6)
			})
		})

		Convey("When running twice with the same seed", func() {
			run := func() (seed.Stats, []model.WeeklyPlayerFact) {
				dbPath := filepath.Join(t.TempDir(), "facts.db")
				stats, err := seed.Run(ctx, &seed.Config{DBPath: dbPath, Season: 2024, Teams: 3, Weeks: 2, Seed: 42})
				So(err, ShouldBeNil)

				store, err := repository.OpenSQLite(dbPath)
				So(err, ShouldBeNil)
				defer func() { _ = store.Close() }()
				facts, err := store.PlayerWeeks(ctx, 2024, 1, 2, nil, nil)
				So(err, ShouldBeNil)
				return stats, facts
			}

			first, firstFacts := run()
			second, secondFacts := run()

			Convey("Then the output is reproducible", func() {
				So(second, ShouldResemble, first)
				So(len(secondFacts), ShouldEqual, len(firstFacts))
			})
		})
	})
}
