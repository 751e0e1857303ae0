package main

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/chironhq/chiron/internal/config"
	"github.com/chironhq/chiron/pkg/metrics"
)

func TestMainWiring(t *testing.T) {
	Convey("Given the main application", t, func() {
		ctx := context.Background()

		Convey("Configuration loads from environment overrides", func() {
			t.Setenv("CHIRON_ADDR", ":8080")
			t.Setenv("CHIRON_WORKER_COUNT", "4")

			cfg, err := config.Load(ctx)
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":8080")
			So(cfg.WorkerCount, ShouldEqual, 4)
		})

		Convey("The metrics registry is available for the metrics endpoint", func() {
			So(metrics.GetRegistry(), ShouldNotBeNil)
		})

		Convey("The classifier selection falls back to the static table", func() {
			cfg := config.New(ctx)
			cls, err := buildClassifier(ctx, cfg)
			So(err, ShouldBeNil)
			So(cls, ShouldNotBeNil)
		})
	})
}
