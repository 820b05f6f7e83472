package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"reflect"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/go-tooling/pkg/metrics"
	"github.com/aukilabs/sowilo/featureflag"
	sowilohttp "github.com/aukilabs/sowilo/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

var (
	// The Sowilo demo version number. Set at build.
	version = "v0.1.0"

	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "sowilo_info",
		Help:        "Sowilo information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
)

// This will effectively disable obfuscation of the config struct. Without it, the keys would get obfuscated causing the cli package to generate garbled command-line options.
// https://github.com/burrowers/garble/issues/403
var _ = reflect.TypeOf(config{})

type config struct {
	Addr               string        `cli:""        env:"SOWILO_ADDR"                 help:"Listening address for the demo endpoints."`
	AdminAddr          string        `cli:""        env:"SOWILO_ADMIN_ADDR"           help:"Admin listening address."`
	LogLevel           string        `cli:""        env:"SOWILO_LOG_LEVEL"            help:"Log level (debug|info|warning|error)."`
	LogIndent          bool          `cli:""        env:"SOWILO_LOG_INDENT"           help:"Indent logs."`
	FrameDuration      time.Duration `cli:",hidden" env:"SOWILO_FRAME_DURATION"       help:"The duration of a simulation frame."`
	LogSummaryInterval time.Duration `cli:",hidden" env:"SOWILO_LOG_SUMMARY_INTERVAL" help:"The duration between each frame summary log."`
	CellWidth          float32       `cli:""        env:"SOWILO_CELL_WIDTH"           help:"Grid cell width."`
	CellHeight         float32       `cli:""        env:"SOWILO_CELL_HEIGHT"          help:"Grid cell height."`
	ObjectCount        int           `cli:""        env:"SOWILO_OBJECT_COUNT"         help:"The number of moving objects."`
	StaticCount        int           `cli:""        env:"SOWILO_STATIC_COUNT"         help:"The number of static objects."`
	ObjectSize         float32       `cli:",hidden" env:"SOWILO_OBJECT_SIZE"          help:"Object edge length."`
	WorldWidth         float32       `cli:",hidden" env:"SOWILO_WORLD_WIDTH"          help:"World width."`
	WorldHeight        float32       `cli:",hidden" env:"SOWILO_WORLD_HEIGHT"         help:"World height."`
	ViewWidth          float32       `cli:",hidden" env:"SOWILO_VIEW_WIDTH"           help:"Viewport width."`
	ViewHeight         float32       `cli:",hidden" env:"SOWILO_VIEW_HEIGHT"          help:"Viewport height."`
	Speed              float32       `cli:",hidden" env:"SOWILO_SPEED"                help:"Object speed in units per second."`
	FeatureFlags       []string      `cli:",hidden" env:"SOWILO_FEATURE_FLAGS"        help:"Comma separated feature flags."`
	Version            bool          `cli:""        env:"-"                           help:"Show version."`
	Help               bool          `cli:""        env:"-"                           help:"Show help."`
}

func main() {
	conf := config{
		Addr:               ":4100",
		AdminAddr:          ":18191",
		LogLevel:           logs.InfoLevel.String(),
		FrameDuration:      time.Millisecond * 15,
		LogSummaryInterval: time.Minute,
		CellWidth:          1000,
		CellHeight:         1000,
		ObjectCount:        500,
		StaticCount:        100,
		ObjectSize:         80,
		WorldWidth:         20000,
		WorldHeight:        20000,
		ViewWidth:          4000,
		ViewHeight:         3000,
		Speed:              120,
	}

	// set the information gauge to 1, useful for SUM query
	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Starts the Sowilo culling demo server.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := validateConfig(conf); err != nil {
		logs.Fatal(err)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	flags := featureflag.New(conf.FeatureFlags)

	sim, err := newSimulation(conf, flags)
	if err != nil {
		logs.Fatal(errors.New("creating simulation failed").Wrap(err))
	}

	var lastSummary atomic.Value
	var lastDebugInfo atomic.Value
	lastSummary.Store(frameSummary{})
	lastDebugInfo.Store(sim.debugInfo())

	stream := newFrameStream()

	var service http.ServeMux
	service.Handle("/health", sowilohttp.HandleWithCORS(http.HandlerFunc(sowilohttp.HandleHealthCheck)))
	service.Handle("/version", sowilohttp.HandleWithCORS(http.HandlerFunc(sowilohttp.HandleVersion(version))))
	service.Handle("/stats", sowilohttp.HandleWithCORS(sowilohttp.HandleJSON(func() any {
		return lastSummary.Load()
	})))
	service.Handle("/debug", sowilohttp.HandleWithCORS(sowilohttp.HandleJSON(func() any {
		return lastDebugInfo.Load()
	})))

	readinessCheck := func() bool {
		return lastSummary.Load().(frameSummary).Frame > 0
	}
	service.Handle("/ready", sowilohttp.HandleWithCORS(http.HandlerFunc(sowilohttp.HandleReadyCheck(readinessCheck))))

	flags.IfNotSet(featureflag.FlagDisableFrameStream, func() {
		service.Handle("/watch", websocket.Server{
			Handler: func(conn *websocket.Conn) {
				defer conn.Close()
				stream.serve(ctx, conn)
			},
		})
	})

	var admin http.ServeMux
	admin.Handle("/metrics", promhttp.Handler())
	admin.HandleFunc("/health", sowilohttp.HandleHealthCheck)
	admin.HandleFunc("/debug/pprof/", pprof.Index)
	admin.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	admin.HandleFunc("/debug/pprof/profile", pprof.Profile)
	admin.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	admin.HandleFunc("/debug/pprof/trace", pprof.Trace)
	admin.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	admin.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	admin.HandleFunc("/ready", sowilohttp.HandleReadyCheck(readinessCheck))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()

		ticker := time.NewTicker(conf.FrameDuration)
		defer ticker.Stop()

		lastLog := time.Now()
		dt := (float32)(conf.FrameDuration.Seconds())

		for {
			select {
			case <-ctx.Done():
				return

			case <-ticker.C:
				summary, err := sim.step(dt)
				if err != nil {
					logs.Fatal(errors.New("simulation step failed").Wrap(err))
				}

				lastSummary.Store(summary)
				lastDebugInfo.Store(sim.debugInfo())
				stream.broadcast(summary)

				if time.Since(lastLog) >= conf.LogSummaryInterval {
					lastLog = time.Now()
					logs.WithTag("frame", summary.Frame).
						WithTag("tracked_objects", summary.TrackedObjects).
						WithTag("visible_objects", summary.VisibleObjects).
						WithTag("bucket_count", summary.BucketCount).
						WithTag("buckets_visited", summary.BucketsVisited).
						Info("frame summary")
				}
			}
		}
	}()

	logs.WithTag("version", version).
		WithTag("log_level", conf.LogLevel).
		WithTag("object_count", conf.ObjectCount+conf.StaticCount).
		WithTag("cell_width", conf.CellWidth).
		WithTag("cell_height", conf.CellHeight).
		Info("starting sowilo demo server")

	sowilohttp.ListenAndServe(ctx,
		&http.Server{Addr: conf.Addr, Handler: metrics.HTTPHandler(&service,
			sowilohttp.MetricsPathFormatter)},
		&http.Server{Addr: conf.AdminAddr, Handler: &admin},
	)

	wg.Wait()
}

func validateConfig(conf config) error {
	if conf.ObjectCount < 0 || conf.StaticCount < 0 {
		return errors.New("object counts cannot be negative")
	}

	if conf.WorldWidth <= 0 || conf.WorldHeight <= 0 {
		return errors.New("world dimensions have to be positive")
	}

	if conf.ViewWidth > conf.WorldWidth || conf.ViewHeight > conf.WorldHeight {
		return errors.New("the viewport cannot be larger than the world")
	}

	if conf.FrameDuration <= 0 {
		return errors.New("frame duration has to be positive")
	}

	return nil
}
