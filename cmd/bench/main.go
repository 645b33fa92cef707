// Command bench runs a synthetic Zipf workload against the cache and exposes
// Prometheus metrics and optional pprof endpoints.
//
// Settings come from the environment (an optional .env file is loaded first)
// and can be overridden with flags.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/IvanBrykalov/mfucache/cache"
	pmet "github.com/IvanBrykalov/mfucache/metrics/prom"
	"github.com/IvanBrykalov/mfucache/policy"
)

// Config holds the workload settings.
type Config struct {
	Capacity int           `env:"MFU_CAPACITY" envDefault:"100000"`
	Step     int           `env:"MFU_STEP" envDefault:"4"`
	MaxAge   time.Duration `env:"MFU_MAX_AGE" envDefault:"5m"`
	Reap     time.Duration `env:"MFU_REAP_INTERVAL" envDefault:"30s"`

	Workers  int           `env:"MFU_WORKERS" envDefault:"8"`
	Duration time.Duration `env:"MFU_DURATION" envDefault:"10s"`
	ReadPct  int           `env:"MFU_READS" envDefault:"80"`
	DelPct   int           `env:"MFU_REMOVES" envDefault:"1"`

	Keys    int     `env:"MFU_KEYS" envDefault:"1000000"`
	ZipfS   float64 `env:"MFU_ZIPF_S" envDefault:"1.1"`
	ZipfV   float64 `env:"MFU_ZIPF_V" envDefault:"1.0"`
	Seed    int64   `env:"MFU_SEED"`
	Preload int     `env:"MFU_PRELOAD"`

	// Keys with this prefix are never admitted (empty = admit all).
	DenyPrefix string `env:"MFU_DENY_PREFIX"`

	PprofAddr   string `env:"MFU_PPROF_ADDR"`
	MetricsAddr string `env:"MFU_METRICS_ADDR" envDefault:":8080"`
	LogLevel    string `env:"MFU_LOG_LEVEL" envDefault:"info"`
}

func loadConfig(args []string) (Config, error) {
	// A missing .env is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	fs := flag.NewFlagSet("bench", flag.ContinueOnError)
	fs.IntVar(&cfg.Capacity, "cap", cfg.Capacity, "ordered index capacity (entries)")
	fs.IntVar(&cfg.Step, "step", cfg.Step, "promotion step per access")
	fs.DurationVar(&cfg.MaxAge, "max_age", cfg.MaxAge, "age after which the reaper clears an entry")
	fs.DurationVar(&cfg.Reap, "reap", cfg.Reap, "reaper scan interval")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of worker goroutines")
	fs.DurationVar(&cfg.Duration, "duration", cfg.Duration, "benchmark duration")
	fs.IntVar(&cfg.ReadPct, "reads", cfg.ReadPct, "read percentage [0..100]")
	fs.IntVar(&cfg.DelPct, "removes", cfg.DelPct, "remove percentage [0..100]")
	fs.IntVar(&cfg.Keys, "keys", cfg.Keys, "keyspace size")
	fs.Float64Var(&cfg.ZipfS, "zipf_s", cfg.ZipfS, "Zipf s > 1 (skew)")
	fs.Float64Var(&cfg.ZipfV, "zipf_v", cfg.ZipfV, "Zipf v")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	fs.IntVar(&cfg.Preload, "preload", cfg.Preload, "preload entries (0 = cap/2)")
	fs.StringVar(&cfg.DenyPrefix, "deny_prefix", cfg.DenyPrefix, "never admit keys with this prefix")
	fs.StringVar(&cfg.PprofAddr, "pprof", cfg.PprofAddr, "serve pprof at addr (e.g. :6060); empty = disabled")
	fs.StringVar(&cfg.MetricsAddr, "http", cfg.MetricsAddr, "serve Prometheus metrics at addr; empty = disabled")
	fs.StringVar(&cfg.LogLevel, "log", cfg.LogLevel, "log level: debug | info | warn | error")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Keys < 1 {
		return Config{}, fmt.Errorf("keys must be >= 1, got %d", cfg.Keys)
	}
	if cfg.ZipfS <= 1 {
		return Config{}, fmt.Errorf("zipf_s must be > 1, got %v", cfg.ZipfS)
	}
	if cfg.Preload == 0 {
		cfg.Preload = cfg.Capacity / 2
	}
	return cfg, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "bench:", err)
		os.Exit(2)
	}
	log := newLogger(cfg.LogLevel)

	// ---- pprof server (on DefaultServeMux) ----
	if cfg.PprofAddr != "" {
		go func() {
			log.Info("pprof: serving", slog.String("addr", cfg.PprofAddr))
			log.Error("pprof server stopped", slog.Any("err", http.ListenAndServe(cfg.PprofAddr, nil)))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := pmet.New(nil, "mfucache", "bench", nil)
	if cfg.MetricsAddr != "" {
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Info("metrics: serving", slog.String("addr", cfg.MetricsAddr))
			log.Error("metrics server stopped", slog.Any("err", http.ListenAndServe(cfg.MetricsAddr, nil)))
		}()
	}

	// ---- Build cache ----
	opt := cache.Options[string, string]{
		Capacity:     cfg.Capacity,
		Step:         cfg.Step,
		MaxAge:       cfg.MaxAge,
		ReapInterval: cfg.Reap,
		Metrics:      metrics,
		Logger:       log,
	}
	if p := cfg.DenyPrefix; p != "" {
		opt.Admission = policy.Not(policy.Keys[string, string](func(k string) bool {
			return strings.HasPrefix(k, p)
		}))
	}
	c := cache.New[string, string](opt)
	defer func() { _ = c.Close() }()

	for i := 0; i < cfg.Preload; i++ {
		c.Put("k:"+strconv.Itoa(i), "v"+strconv.Itoa(i))
	}

	r := run(c, cfg)
	st := c.Stats()

	hitRate := 0.0
	if r.reads > 0 {
		hitRate = float64(r.hits) / float64(r.reads) * 100
	}
	fmt.Printf("cap=%d step=%d workers=%d keys=%d dur=%v seed=%d\n",
		cfg.Capacity, cfg.Step, cfg.Workers, cfg.Keys, r.elapsed, cfg.Seed)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d  removes=%d\n",
		r.total, float64(r.total)/r.elapsed.Seconds(), r.reads, r.writes, r.removes)
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%\n", r.hits, r.reads-r.hits, hitRate)
	fmt.Printf("tracked=%d  linked=%d  trims=%d  reaped=%d  vetoes=%d\n",
		st.Tracked, st.Linked, st.Trims, st.Reaped, st.Vetoes)
}

type result struct {
	total, reads, writes, removes, hits uint64
	elapsed                             time.Duration
}

// run drives cfg.Workers goroutines against c for cfg.Duration.
func run(c cache.Cache[string, string], cfg Config) result {
	var res result
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(cfg.Workers)
	for w := 0; w < cfg.Workers; w++ {
		go func(id int) {
			defer wg.Done()

			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			localR := rand.New(rand.NewSource(cfg.Seed + int64(id)*9973))
			localZipf := rand.NewZipf(localR, cfg.ZipfS, cfg.ZipfV, uint64(cfg.Keys-1))
			key := func() string { return "k:" + strconv.FormatUint(localZipf.Uint64(), 10) }

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				atomic.AddUint64(&res.total, 1)
				switch p := int(localR.Int31n(100)); {
				case p < cfg.ReadPct:
					atomic.AddUint64(&res.reads, 1)
					if _, ok := c.Get(key()); ok {
						atomic.AddUint64(&res.hits, 1)
					}
				case p < cfg.ReadPct+cfg.DelPct:
					atomic.AddUint64(&res.removes, 1)
					_, _ = c.Remove(key()) // ErrNotFound is expected for cold keys
				default:
					atomic.AddUint64(&res.writes, 1)
					c.Put(key(), "v"+strconv.Itoa(localR.Int()))
				}
			}
		}(w)
	}
	wg.Wait()
	res.elapsed = time.Since(start)
	return res
}
