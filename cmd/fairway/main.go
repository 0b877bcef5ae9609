package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/jonboulle/clockwork"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"

	"github.com/lox/fairwayforecast/internal/api"
	"github.com/lox/fairwayforecast/internal/httputil"
	"github.com/lox/fairwayforecast/internal/ingest"
	"github.com/lox/fairwayforecast/internal/playability"
	"github.com/lox/fairwayforecast/internal/store"
)

type Globals struct {
	EnvFile     kongdotenv.ENVFileConfig `kong:"optional,name=env-file,default='.env',help='Path to .env file'"`
	DBPath      string                   `name:"db" env:"DB_PATH" default:"data/fairway.db" help:"Path to SQLite database"`
	APIKey      string                   `name:"api-key" env:"OPENWEATHER_API_KEY" help:"OpenWeather One Call API key"`
	HTTPTimeout time.Duration            `name:"http-timeout" env:"HTTP_TIMEOUT" default:"15s" help:"Upstream request timeout"`
	ForecastTTL time.Duration            `name:"forecast-ttl" env:"FORECAST_TTL" default:"10m" help:"How long fetched forecasts are served from cache"`
}

type CLI struct {
	Globals

	Serve         ServeCmd         `cmd:"" help:"Run the API server and cache warmer"`
	ImportCourses ImportCoursesCmd `cmd:"" name:"import-courses" help:"Import course dataset files"`
	Check         CheckCmd         `cmd:"" help:"Print one tee-time decision as JSON"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("fairway"),
		kong.Description("Golf tee-time playability from hourly forecasts."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run(&cli.Globals))
}

func (g *Globals) openStore() (*store.Store, error) {
	if dir := filepath.Dir(g.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	return store.Open(g.DBPath)
}

func (g *Globals) forecastService(st *store.Store) (*ingest.ForecastService, error) {
	if g.APIKey == "" {
		return nil, fmt.Errorf("OPENWEATHER_API_KEY is required")
	}
	client := ingest.NewOpenWeatherClient(g.APIKey, ingest.WithHTTPClient(httputil.NewClient(g.HTTPTimeout)))
	return ingest.NewForecastService(client, st, g.ForecastTTL, clockwork.NewRealClock()), nil
}

type ServeCmd struct {
	Port         string        `env:"PORT" default:"8080" help:"HTTP server port"`
	WarmInterval time.Duration `name:"warm-interval" env:"WARM_INTERVAL" default:"15m" help:"Cache warm interval"`
	NoWarm       bool          `name:"no-warm" help:"Disable background cache warming"`
}

func (c *ServeCmd) Run(g *Globals) error {
	st, err := g.openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	log.Println("database migrated")

	svc, err := g.forecastService(st)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server := api.NewServer(svc, st, c.Port)
	if !c.NoWarm {
		scheduler := ingest.NewScheduler(svc, st, c.WarmInterval, clockwork.NewRealClock())
		server.SetWatcher(scheduler)
		go scheduler.Run(ctx)
	} else {
		log.Println("cache warming disabled (--no-warm)")
	}

	log.Printf("starting server on :%s", c.Port)
	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

type ImportCoursesCmd struct {
	Files []string `arg:"" type:"existingfile" help:"Dataset files ([name, lat, lon, region] rows)"`
}

func (c *ImportCoursesCmd) Run(g *Globals) error {
	st, err := g.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := ingest.ImportCourseFiles(st, time.Now().UTC(), c.Files...)
	if err != nil {
		return err
	}
	total, err := st.CountCourses()
	if err != nil {
		return err
	}
	log.Printf("imported %d courses (%d in catalog)", n, total)
	return nil
}

type CheckCmd struct {
	Lat     float64 `required:"" help:"Latitude"`
	Lon     float64 `required:"" help:"Longitude"`
	Country string  `help:"ISO country code for regional thresholds"`
	Tee     string  `default:"now" help:"Tee time as unix seconds, RFC 3339, or 'now'"`
	Round   string  `default:"18" enum:"9,18,society" help:"Round type"`
	Units   string  `default:"metric" enum:"metric,imperial" help:"Display units"`
}

func (c *CheckCmd) Run(g *Globals) error {
	tee, err := c.teeTime()
	if err != nil {
		return err
	}

	st, err := g.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	svc, err := g.forecastService(st)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*g.HTTPTimeout)
	defer cancel()
	forecast, err := svc.Forecast(ctx, c.Lat, c.Lon)
	if err != nil {
		return err
	}

	round, _ := playability.ParseRoundType(c.Round)
	units, _ := playability.ParseUnitSystem(c.Units)
	decision := playability.Evaluate(playability.Request{
		Forecast: forecast,
		Country:  c.Country,
		TeeOff:   tee,
		Round:    round,
		Units:    units,
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(decision)
}

func (c *CheckCmd) teeTime() (time.Time, error) {
	if c.Tee == "now" {
		return time.Now().Truncate(time.Hour), nil
	}
	if secs, err := strconv.ParseInt(c.Tee, 10, 64); err == nil {
		return time.Unix(secs, 0), nil
	}
	t, err := time.Parse(time.RFC3339, c.Tee)
	if err != nil {
		return time.Time{}, fmt.Errorf("--tee: want unix seconds, RFC 3339 or now")
	}
	return t, nil
}
