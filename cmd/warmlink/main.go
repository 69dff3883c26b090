package main

import (
	"flag"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/warmlink/warmlink"
	"github.com/warmlink/warmlink/cache"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// CLI flags
	configFlag         string
	portFlag           int
	verbosityTraceFlag bool
	logFilenameFlag    string

	// this is set by goreleaser
	version string
)

func init() {
	flag.StringVar(&configFlag, "config", "warmlink.yaml", "Configuration file to use")
	flag.IntVar(&portFlag, "port", 0, "Port to listen on (overrides config)")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
	flag.StringVar(&logFilenameFlag, "log-file", "", "Log file to use (in addition to stdout)")

	if version == "" {
		version = "DEV"
	}
}

func main() {
	flag.Parse()

	// set log level
	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}

	// set up log output to stdout
	// also output to logfile if specified
	logOutputs := make([]io.Writer, 0)
	logOutputs = append(logOutputs, zerolog.ConsoleWriter{Out: os.Stdout})
	if logFilenameFlag != "" {
		if logFileOutput, err := os.OpenFile(logFilenameFlag, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644); err != nil {
			log.Fatal().Err(err).Msg("Cannot open log file")
		} else {
			logOutputs = append(logOutputs, logFileOutput)
		}
	}
	multiWriter := zerolog.MultiLevelWriter(logOutputs...)
	log.Logger = log.Level(logLevel).Output(multiWriter).
		With().Str("version", version).Logger()

	config, err := getConfig(configFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot read configuration")
	}
	if portFlag != 0 {
		config.Port = portFlag
	}

	var provider cache.Provider = cache.NewMemoryCache()
	if config.DB != "" {
		provider = cache.NewSQLiteCache(config.DB)
	}

	wl := warmlink.New(warmlink.Config{
		Cache:            provider,
		Logger:           &log.Logger,
		DisablePresend:   config.DisablePresend,
		EnableServerPush: config.ServerPush,
	})

	templates, err := template.ParseGlob(filepath.Join(config.Templates, "*.html"))
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot parse templates")
	}

	r := chi.NewRouter()
	r.Use(wl.Middleware)
	r.Handle("/static/*", http.StripPrefix("/static/",
		http.FileServer(http.Dir(config.Static))))
	for _, route := range config.Routes {
		r.Get(route.Path, renderHandler(templates, route))
	}

	log.Info().Msgf("Serving %d routes on port %v", len(config.Routes), config.Port)
	err = http.ListenAndServe(fmt.Sprintf(":%d", config.Port), r)

	if err != nil {
		panic(err)
	}
}

// page is the template data. Its Asset method records the resource for
// preloading and returns the URL to embed, e.g.
//
//	<link rel="stylesheet" href="{{ .Asset "/static/css/base.css" }}">
type page struct {
	r *http.Request

	Title string
}

func (p page) Asset(url string, version ...string) string {
	return warmlink.Asset(p.r.Context(), url, version...)
}

func renderHandler(templates *template.Template, route ConfigRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err := templates.ExecuteTemplate(w, route.Template, page{r: r, Title: route.Title})
		if err != nil {
			log.Error().Err(err).Str("template", route.Template).Msg("Cannot render template")
		}
	}
}
