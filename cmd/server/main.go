// Command server exposes the Latin tagger and the enumerativeness scorer as
// a JSON REST API.
//
// Endpoints:
//
//	GET  /api/health
//	GET  /api/lemmatize?form=<word>[&sentence_start=true]
//	POST /api/analyze          body: {"text":"..."}
//	POST /api/enumerativeness  body: {"lines":[...],"excluded_parts_of_speech":[...]}
//	GET  /api/stream           websocket, one section request per connection
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/cors"

	"github.com/cours-de-latin/enumeratio/internal/logging"
	"github.com/cours-de-latin/enumeratio/internal/remote"
	"github.com/cours-de-latin/enumeratio/morph"
)

// CLI defines the server flags.
var CLI struct {
	Data           string   `name:"data" default:"data" type:"existingdir" help:"Collatinus data directory"`
	Addr           string   `name:"addr" default:":8080" help:"Listen address"`
	AllowedOrigins []string `name:"allowed-origin" default:"*" help:"CORS allowed origins"`
	LogLevel       string   `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Log level"`
	LogFormat      string   `name:"log-format" default:"text" enum:"text,json" help:"Log format"`
}

// newHandler wires the routes around tagger.
func newHandler(tagger *morph.Tagger, origins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", handleHealth(tagger))
	mux.HandleFunc("/api/lemmatize", handleLemmatize(tagger))
	mux.HandleFunc(remote.AnalyzePath, handleAnalyze(tagger))
	mux.HandleFunc("/api/enumerativeness", handleEnumerativeness(tagger))
	mux.HandleFunc("/api/stream", handleStream(tagger, c))
	return logging.CombinedMiddleware(c.Handler(mux))
}

func main() {
	kong.Parse(&CLI,
		kong.Name("server"),
		kong.Description("Latin tagging and enumerativeness API"),
		kong.UsageOnError(),
	)

	level, _ := logging.ParseLevel(CLI.LogLevel)
	format, _ := logging.ParseFormat(CLI.LogFormat)
	logging.InitLogger(level, format)

	for _, o := range CLI.AllowedOrigins {
		if o == "*" {
			logging.Warn("every origin is allowed, including websocket handshakes")
		}
	}

	logging.Info("loading data", "dir", CLI.Data)
	engine, err := morph.New(CLI.Data)
	if err != nil {
		logging.Error("failed to load data", "error", err)
		os.Exit(1)
	}
	stats := engine.Stats()
	logging.Info("data loaded", "lemmas", stats.Lemmas, "paradigms", stats.Paradigms)

	srv := &http.Server{
		Addr:              CLI.Addr,
		Handler:           newHandler(morph.NewTagger(engine), CLI.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()

	logging.ServerStartup("http", CLI.Addr, "data_dir", CLI.Data)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Error("server error", "error", err)
		os.Exit(1)
	}
}
