// Package main provides the vecscore command: it scores a JSON request of one
// query vector and a batch of candidates with the cosine kernel.
//
//	vecscore -config vecscore.yaml -in request.json
//
// The request has the form {"query":[...],"items":[[...],...]}; the response
// {"scores":[...]} is written to stdout.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/viant/vecscore/cosine"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Request is the scoring input.
type Request struct {
	Query []float32   `json:"query"`
	Items [][]float32 `json:"items"`
}

// Response is the scoring output; Scores[i] belongs to Request.Items[i].
type Response struct {
	Scores []float64 `json:"scores"`
}

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	in := flag.String("in", "-", "request JSON file, - for stdin")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	zerolog.SetGlobalLevel(cfg.Level())
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := runPath(*in, os.Stdin, os.Stdout, cfg); err != nil {
		log.Fatal().Err(err).Str("in", *in).Msg("Scoring failed")
	}
}

// runPath scores the request stored at path, or read from stdin when path is
// empty or "-". The file is closed before runPath returns.
func runPath(path string, stdin io.Reader, w io.Writer, cfg Config) error {
	if path == "" || path == "-" {
		return run(stdin, w, cfg)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open request: %w", err)
	}
	defer f.Close()
	return run(f, w, cfg)
}

func run(r io.Reader, w io.Writer, cfg Config) error {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	started := time.Now()
	scores := cosine.BatchCosineSimilarity(req.Query, req.Items, cfg.Options()...)
	log.Debug().
		Str("version", Version).
		Int("dim", len(req.Query)).
		Int("items", len(req.Items)).
		Int("workers", cfg.Workers).
		Dur("elapsed", time.Since(started)).
		Msg("scored batch")
	return json.NewEncoder(w).Encode(Response{Scores: scores})
}
