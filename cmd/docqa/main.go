package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"docqa/internal/answer"
	"docqa/internal/config"
	"docqa/internal/domain"
	"docqa/internal/generation"
	"docqa/internal/generation/gemini"
	"docqa/internal/generation/openai"
	"docqa/internal/logging"
	"docqa/internal/ratelimit"
	"docqa/internal/scorer"
	"docqa/internal/service"
	"docqa/internal/store"
	"docqa/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, question string
	var asJSON bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/docqa/config.yaml if not provided)")
	flag.StringVar(&question, "question", "", "Answer a single question, print it and exit")
	flag.BoolVar(&asJSON, "json", false, "With -question, print the result as JSON")
	flag.Parse()

	boot := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		boot.Fatal().Err(err).Msg("failed to load config")
	}

	inputs := flag.Args()
	if len(inputs) == 0 {
		inputs = cfg.Store.Inputs
	}
	interactive := question == ""

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		boot.Fatal().Err(err).Msg("failed to set up logging")
	}
	defer closer.Close()
	if interactive && cfg.Log.File == "" {
		// the TUI owns the terminal
		logger = zerolog.New(io.Discard)
	}

	var sc domain.Scorer
	switch cfg.Scorer.Type {
	case "heuristic", "":
		sc = scorer.NewScorer(scorerWeights(cfg.Scorer.Weights))
	default:
		logger.Fatal().Str("type", cfg.Scorer.Type).Msg("unknown scorer")
	}

	backend, err := newBackend(cfg.Generator)
	if err != nil {
		logger.Warn().Err(err).Msg("generation disabled, answers will be extracted from documents")
		backend = nil
	}
	limiter := ratelimit.New(time.Duration(cfg.Generator.MinIntervalMS)*time.Millisecond, nil)
	gen := generation.NewClient(backend, limiter, time.Duration(cfg.Generator.TimeoutSecs)*time.Second, logger)

	opts := service.DefaultOptions()
	opts.TopK = cfg.Scorer.TopK
	opts.ContextChunks = cfg.Answer.ContextChunks
	opts.ContextChars = cfg.Answer.ContextChars
	opts.SourceChunks = cfg.Answer.SourceChunks

	svc := service.NewQAService(store.NewStore(logger), sc, gen, answer.NewComposer(), opts, logger)
	summary, err := svc.Ingest(inputs)
	if err != nil {
		logger.Fatal().Err(err).Msg("ingest failed")
	}

	if !interactive {
		res := svc.Ask(context.Background(), question)
		if err := printResult(os.Stdout, res, asJSON); err != nil {
			logger.Fatal().Err(err).Msg("failed to print result")
		}
		return
	}

	m := tui.New(svc, summary)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		logger.Fatal().Err(err).Msg("tui failed")
	}
}

func newBackend(cfg config.GeneratorConfig) (generation.Backend, error) {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	switch cfg.Type {
	case "gemini":
		if cfg.Gemini == nil {
			return nil, fmt.Errorf("gemini generator config missing")
		}
		return gemini.NewClient(gemini.Config{
			BaseURL:   cfg.Gemini.BaseURL,
			APIKeyEnv: cfg.Gemini.APIKeyEnv,
			Model:     cfg.Gemini.Model,
			Timeout:   timeout,
		})
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai generator config missing")
		}
		return openai.NewClient(openai.Config{
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKeyEnv: cfg.OpenAI.APIKeyEnv,
			Model:     cfg.OpenAI.Model,
		})
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown generator: %s", cfg.Type)
	}
}

func scorerWeights(wc *config.WeightsConfig) scorer.Weights {
	w := scorer.DefaultWeights()
	if wc == nil {
		return w
	}
	set := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	set(&w.ExactPhrase, wc.ExactPhrase)
	set(&w.ImportantWord, wc.ImportantWord)
	set(&w.SentenceStart, wc.SentenceStart)
	set(&w.GeneralWord, wc.GeneralWord)
	set(&w.NumericMatch, wc.NumericMatch)
	set(&w.ShortChunkFactor, wc.ShortChunkFactor)
	if wc.ShortChunkLength != 0 {
		w.ShortChunkLength = wc.ShortChunkLength
	}
	if len(wc.StructureTerms) > 0 {
		w.StructureTerms = terms(wc.StructureTerms)
	}
	if len(wc.QuestionPatterns) > 0 {
		w.QuestionPatterns = terms(wc.QuestionPatterns)
	}
	return w
}

func terms(in []config.TermWeight) []scorer.Term {
	out := make([]scorer.Term, len(in))
	for i, t := range in {
		out[i] = scorer.Term{Term: t.Term, Bonus: t.Bonus}
	}
	return out
}

func printResult(w io.Writer, res domain.AnswerResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	if _, err := fmt.Fprintln(w, res.Answer); err != nil {
		return err
	}
	if len(res.Sources) == 0 {
		return nil
	}
	fmt.Fprintln(w, "\nSources:")
	for i, s := range res.Sources {
		fmt.Fprintf(w, "%d. %s (score %.1f)\n   %s\n", i+1, s.Source, s.Score, s.Preview)
	}
	return nil
}
