package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/joho/godotenv"
	"github.com/manishrjain/keys"
)

var (
	configDir = flag.String("conf", os.Getenv("HOME")+"/.into-advice",
		"Config directory holding config.yaml, rules.yaml, shortcuts and the response cache.")
	dataDir   = flag.String("data", "", "Directory with the input CSV files. Overrides data_dir in config.yaml.")
	outputDir = flag.String("out", "", "Directory the JSON artifacts are written to. Overrides output_dir in config.yaml.")
	provider  = flag.String("provider", "", "Model provider, claude or gemini. Overrides ai.provider in config.yaml.")
	debug     = flag.Bool("debug", false, "Additional debug information if set.")
	useCache  = flag.Bool("cache", true, "Reuse model replies for identical prompts.")
	learn     = flag.Bool("learn", false, "Train a classifier on labelled transactions to label the rest.")

	updateSocial = flag.String("update-social", "", "CSV of new social media posts to fold into the stored interests.")
	askQuery     = flag.String("ask", "", "Ask a question about your finances, answered from the last analysis.")
	voiceFile    = flag.String("voice", "", "Audio file with a spoken question. The answer is written as mp3.")
	reviewMode   = flag.Bool("review", false, "Interactively categorize receivers the keyword rules miss.")
	grievances   = flag.Bool("grievances", false, "Analyze customer grievance emails.")
)

// buildConfig is the only place that reads the flags.
func buildConfig() *config {
	cfg, err := loadConfig(*configDir)
	checkf(err, "Unable to load config from %s", *configDir)
	if len(*dataDir) > 0 {
		cfg.DataDir = *dataDir
	}
	if len(*outputDir) > 0 {
		cfg.OutputDir = *outputDir
	}
	if len(*provider) > 0 {
		cfg.AI.Provider = *provider
	}
	if *learn {
		cfg.Classifier.Learn = true
	}
	cfg.Cache = cfg.Cache && *useCache
	return cfg
}

func main() {
	flag.Parse()
	_ = godotenv.Load()

	cfg := buildConfig()
	checkf(ensureDirectories(cfg), "Unable to prepare directories")

	st := status{log: newLogger(os.Stderr, *debug)}
	st.log.Debug().Str("data_dir", cfg.DataDir).Str("output_dir", cfg.OutputDir).Msg("config loaded")

	rules, err := loadKeywordRules(cfg.confDir)
	checkf(err, "Unable to load rules from %s", cfg.confDir)
	cat := newCategorizer(rules)

	if *reviewMode {
		keyfile := path.Join(cfg.confDir, "shortcuts.yaml")
		short := keys.ParseConfig(keyfile)
		defer short.Persist(keyfile)

		defer saneMode()
		singleCharMode()
		a := newApp(cfg, st, cat, nil)
		if err := a.review(short); err != nil {
			st.fail(err, "Review failed")
		}
		return
	}

	ctx := context.Background()
	model, err := newModel(ctx, cfg)
	if err != nil {
		oerr(err.Error())
		st.log.Fatal().Err(err).Msg("model initialization failed")
	}
	if cfg.Cache {
		db, err := openCache(path.Join(cfg.confDir, "cache.db"))
		checkf(err, "Unable to open response cache")
		defer db.Close()
		model = &cachedModel{Model: model, db: db}
	}
	a := newApp(cfg, st, cat, newAdvisor(model, st))

	start := time.Now()
	switch {
	case len(*updateSocial) > 0:
		err = a.updateSocial(ctx, *updateSocial)
	case len(*askQuery) > 0:
		var reply string
		if reply, err = a.ask(ctx, *askQuery); err == nil {
			fmt.Println(reply)
		}
	case len(*voiceFile) > 0:
		err = runVoice(ctx, a, cfg, *voiceFile)
	case *grievances:
		err = a.grievances(ctx)
	default:
		err = a.runFull(ctx)
	}
	if err != nil {
		st.fail(err, "Run failed")
		os.Exit(1)
	}
	st.log.Info().Dur("took", time.Since(start)).Msg("done")
}

func runVoice(ctx context.Context, a *app, cfg *config, audio string) error {
	v, err := newOpenAIVoice(cfg.voiceKey(), cfg.Voice.Voice)
	if err != nil {
		return err
	}
	s := &voiceSession{in: v, out: v, answer: a.ask, audioDir: cfg.audioDir(), st: a.st}
	reply, err := s.handle(ctx, audio)
	if err != nil {
		return err
	}
	fmt.Println(reply.Response)
	return nil
}
