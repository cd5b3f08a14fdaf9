// Command enumeratio converts Latin verse corpora into scored line tables
// and scores ad-hoc text.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/cours-de-latin/enumeratio"
	"github.com/cours-de-latin/enumeratio/internal/logging"
	"github.com/cours-de-latin/enumeratio/internal/remote"
	"github.com/cours-de-latin/enumeratio/morph"
)

const version = "0.4.0"

// configFile is read for flag defaults when present.
const configFile = "enumeratio.json"

// CLI defines the command-line interface for enumeratio.
var CLI struct {
	Config    kong.ConfigFlag `help:"JSON configuration file"`
	LogLevel  string          `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Log level"`
	LogFormat string          `name:"log-format" default:"text" enum:"text,json" help:"Log format"`

	Convert ConvertCmd `cmd:"" help:"Convert corpus files into scored line tables"`
	Score   ScoreCmd   `cmd:"" help:"Score the lines of a text file as one section"`
	Fold    FoldCmd    `cmd:"" help:"Transliterate every line of corpus files to ASCII"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// AnalyzerFlags selects the analyzer: the local Collatinus tagger, or a
// running analysis server.
type AnalyzerFlags struct {
	Data    string        `name:"data" default:"data" help:"Collatinus data directory" type:"path"`
	Server  string        `name:"server" help:"Analysis server URL; overrides --data"`
	Timeout time.Duration `name:"timeout" default:"30s" help:"Analysis server request timeout"`
}

func (f AnalyzerFlags) analyzer() (enumeratio.Analyzer, error) {
	if f.Server != "" {
		logging.Info("using analysis server", "url", f.Server)
		return remote.New(f.Server, f.Timeout), nil
	}
	engine, err := morph.New(f.Data)
	if err != nil {
		return nil, fmt.Errorf("load analyzer data: %w", err)
	}
	stats := engine.Stats()
	logging.Info("analyzer data loaded", "dir", f.Data, "lemmas", stats.Lemmas, "paradigms", stats.Paradigms)
	return morph.NewTagger(engine), nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("enumeratio version %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("enumeratio"),
		kong.Description("Enumerativeness of Latin verse lines"),
		kong.Configuration(kong.JSON, configFile),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	level, _ := logging.ParseLevel(CLI.LogLevel)
	format, _ := logging.ParseFormat(CLI.LogFormat)
	logging.InitLogger(level, format)

	err := ctx.Run()
	if err != nil {
		logging.Error("command failed", "command", ctx.Command(), "error", err)
		os.Exit(1)
	}
}
