// Package cli implements the imola command tree.
package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/raysh454/imola/internal/app"
	"github.com/raysh454/imola/internal/corpus"
	"github.com/raysh454/imola/internal/logging"
)

// envPrefix namespaces environment overrides, e.g. IMOLA_ADDR.
const envPrefix = "IMOLA"

type rootOptions struct {
	cfgFile string
	sources []string
	v       *viper.Viper
}

// NewRootCommand builds a fresh command tree with its own viper instance,
// so tests can run several trees side by side.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	root := &cobra.Command{
		Use:   "imola",
		Short: "Keyword-role relevance scoring for text corpora",
		Long: `imola scores texts against a dictionary of keyword roles, highlights
the matched keywords and reports word frequencies across a labeled corpus.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.cfgFile, "config", "", "config file (YAML)")
	pf.String("dictionary", "", "role dictionary YAML (default is the built-in dictionary)")
	pf.StringArrayVar(&opts.sources, "source", nil, "corpus source as label=dir, repeatable")
	pf.String("log-level", "", "log level: debug, info, warn, error")

	_ = opts.v.BindPFlag("dictionary", pf.Lookup("dictionary"))
	_ = opts.v.BindPFlag("log_level", pf.Lookup("log-level"))

	root.AddCommand(
		newServeCommand(opts),
		newAnalyzeCommand(opts),
		newListCommand(opts),
		newWordsCommand(opts),
		newDictionaryCommand(opts),
	)
	return root
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// loadConfig merges defaults, the optional config file, IMOLA_* environment
// variables and flags, in increasing order of precedence.
func (o *rootOptions) loadConfig() (*app.Config, error) {
	cfg := app.DefaultConfig()
	v := o.v

	v.SetDefault("addr", cfg.Addr)
	v.SetDefault("dictionary", cfg.DictionaryPath)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("page_size", cfg.PageSize)
	v.SetDefault("frequency.threshold", cfg.Frequency.Threshold)
	v.SetDefault("frequency.min_length", cfg.Frequency.MinLength)
	v.SetDefault("frequency.limit", cfg.Frequency.Limit)
	v.SetDefault("corpus.max_file_size", cfg.Corpus.MaxFileSize)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if o.cfgFile != "" {
		v.SetConfigFile(o.cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", o.cfgFile, err)
		}
	}

	// Lists from the file replace the defaults instead of merging into them.
	if v.IsSet("corpus.sources") {
		cfg.Corpus.Sources = nil
	}
	if v.IsSet("frequency.stop_words") {
		cfg.Frequency.StopWords = nil
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if len(o.sources) > 0 {
		sources, err := ParseSources(o.sources)
		if err != nil {
			return nil, err
		}
		cfg.Corpus.Sources = sources
	}
	return cfg, nil
}

// ParseSources turns label=dir flag values into corpus sources. A bare
// directory is labeled with its base name.
func ParseSources(values []string) ([]corpus.Source, error) {
	sources := make([]corpus.Source, 0, len(values))
	for _, val := range values {
		label, dir, ok := strings.Cut(val, "=")
		if !ok {
			dir = val
			label = filepath.Base(filepath.Clean(val))
		}
		label, dir = strings.TrimSpace(label), strings.TrimSpace(dir)
		if label == "" || dir == "" {
			return nil, fmt.Errorf("invalid --source %q: want label=dir", val)
		}
		sources = append(sources, corpus.Source{Label: label, Dir: dir})
	}
	return sources, nil
}

// newApplication loads configuration and wires the application. Logs go to
// the command's stderr so stdout stays machine readable.
func (o *rootOptions) newApplication(cmd *cobra.Command) (*app.Application, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewWriterLogger(cmd.ErrOrStderr(), "imola", level)
	return app.NewApplication(cfg, logger)
}
