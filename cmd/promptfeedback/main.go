// Package main provides a command-line interface for prompt evaluation.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/guiperry/promptfeedback/config"
	"github.com/guiperry/promptfeedback/evaluator"
	"github.com/guiperry/promptfeedback/feedback"
	"github.com/guiperry/promptfeedback/utils"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	apiKey   string
	model    string
	baseURL  string
	logLevel string
	noCache  bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdin, os.Stdout).ExecuteContext(ctx); err != nil {
		exitWithError("Error: %v\n", err)
	}
}

// exitWithError prints an error message and exits
func exitWithError(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "promptfeedback",
		Short:         "Score LLM prompts and suggest improvements",
		Long:          `promptfeedback rates a prompt from 0 to 100 with keyword heuristics or an OpenAI model, lists its strengths and weaknesses, and proposes a rewritten prompt.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.apiKey, "api-key", "", "OpenAI API key (defaults to $OPENAI_API_KEY)")
	pf.StringVar(&flags.model, "model", "", "Model used for LLM feedback ("+strings.Join(config.SupportedModels, ", ")+")")
	pf.StringVar(&flags.baseURL, "base-url", "", "OpenAI-compatible API base URL")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error, off)")
	pf.BoolVar(&flags.noCache, "no-cache", false, "Disable the feedback cache")

	root.AddCommand(
		newEvaluateCmd(flags),
		newExamplesCmd(flags),
		newServeCmd(flags),
	)
	return root
}

// loadConfig reads the environment and applies the command-line overrides.
func loadConfig(flags *rootFlags, extra ...config.ConfigOption) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	config.ApplyOptions(cfg, prepareConfigOptions(flags)...)
	config.ApplyOptions(cfg, extra...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func prepareConfigOptions(flags *rootFlags) []config.ConfigOption {
	var configOpts []config.ConfigOption

	if flags.apiKey != "" {
		configOpts = append(configOpts, config.SetAPIKey(flags.apiKey))
	}
	if flags.model != "" {
		configOpts = append(configOpts, config.SetModel(flags.model))
	}
	if flags.baseURL != "" {
		configOpts = append(configOpts, config.SetBaseURL(flags.baseURL))
	}
	if flags.logLevel != "" {
		configOpts = append(configOpts, config.SetLogLevel(getLogLevel(flags.logLevel)))
	}
	if flags.noCache {
		configOpts = append(configOpts, config.SetCacheTTL(0))
	}
	return configOpts
}

func getLogLevel(level string) utils.LogLevel {
	var l utils.LogLevel
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return utils.LogLevelWarn
	}
	return l
}

// newService builds the feedback service, seeding the rewriter when seed
// is non-zero.
func newService(cfg *config.Config, seed uint64) (*feedback.Service, error) {
	var opts []feedback.Option
	if seed != 0 {
		opts = append(opts, feedback.WithEvaluator(evaluator.New(
			evaluator.WithChooser(evaluator.NewSeededChooser(seed)),
			evaluator.WithLogger(cfg.GetLogger()),
		)))
	}
	return feedback.NewService(cfg, opts...)
}
