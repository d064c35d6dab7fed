// Command chatbot is a terminal chat agent backed by Claude with a web search tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/petasbytes/go-chatbot/internal/config"
	"github.com/petasbytes/go-chatbot/internal/credentials"
	"github.com/petasbytes/go-chatbot/internal/logging"
	"github.com/petasbytes/go-chatbot/internal/provider"
	"github.com/petasbytes/go-chatbot/internal/repl"
	"github.com/petasbytes/go-chatbot/internal/runner"
	"github.com/petasbytes/go-chatbot/internal/search"
	"github.com/petasbytes/go-chatbot/memory"
	"github.com/petasbytes/go-chatbot/tools"
)

// errReported marks failures the chat loop has already shown to the user.
var errReported = errors.New("reported")

type options struct {
	configPath string
	session    string
	model      string
	store      string
	dbPath     string
	maxResults int
	logLevel   string
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "chatbot",
		Short:         "Chat with Claude from the terminal, with web search",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, o)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&o.configPath, "config", config.DefaultPath(), "path to the YAML config file")
	f.StringVar(&o.store, "store", "", "session store backend (memory or sqlite)")
	f.StringVar(&o.dbPath, "db", "", "sqlite database path")
	f.StringVar(&o.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.Flags().StringVar(&o.session, "session", "", "session id to resume (default: a new uuid)")
	root.Flags().StringVar(&o.model, "model", "", "Anthropic model name")
	root.Flags().IntVar(&o.maxResults, "max-results", 0, "maximum web search results per query")

	root.AddCommand(newSecretCmd(), newSessionsCmd(o))
	return root
}

// loadConfig layers flags that were explicitly set over file and environment values.
func loadConfig(cmd *cobra.Command, o *options) (*config.Config, error) {
	cfg, err := config.Load(o.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.Model = o.model
	}
	if flags.Changed("store") {
		cfg.Store.Backend = o.store
	}
	if flags.Changed("db") {
		cfg.Store.Path = o.dbPath
	}
	if flags.Changed("max-results") {
		cfg.Search.MaxResults = o.maxResults
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(w, level, cfg.Log.Format), nil
}

func dbPath(cfg *config.Config) string {
	if cfg.Store.Path != "" {
		return cfg.Store.Path
	}
	return config.DefaultDBPath()
}

// openStore returns the configured session store and a close func.
func openStore(cfg *config.Config) (memory.Store, func() error, error) {
	if cfg.Store.Backend == config.StoreSQLite {
		s, err := memory.OpenSQLite(dbPath(cfg))
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return memory.NewInMemoryStore(), func() error { return nil }, nil
}

func runChat(cmd *cobra.Command, o *options) error {
	cfg, err := loadConfig(cmd, o)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd.ErrOrStderr(), cfg)
	if err != nil {
		return err
	}

	anthropicKey, err := credentials.Lookup(credentials.AnthropicAPIKeyName)
	if err != nil {
		return err
	}
	tavilyKey, err := credentials.Lookup(credentials.TavilyAPIKeyName)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("close session store", "err", err)
		}
	}()

	searchOpts := []search.Option{
		search.WithDepth(cfg.Search.Depth),
		search.WithTimeout(time.Duration(cfg.Search.TimeoutSeconds) * time.Second),
	}
	if cfg.Search.BaseURL != "" {
		searchOpts = append(searchOpts, search.WithBaseURL(cfg.Search.BaseURL))
	}
	tavily := search.NewTavily(tavilyKey, searchOpts...)
	invoker := tools.NewInvoker(tools.Registry(tavily, cfg.Search.MaxResults), logger)

	model := provider.New(
		provider.NewAnthropicClient(anthropicKey, cfg.MaxRetries),
		provider.Settings{
			Model:        anthropic.Model(cfg.Model),
			MaxTokens:    int64(cfg.MaxTokens),
			SystemPrompt: cfg.SystemPrompt,
		},
		logger,
	)
	r := runner.New(model, invoker, store, cfg.MaxRoundTrips, logger)

	sessionID := o.session
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	// Ctrl-C / SIGTERM cancel the loop and any in-flight turn.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := &repl.Loop{
		In:        cmd.InOrStdin(),
		Out:       cmd.OutOrStdout(),
		Turner:    r,
		SessionID: sessionID,
		Styles:    repl.NewStyles(isTerminal(cmd.OutOrStdout())),
		Logger:    logger.With("session_id", sessionID),
	}
	logger.Info("chat starting", "model", model.Model(), "store", cfg.Store.Backend, "session_id", sessionID)
	if err := loop.Run(ctx); err != nil {
		return fmt.Errorf("%w: %w", errReported, err)
	}
	return nil
}

// isTerminal reports whether w is a file attached to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
