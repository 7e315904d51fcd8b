package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rohmanhakim/lazyload/internal/cache/store"
	"github.com/rohmanhakim/lazyload/internal/config"
	"github.com/rohmanhakim/lazyload/internal/metadata"
	"github.com/spf13/cobra"
)

var (
	cfgFile             string
	storeKind           string
	storeDSN            string
	logLevel            string
	prefix              string
	baseURL             string
	timeout             time.Duration
	randomSeed          int64
	placeholdersDisable bool
	noscriptDisable     bool
	cacheDisable        bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lazyload",
	Short: "Rewrite HTML images and iframes for lazy loading.",
	Long: `lazyload rewrites <img> and <iframe> tags in HTML content so browsers
defer loading them, wrapping each in a sized placeholder that can show a
blurred preview or the source's average color until it loads.

Rewritten fragments are cached per owner in a pluggable store (memory, file,
sqlite or redis) so repeated runs over the same content make no network
requests.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// ExecuteWithIO runs the root command with args and the given streams.
func ExecuteWithIO(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/lazyload.json)")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "memory", "fragment store backend: memory, file, sqlite or redis")
	rootCmd.PersistentFlags().StringVar(&storeDSN, "dsn", "", "store location: directory for file, database path for sqlite, URL for redis")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&prefix, "prefix", "", "class and attribute prefix for rewritten markup")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "URL relative image sources are resolved against")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for each outbound fetch")
	rootCmd.PersistentFlags().Int64Var(&randomSeed, "random-seed", 0, "seed for retry jitter (0 for current time)")
	rootCmd.PersistentFlags().BoolVar(&placeholdersDisable, "no-placeholders", false, "emit deferred tags without placeholder containers")
	rootCmd.PersistentFlags().BoolVar(&noscriptDisable, "no-noscript", false, "omit the <noscript> fallback copy")
	rootCmd.PersistentFlags().BoolVar(&cacheDisable, "no-cache", false, "neither read nor write cached fragments")

	rootCmd.AddCommand(processCmd, invalidateCmd, purgeCmd, snippetsCmd, versionCmd)
}

// InitConfigWithError reads the config file when one is given, otherwise
// starts from defaults with CLI flag overrides. LAZYLOAD_* environment
// variables are applied last.
func InitConfigWithError() (config.Config, error) {
	var cfg config.Config
	if cfgFile != "" {
		fromFile, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return config.Config{}, fmt.Errorf("error initializing config from file: %w", err)
		}
		cfg = fromFile
	} else {
		configBuilder := config.WithDefault()

		if prefix != "" {
			configBuilder = configBuilder.WithPrefix(prefix)
		}

		if baseURL != "" {
			if err := configBuilder.WithBaseURLString(baseURL); err != nil {
				return config.Config{}, err
			}
		}

		if timeout > 0 {
			configBuilder = configBuilder.WithFetchTimeout(timeout)
		}

		if randomSeed != 0 {
			configBuilder = configBuilder.WithRandomSeed(randomSeed)
		}

		if placeholdersDisable {
			configBuilder = configBuilder.WithPlaceholdersDisable(true)
		}

		if noscriptDisable {
			configBuilder = configBuilder.WithNoscriptEnable(false)
		}

		if cacheDisable {
			configBuilder = configBuilder.WithCacheEnable(false)
		}

		built, err := configBuilder.Build()
		if err != nil {
			return config.Config{}, err
		}
		cfg = built
	}

	cfg, err := config.WithEnv(cfg)
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// closer releases a store's connection, if it holds one.
type closer func() error

// openStore opens the fragment store selected by --store and --dsn.
func openStore(ctx context.Context) (store.Store, closer, error) {
	noop := func() error { return nil }
	switch strings.ToLower(storeKind) {
	case "", "memory":
		return store.NewMemoryStore(), noop, nil
	case "file":
		if storeDSN == "" {
			return nil, nil, fmt.Errorf("--dsn is required for the file store")
		}
		s, err := store.NewFileStore(storeDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case "sqlite":
		if storeDSN == "" {
			return nil, nil, fmt.Errorf("--dsn is required for the sqlite store")
		}
		s, err := store.OpenSQLite(storeDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "redis":
		if storeDSN == "" {
			return nil, nil, fmt.Errorf("--dsn is required for the redis store")
		}
		s, err := store.NewRedisStoreWithURL(storeDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q: want memory, file, sqlite or redis", storeKind)
	}
}

// newRecorder logs to w at the --log-level threshold and feeds metrics.
func newRecorder(w io.Writer, metrics *metadata.Metrics) (*metadata.Recorder, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return metadata.NewRecorder(logger, metrics), nil
}

func ResetFlags() {
	cfgFile = ""
	storeKind = "memory"
	storeDSN = ""
	logLevel = "warn"
	prefix = ""
	baseURL = ""
	timeout = 0
	randomSeed = 0
	placeholdersDisable = false
	noscriptDisable = false
	cacheDisable = false
	resetProcessFlags()
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetPrefixForTest(p string) {
	prefix = p
}

func SetBaseURLForTest(u string) {
	baseURL = u
}

func SetTimeoutForTest(t time.Duration) {
	timeout = t
}

func SetRandomSeedForTest(seed int64) {
	randomSeed = seed
}

func SetPlaceholdersDisableForTest(disable bool) {
	placeholdersDisable = disable
}

func SetNoscriptDisableForTest(disable bool) {
	noscriptDisable = disable
}

func SetCacheDisableForTest(disable bool) {
	cacheDisable = disable
}
