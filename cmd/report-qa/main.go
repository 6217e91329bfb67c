// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the report-qa CLI. It ingests PDF
// reports and answers questions about them with page citations, from the
// command line, over HTTP, over MCP or in a terminal chat.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/report-qa/internal/logging"
	"github.com/pdiddy/report-qa/internal/secrets"
	"github.com/pdiddy/report-qa/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is resolved from defaults, config file, env and flags before
	// any command runs.
	cfg types.Config

	log *logrus.Logger

	// initErr carries a failure from initConfig into PersistentPreRunE.
	initErr error
)

// envAliases maps config keys to the environment variables the web
// backend has always read.
var envAliases = map[string]string{
	"llm.provider":             "LLM_PROVIDER",
	"llm.ollama_host":          "OLLAMA_HOST",
	"llm.ollama_model":         "OLLAMA_MODEL",
	"llm.openai_api_key":       "OPENAI_API_KEY",
	"llm.openai_model":         "OPENAI_MODEL",
	"llm.openai_base_url":      "OPENAI_BASE_URL",
	"llm.max_sources":          "MAX_SOURCES_FOR_LLM",
	"llm.max_chars_per_source": "MAX_CHARS_PER_SOURCE",
}

// temperatureAliases are consulted for llm.temperature by provider.
var temperatureAliases = map[string]string{
	"OLLAMA": "OLLAMA_TEMPERATURE",
	"OPENAI": "OPENAI_TEMPERATURE",
}

var rootCmd = &cobra.Command{
	Use:   "report-qa",
	Short: "Ask cited questions about PDF reports",
	Long: `report-qa ingests PDF reports, filters boilerplate and chart debris,
indexes page-scoped chunks and answers questions with (p.X) citations.

Answers come from a local Ollama model, an OpenAI-compatible API or a
deterministic MOCK backend. Every non-empty answer line is checked for a
page citation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if initErr != nil {
			return initErr
		}
		return loadConfig(cmd)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./report-qa.yaml or ~/.config/report-qa/report-qa.yaml)")
	pf.String("env-file", ".env", "dotenv file loaded before configuration")
	pf.String("data-dir", "", "directory holding docs/ and index/ (default: data)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: text or json")

	_ = viper.BindPFlag("data_dir", pf.Lookup("data-dir"))
	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", pf.Lookup("log-format"))
}

func initConfig() {
	envFile, _ := rootCmd.PersistentFlags().GetString("env-file")
	explicit := rootCmd.PersistentFlags().Changed("env-file")
	if err := secrets.LoadEnvFile(envFile, true, explicit); err != nil {
		initErr = err
		return
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("report-qa")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "report-qa"))
		}
	}

	setDefaults(viper.GetViper(), types.DefaultConfig())

	viper.SetEnvPrefix("REPORT_QA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for key, alias := range envAliases {
		_ = viper.BindEnv(key, "REPORT_QA_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), alias)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			initErr = fmt.Errorf("reading config: %w", err)
		}
		return
	}
	fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
}

// setDefaults registers every default so AutomaticEnv can see each key.
func setDefaults(v *viper.Viper, d types.Config) {
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("lexicon_path", d.LexiconPath)
	v.SetDefault("chunking.size", d.Chunking.Size)
	v.SetDefault("chunking.overlap", d.Chunking.Overlap)
	v.SetDefault("retrieval.k", d.Retrieval.K)
	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.ollama_host", d.LLM.OllamaHost)
	v.SetDefault("llm.ollama_model", d.LLM.OllamaModel)
	v.SetDefault("llm.openai_model", d.LLM.OpenAIModel)
	v.SetDefault("llm.openai_base_url", d.LLM.OpenAIBaseURL)
	v.SetDefault("llm.openai_api_key", "")
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.max_sources", d.LLM.MaxSources)
	v.SetDefault("llm.max_chars_per_source", d.LLM.MaxCharsPerSource)
	v.SetDefault("llm.history_turns", d.LLM.HistoryTurns)
	v.SetDefault("llm.focus_year", d.LLM.FocusYear)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.chat_rate", d.Server.ChatRate)
	v.SetDefault("server.chat_burst", d.Server.ChatBurst)
	v.SetDefault("extraction.backend", string(d.Extraction.Backend))
	v.SetDefault("index.backend", string(d.Index.Backend))
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// loadConfig resolves cfg and builds the logger. API keys found in
// .secrets/ fill in a key the environment did not provide.
func loadConfig(cmd *cobra.Command) error {
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	if os.Getenv("REPORT_QA_LLM_TEMPERATURE") == "" && !viper.InConfig("llm.temperature") {
		alias := temperatureAliases[strings.ToUpper(strings.TrimSpace(cfg.LLM.Provider))]
		if v := os.Getenv(alias); alias != "" && v != "" {
			t, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", alias, err)
			}
			cfg.LLM.Temperature = t
		}
	}

	l, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	log = l

	s, err := secrets.Load(".secrets/", log)
	if err != nil {
		return err
	}
	if cfg.LLM.OpenAIAPIKey == "" {
		cfg.LLM.OpenAIAPIKey = s[secrets.OpenAIKey]
	}
	if len(s) > 0 {
		keys := make([]string, 0, len(s))
		for k := range s {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		log.WithField("keys", keys).Debug("loaded secrets")
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
