// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ChunkingConfig holds settings for the page chunker.
type ChunkingConfig struct {
	// Size is the maximum chunk length in characters (default 1800).
	Size int `json:"size" yaml:"size" mapstructure:"size"`

	// Overlap is the trailing context carried into the next chunk (default 250).
	Overlap int `json:"overlap" yaml:"overlap" mapstructure:"overlap"`
}

// RetrievalConfig holds settings for query-time retrieval.
type RetrievalConfig struct {
	// K is the number of sources handed to generation (default 14).
	K int `json:"k" yaml:"k" mapstructure:"k"`
}

// LLMConfig holds settings for the generative-model backend. Provider is
// kept as a string here and resolved at call time.
type LLMConfig struct {
	// Provider selects the backend: MOCK, OLLAMA or OPENAI.
	Provider string `json:"provider" yaml:"provider" mapstructure:"provider"`

	OllamaHost    string `json:"ollama_host" yaml:"ollama_host" mapstructure:"ollama_host"`
	OllamaModel   string `json:"ollama_model" yaml:"ollama_model" mapstructure:"ollama_model"`
	OpenAIModel   string `json:"openai_model" yaml:"openai_model" mapstructure:"openai_model"`
	OpenAIBaseURL string `json:"openai_base_url" yaml:"openai_base_url" mapstructure:"openai_base_url"`

	// OpenAIAPIKey is never serialised.
	OpenAIAPIKey string `json:"-" yaml:"-" mapstructure:"openai_api_key"`

	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`

	// Timeout bounds a single generation call (default 180s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxSources caps the sources placed in the prompt (default 12).
	MaxSources int `json:"max_sources" yaml:"max_sources" mapstructure:"max_sources"`

	// MaxCharsPerSource truncates each source in the prompt (default 900).
	MaxCharsPerSource int `json:"max_chars_per_source" yaml:"max_chars_per_source" mapstructure:"max_chars_per_source"`

	// HistoryTurns is how many recent turns are replayed (default 8).
	HistoryTurns int `json:"history_turns" yaml:"history_turns" mapstructure:"history_turns"`

	// FocusYear names the forward-looking answer section. Zero means the
	// calendar year after the current one.
	FocusYear int `json:"focus_year" yaml:"focus_year" mapstructure:"focus_year"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	Addr           string   `json:"addr" yaml:"addr" mapstructure:"addr"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`

	// ChatRate is the sustained /chat requests per second. Zero disables limiting.
	ChatRate  float64 `json:"chat_rate" yaml:"chat_rate" mapstructure:"chat_rate"`
	ChatBurst int     `json:"chat_burst" yaml:"chat_burst" mapstructure:"chat_burst"`
}

// ExtractionBackend identifies the PDF text extraction engine.
type ExtractionBackend string

const (
	ExtractNative    ExtractionBackend = "native"
	ExtractPdftotext ExtractionBackend = "pdftotext"
)

// ExtractionConfig holds settings for PDF extraction.
type ExtractionConfig struct {
	Backend ExtractionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`
}

// IndexBackend identifies the similarity index implementation.
type IndexBackend string

const (
	IndexSQLite IndexBackend = "sqlite"
	IndexMemory IndexBackend = "memory"
)

// IndexConfig holds settings for the chunk index.
type IndexConfig struct {
	Backend IndexBackend `json:"backend" yaml:"backend" mapstructure:"backend"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is a logrus level name (default "info").
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "text" or "json".
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups every setting the application reads.
type Config struct {
	// DataDir contains docs/ (uploaded PDFs) and index/ (SQLite database).
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// LexiconPath optionally replaces the built-in filter lexicon.
	LexiconPath string `json:"lexicon_path" yaml:"lexicon_path" mapstructure:"lexicon_path"`

	Chunking   ChunkingConfig   `json:"chunking" yaml:"chunking" mapstructure:"chunking"`
	Retrieval  RetrievalConfig  `json:"retrieval" yaml:"retrieval" mapstructure:"retrieval"`
	LLM        LLMConfig        `json:"llm" yaml:"llm" mapstructure:"llm"`
	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	Index      IndexConfig      `json:"index" yaml:"index" mapstructure:"index"`
	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		DataDir: "data",
		Chunking: ChunkingConfig{
			Size:    1800,
			Overlap: 250,
		},
		Retrieval: RetrievalConfig{K: 14},
		LLM: LLMConfig{
			Provider:          "MOCK",
			OllamaHost:        "http://localhost:11434",
			OllamaModel:       "llama3.2:3b",
			OpenAIModel:       "gpt-4o-mini",
			OpenAIBaseURL:     "https://api.openai.com/v1",
			Temperature:       0.2,
			Timeout:           180 * time.Second,
			MaxSources:        12,
			MaxCharsPerSource: 900,
			HistoryTurns:      8,
		},
		Server: ServerConfig{
			Addr: ":8000",
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
				"http://localhost:3001",
				"http://127.0.0.1:3001",
			},
			ChatRate:  2,
			ChatBurst: 4,
		},
		Extraction: ExtractionConfig{Backend: ExtractNative},
		Index:      IndexConfig{Backend: IndexSQLite},
		Log:        LogConfig{Level: "info", Format: "text"},
	}
}
