package config

// Config represents the complete cortex configuration.
// It can be loaded from .codeindex/config.yml with environment variable overrides.
type Config struct {
	Embedding EmbeddingConfig `yaml:"embedding" mapstructure:"embedding"`
	Paths     PathsConfig     `yaml:"paths" mapstructure:"paths"`
	Chunking  ChunkingConfig  `yaml:"chunking" mapstructure:"chunking"`
	Storage   StorageConfig   `yaml:"storage" mapstructure:"storage"`
	Ranking   RankingConfig   `yaml:"ranking" mapstructure:"ranking"`
}

// RankingConfig controls the Hybrid Ranker's fusion, diversification, and
// tie-break behavior. Schema per spec §6: {fusion {alpha, beta, k},
// diversification {perFileCap}, tieBreakers {epsilon, kindPriority[],
// pathPriority[]}}.
type RankingConfig struct {
	Fusion          RankingFusionConfig          `yaml:"fusion" mapstructure:"fusion"`
	Diversification RankingDiversificationConfig `yaml:"diversification" mapstructure:"diversification"`
	TieBreakers     RankingTieBreakersConfig     `yaml:"tie_breakers" mapstructure:"tie_breakers"`
}

type RankingFusionConfig struct {
	Alpha float64 `yaml:"alpha" mapstructure:"alpha"`
	Beta  float64 `yaml:"beta" mapstructure:"beta"`
	K     float64 `yaml:"k" mapstructure:"k"`
}

type RankingDiversificationConfig struct {
	PerFileCap int `yaml:"per_file_cap" mapstructure:"per_file_cap"`
}

type RankingTieBreakersConfig struct {
	Epsilon      float64  `yaml:"epsilon" mapstructure:"epsilon"`
	KindPriority []string `yaml:"kind_priority" mapstructure:"kind_priority"`
	PathPriority []string `yaml:"path_priority" mapstructure:"path_priority"`
}

// StorageConfig controls where the SQLite store lives and how its
// bounded symbol/query caches get evicted over time.
type StorageConfig struct {
	CacheLocation      string  `yaml:"cache_location" mapstructure:"cache_location"`
	BranchCacheEnabled bool    `yaml:"branch_cache_enabled" mapstructure:"branch_cache_enabled"`
	CacheMaxAgeDays    int     `yaml:"cache_max_age_days" mapstructure:"cache_max_age_days"`
	CacheMaxSizeMB     float64 `yaml:"cache_max_size_mb" mapstructure:"cache_max_size_mb"`
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"`     // "local" or "openai"
	Model      string `yaml:"model" mapstructure:"model"`           // e.g., "BAAI/bge-small-en-v1.5"
	Dimensions int    `yaml:"dimensions" mapstructure:"dimensions"` // embedding vector dimensions
	Endpoint   string `yaml:"endpoint" mapstructure:"endpoint"`     // e.g., "http://localhost:8121/embed"
}

// PathsConfig defines which files to index and which to ignore.
type PathsConfig struct {
	Code   []string `yaml:"code" mapstructure:"code"`     // glob patterns for code files
	Docs   []string `yaml:"docs" mapstructure:"docs"`     // glob patterns for documentation
	Ignore []string `yaml:"ignore" mapstructure:"ignore"` // glob patterns to ignore
}

// ChunkingConfig defines how content is chunked for indexing.
type ChunkingConfig struct {
	Strategies    []string `yaml:"strategies" mapstructure:"strategies"`           // e.g., ["symbols", "definitions", "data"]
	DocChunkSize  int      `yaml:"doc_chunk_size" mapstructure:"doc_chunk_size"`   // max tokens per doc chunk
	CodeChunkSize int      `yaml:"code_chunk_size" mapstructure:"code_chunk_size"` // max characters per code chunk
	Overlap       int      `yaml:"overlap" mapstructure:"overlap"`                 // token overlap between chunks
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:   "local",
			Model:      "BAAI/bge-small-en-v1.5",
			Dimensions: 384,
			Endpoint:   "http://localhost:8121/embed",
		},
		Paths: PathsConfig{
			Code: []string{
				"**/*.go",
				"**/*.ts",
				"**/*.tsx",
				"**/*.js",
				"**/*.jsx",
				"**/*.py",
				"**/*.rs",
				"**/*.c",
				"**/*.cpp",
				"**/*.cc",
				"**/*.h",
				"**/*.hpp",
				"**/*.php",
				"**/*.rb",
				"**/*.java",
			},
			Docs: []string{
				"**/*.md",
				"**/*.rst",
			},
			Ignore: []string{
				"node_modules/**",
				"vendor/**",
				".git/**",
				"dist/**",
				"build/**",
				"target/**",
				"__pycache__/**",
				"*.test",
				"*.pyc",
			},
		},
		Chunking: ChunkingConfig{
			Strategies:    []string{"symbols", "definitions", "data"},
			DocChunkSize:  800,
			CodeChunkSize: 2000,
			Overlap:       100,
		},
		Storage: StorageConfig{
			CacheLocation:      "",
			BranchCacheEnabled: true,
			CacheMaxAgeDays:    30,
			CacheMaxSizeMB:     500,
		},
		Ranking: RankingConfig{
			Fusion:          RankingFusionConfig{Alpha: 0.5, Beta: 0.5, K: 60},
			Diversification: RankingDiversificationConfig{PerFileCap: 3},
			TieBreakers: RankingTieBreakersConfig{
				Epsilon:      1e-6,
				KindPriority: []string{"function", "class", "variable"},
				PathPriority: []string{"src/", "test/", "docs/"},
			},
		},
	}
}
