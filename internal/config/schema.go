package config

// Config is the top-level YAML structure.
type Config struct {
	Server ServerConf `yaml:"server"`
	Log    LogConf    `yaml:"log"`
	Engine EngineConf `yaml:"engine"`
	Graph  GraphConf  `yaml:"graph"`
}

// ServerConf holds HTTP listener settings.
type ServerConf struct {
	Addr           string `yaml:"addr"`
	ReadTimeoutMs  int    `yaml:"read_timeout_ms"`
	WriteTimeoutMs int    `yaml:"write_timeout_ms"`
	IdleTimeoutMs  int    `yaml:"idle_timeout_ms"`
}

// LogConf selects the slog handler.
type LogConf struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// EngineConf holds tunable concurrency settings for batch queries.
type EngineConf struct {
	Workers        int `yaml:"workers"`
	QueueDepth     int `yaml:"queue_depth"`
	QueryTimeoutMs int `yaml:"query_timeout_ms"`
	MaxBatch       int `yaml:"max_batch"`
}

// GraphConf configures the optional graph file preloaded at startup.
type GraphConf struct {
	Path           string `yaml:"path"`  // empty = start with no active graph
	Watch          bool   `yaml:"watch"` // reload the file when it changes
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}
