package config

// Limits that are not worth a config knob.
const (
	DefaultFetchMaxBytes    = 50000
	DefaultPreviewChars     = 500
	DefaultPreviewReadBytes = 10 * 1024
)

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:1234",
			Model:          "local-model",
			Temperature:    0.7,
			MaxTokens:      2000,
			TimeoutSeconds: 120,
		},
		UI: UIConfig{
			Theme:          "dark",
			ShowThinking:   false,
			MaxOutputLines: 200,
		},
		Mode: ModeConfig{
			AutoRunTools: false,
			DryRun:       false,
		},
		Context: ContextConfig{
			MaxDepth:        3,
			MaxFileSize:     1024 * 1024,
			MaxContextFiles: 10,
			RefreshMinutes:  5,
			AutoRefresh:     false,
			ExcludePatterns: []string{
				".git", "node_modules", "__pycache__", ".venv", "venv",
				"dist", "build", "target", ".idea", ".vscode", "*.pyc",
				"*.min.js", "vendor",
			},
			IncludeExtensions: []string{
				".go", ".py", ".js", ".ts", ".jsx", ".tsx", ".java", ".c",
				".h", ".cpp", ".rs", ".rb", ".php", ".sh", ".md", ".txt",
				".json", ".yaml", ".yml", ".toml", ".html", ".css", ".sql",
			},
		},
		Session: SessionConfig{
			HistoryWindow: 10,
		},
		Tools: ToolsConfig{
			CommandTimeoutSeconds: 30,
		},
		Web: WebConfig{
			FetchMaxBytes: DefaultFetchMaxBytes,
			MaxResults:    5,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  false,
		},
	}
}
