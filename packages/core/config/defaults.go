package config

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Suites:  []string{"."},
		Workdir: ".",
		Output:  "console",
		Pace:    0,
		History: HistoryConfig{
			File: ".stagehand/history.db",
		},
		Notify: NotifyConfig{
			On: "failure",
		},
	}
}
