package config

// Built-in filter list sources registered on first run.
const (
	EasyListURL    = "https://easylist.to/easylist/easylist.txt"
	EasyPrivacyURL = "https://easylist.to/easylist/easyprivacy.txt"
)

const defaultUpdateIntervalHours = 24

func (m *Manager) setDefaults() {
	m.viper.SetDefault("logging.level", "info")
	m.viper.SetDefault("logging.format", "console")

	m.viper.SetDefault("database.path", "")

	m.viper.SetDefault("filtering.enabled", true)
	m.viper.SetDefault("filtering.update_interval_hours", defaultUpdateIntervalHours)
	m.viper.SetDefault("filtering.cache_dir", "")
	m.viper.SetDefault("filtering.filter_lists", []map[string]any{
		{"name": "easylist", "url": EasyListURL, "enabled": true},
		{"name": "easyprivacy", "url": EasyPrivacyURL, "enabled": true},
	})
}

// DefaultFilterLists returns the built-in list sources.
func DefaultFilterLists() []FilterListConfig {
	return []FilterListConfig{
		{Name: "easylist", URL: EasyListURL, Enabled: true},
		{Name: "easyprivacy", URL: EasyPrivacyURL, Enabled: true},
	}
}

const defaultConfigTOML = `# sw3do-browser configuration
# Schema: config.schema.json (same directory)

[logging]
level = "info"    # trace, debug, info, warn, error
format = "console" # console or json

[database]
# path = "~/.local/share/sw3do/sw3do.sqlite"

[filtering]
enabled = true
update_interval_hours = 24

[[filtering.filter_lists]]
name = "easylist"
url = "https://easylist.to/easylist/easylist.txt"
enabled = true

[[filtering.filter_lists]]
name = "easyprivacy"
url = "https://easylist.to/easylist/easyprivacy.txt"
enabled = true

# Custom rules may scope patterns to origin domains and resource types:
#
# [[filtering.custom_rules]]
# pattern = "ads.example.com"
# kind = "block"
# domains = ["news.example"]
# resources = ["script", "image"]

# Compiled patterns attach a regex matcher to the exact pattern text of a rule:
#
# [[filtering.compiled_patterns]]
# pattern = "ads.example.com"
# regex = "^https?://ads\\.example\\.com/"
`
