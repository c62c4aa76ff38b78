package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var Version = "dev"

const (
	DefaultPath = "config/config.yaml"

	EconomyModeDefault     = "default"
	EconomyModeOCRStandard = "ocr_standard"
)

type Config struct {
	Version int     `yaml:"version"`
	Set     float64 `yaml:"set"`

	LogLevel         string `yaml:"log_level"`
	LogSaveDirectory string `yaml:"log_save_directory"`
	ForfeitEarly     bool   `yaml:"forfeit_early"`

	OverrideInstallLocationLeagueClient string `yaml:"override_install_location_league_client"`
	OverrideInstallLocationRiotClient   string `yaml:"override_install_location_riot_client"`
	UseDeceive                          bool   `yaml:"use_deceive"`
	InstallLocationDeceive              string `yaml:"install_location_deceive"`

	WantedTraits                     []string `yaml:"wanted_traits"`
	PurchaseTraitsInPrioritizedOrder bool     `yaml:"purchase_traits_in_prioritized_order"`
	OCRForRounds                     bool     `yaml:"ocr_for_rounds"`
	CapturesDirectory                string   `yaml:"captures_directory"`

	Timeouts TimeoutTable `yaml:"timeouts"`
	Economy  EconomyCfg   `yaml:"economy"`
	Hotkeys  struct {
		Pause        string `yaml:"pause"`
		PlayNextGame string `yaml:"play_next_game"`
	} `yaml:"hotkeys"`
	NetworkMonitor struct {
		Enabled           bool   `yaml:"enabled"`
		Address           string `yaml:"address"`
		SustainedDuration int    `yaml:"sustained_duration"` // seconds offline before the recovery waits for the network
	} `yaml:"network_monitor"`
	Server struct {
		Enabled bool `yaml:"enabled"`
		Port    int  `yaml:"port"`
	} `yaml:"server"`
	UI struct {
		Enabled      bool `yaml:"enabled"`
		WindowWidth  int  `yaml:"window_width"`
		WindowHeight int  `yaml:"window_height"`
	} `yaml:"ui"`
	Discord struct {
		Enabled                bool     `yaml:"enabled"`
		EnableMatchMessages    bool     `yaml:"enable_match_messages"`
		EnableRecoveryMessages bool     `yaml:"enable_recovery_messages"`
		BotAdmins              []string `yaml:"bot_admins"`
		ChannelID              string   `yaml:"channel_id"`
		Token                  string   `yaml:"token"`
		UseWebhook             bool     `yaml:"use_webhook"`
		WebhookURL             string   `yaml:"webhook_url"`
	} `yaml:"discord"`
	Telegram struct {
		Enabled bool   `yaml:"enabled"`
		ChatID  int64  `yaml:"chat_id"`
		Token   string `yaml:"token"`
	} `yaml:"telegram"`
	Ngrok struct {
		Enabled       bool   `yaml:"enabled"`
		SendURL       bool   `yaml:"send_url"`
		Authtoken     string `yaml:"authtoken"`
		Region        string `yaml:"region"`
		Domain        string `yaml:"domain"`
		BasicAuthUser string `yaml:"basic_auth_user"`
		BasicAuthPass string `yaml:"basic_auth_pass"`
	} `yaml:"ngrok"`
	UpdateCheck struct {
		Enabled    bool   `yaml:"enabled"`
		Repository string `yaml:"repository"`
	} `yaml:"update_check"`
}

type EconomyCfg struct {
	Mode                      string           `yaml:"mode"`
	OverrideTesseractLocation string           `yaml:"override_tesseract_location"`
	Default                   Thresholds       `yaml:"default"`
	OCRStandard               Thresholds       `yaml:"ocr_standard"`
	Maintenance               MaintenanceRates `yaml:"maintenance"`
	// Champion names per trait, lowercase. OCR mode uses it to recognize units by name.
	TraitChampions map[string][]string `yaml:"trait_champions"`
}

// TraitOf returns the wanted trait a champion belongs to, or "" when it belongs to none.
func (c *Config) TraitOf(champion string) string {
	champion = strings.ToLower(strings.TrimSpace(champion))
	for _, trait := range c.WantedTraits {
		if slices.Contains(c.Economy.TraitChampions[trait], champion) {
			return trait
		}
	}

	return ""
}

// Thresholds are the gold gates of one economy variant. Gold values are what the variant reads
// from screen, so template lookups and OCR use very different scales.
type Thresholds struct {
	PurchaseGold         int `yaml:"purchase_gold"`
	LevelGold            int `yaml:"level_gold"`
	RerollGold           int `yaml:"reroll_gold"`
	LevelCost            int `yaml:"level_cost"`
	RerollCost           int `yaml:"reroll_cost"`
	MaxGoldLookup        int `yaml:"max_gold_lookup"`
	PurchaseAttempts     int `yaml:"purchase_attempts"`
	LevelFromRound       int `yaml:"level_from_round"`
	AggressiveLevelRound int `yaml:"aggressive_level_round"`
	RerollFromRound      int `yaml:"reroll_from_round"`
}

// MaintenanceRates are per-tick probabilities in [0, 1].
type MaintenanceRates struct {
	BenchCleanup float64 `yaml:"bench_cleanup"`
	BoardCleanup float64 `yaml:"board_cleanup"`
	PlaceItems   float64 `yaml:"place_items"`
	CollectItems float64 `yaml:"collect_items"`
	WalkRandom   float64 `yaml:"walk_random"`
}

// Flags are the command line overrides, they take precedence over the file.
type Flags struct {
	ForfeitEarly bool
	Verbose      bool
}

func (c *Config) ApplyFlags(f Flags) {
	if f.ForfeitEarly {
		c.ForfeitEarly = true
	}
	if f.Verbose {
		c.LogLevel = "DEBUG"
	}
}

// Load reads the config at path, seeding it from the embedded default on first run and migrating
// it when the embedded default is a newer version.
func Load(path string) (*Config, error) {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("error creating config directory: %w", err)
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err = os.WriteFile(path, defaultConfig, 0644); err != nil {
			return nil, fmt.Errorf("error writing default config: %w", err)
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", path, err)
	}

	raw, err = migrate(path, raw)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err = yaml.Unmarshal(defaultConfig, cfg); err != nil {
		return nil, fmt.Errorf("error reading embedded config: %w", err)
	}
	if err = yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("error reading config %s: %w", path, err)
	}

	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	revealSecrets(cfg)
	sanitizeDiscordConfig(cfg)

	return cfg, nil
}

func (c *Config) Validate() error {
	if len(c.WantedTraits) == 0 {
		return errors.New("wanted_traits must list at least one trait")
	}
	for i, t := range c.WantedTraits {
		c.WantedTraits[i] = strings.ToLower(strings.TrimSpace(t))
	}

	champions := make(map[string][]string, len(c.Economy.TraitChampions))
	for trait, names := range c.Economy.TraitChampions {
		normalized := make([]string, 0, len(names))
		for _, n := range names {
			normalized = append(normalized, strings.ToLower(strings.TrimSpace(n)))
		}
		champions[strings.ToLower(strings.TrimSpace(trait))] = normalized
	}
	c.Economy.TraitChampions = champions

	c.Economy.Mode = strings.ToLower(strings.TrimSpace(c.Economy.Mode))
	if !slices.Contains([]string{EconomyModeDefault, EconomyModeOCRStandard}, c.Economy.Mode) {
		return fmt.Errorf("unknown economy mode %q", c.Economy.Mode)
	}

	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARNING", "WARN", "ERROR":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}

	if c.Timeouts.Get(SurrenderMin) > c.Timeouts.Get(SurrenderMax) {
		return errors.New("timeouts.surrender_min is greater than timeouts.surrender_max")
	}

	if c.CapturesDirectory == "" {
		c.CapturesDirectory = "captures"
	}
	if c.Server.Port <= 0 {
		c.Server.Port = 8087
	}

	return nil
}

// Save writes the config back to path.
func Save(path string, cfg *Config) error {
	text, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}

	if err = os.WriteFile(path, text, 0644); err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}

	return nil
}

func sanitizeDiscordConfig(cfg *Config) {
	if !cfg.Discord.Enabled {
		return
	}
	useWebhook := cfg.Discord.UseWebhook
	webhookURL := strings.TrimSpace(cfg.Discord.WebhookURL)
	token := strings.TrimSpace(cfg.Discord.Token)
	channelID := strings.TrimSpace(cfg.Discord.ChannelID)

	if (useWebhook && webhookURL == "") || (!useWebhook && (token == "" || channelID == "")) {
		cfg.Discord.Enabled = false
	}
}

// SaveWindowSize updates ui.window_width and ui.window_height in the file at path, leaving every
// other value, comments and encrypted secrets untouched.
func SaveWindowSize(path string, width, height int) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error loading %s: %w", path, err)
	}

	var doc yaml.Node
	if err = yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("error reading config %s: %w", path, err)
	}
	root := documentRoot(&doc)
	if root == nil {
		return fmt.Errorf("config %s is not a mapping", path)
	}

	ui := lookup(root, "ui")
	if ui == nil || ui.Kind != yaml.MappingNode {
		ui = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		removeKey(root, "ui")
		root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "ui"}, ui)
	}
	setInt(ui, "window_width", width)
	setInt(ui, "window_height", height)

	text, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}

	return os.WriteFile(path, text, 0644)
}

func setInt(mapping *yaml.Node, key string, v int) {
	value := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(v)}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = value
			return
		}
	}
	mapping.Content = append(mapping.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, value)
}
