
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	BotToken string `json:"bot_token"`
	DataDir  string `json:"data_dir"`
	AdminIDs []int64 `json:"admin_ids"`

	// SourceGroupID is the admin group the bot watches for PDF uploads.
	SourceGroupID int64 `json:"source_group_id"`
	// TargetChannelID is the channel posts are published to.
	TargetChannelID int64 `json:"target_channel_id"`
	// TargetChannelName is the public handle used for the watermark text
	// (falls back to the numeric id when empty).
	TargetChannelName string `json:"target_channel_name,omitempty"`

	OpenRouterAPIKey string `json:"openrouter_api_key"`
	OpenRouterModel  string `json:"openrouter_model,omitempty"`

	// If true, bot will log debug messages.
	Debug bool `json:"debug,omitempty"`
}

const defaultModel = "google/gemini-2.0-flash-exp:free"

func DefaultDataDir() string {
	if v := os.Getenv("KB_DATA_DIR"); v != "" {
		return v
	}
	// Preferred system path
	return "/var/lib/ketabrooz"
}

func DefaultConfigPath() string {
	if v := os.Getenv("KB_CONFIG"); v != "" {
		return v
	}
	// Preferred system path
	return "/etc/ketabrooz/config.json"
}

func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	var cfg Config
	// 1) Try file
	if b, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("invalid config json: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	// 2) Env fallback / override
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.BotToken = v
	}
	if v := os.Getenv("KB_BOT_TOKEN"); v != "" {
		cfg.BotToken = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("KB_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("KB_SOURCE_GROUP"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.SourceGroupID = id
		}
	}
	if v := os.Getenv("KB_TARGET_CHANNEL"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.TargetChannelID = id
		}
	}
	if v := os.Getenv("KB_TARGET_CHANNEL_NAME"); v != "" {
		cfg.TargetChannelName = v
	}
	if v := os.Getenv("KB_ADMINS"); v != "" && len(cfg.AdminIDs) == 0 {
		cfg.AdminIDs = parseIDList(v)
	}
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		cfg.OpenRouterAPIKey = v
	}
	if v := os.Getenv("OPENROUTER_MODEL"); v != "" {
		cfg.OpenRouterModel = v
	}
	if v := os.Getenv("KB_DEBUG"); v != "" {
		cfg.Debug = v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
	}

	// Defaults
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}
	cfg.DataDir = filepath.Clean(cfg.DataDir)
	if cfg.OpenRouterModel == "" {
		cfg.OpenRouterModel = defaultModel
	}

	if cfg.BotToken == "" {
		return Config{}, fmt.Errorf("missing bot_token (set in %s or BOT_TOKEN env)", path)
	}
	if cfg.TargetChannelID == 0 {
		return Config{}, fmt.Errorf("missing target_channel_id (set in %s or KB_TARGET_CHANNEL env)", path)
	}
	if cfg.SourceGroupID == 0 {
		return Config{}, fmt.Errorf("missing source_group_id (set in %s or KB_SOURCE_GROUP env)", path)
	}
	if len(cfg.AdminIDs) == 0 {
		return Config{}, fmt.Errorf("missing admin_ids (set in %s or KB_ADMINS env)", path)
	}
	if cfg.OpenRouterAPIKey == "" {
		return Config{}, fmt.Errorf("missing openrouter_api_key (set in %s or OPENROUTER_API_KEY env)", path)
	}
	return cfg, nil
}

// IsAdmin reports whether a user id is on the admin list.
func (c Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func parseIDList(s string) []int64 {
	var out []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err == nil {
			out = append(out, id)
		}
	}
	return out
}
