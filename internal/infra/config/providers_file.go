// internal/infra/config/providers_file.go
package config

import (
	"fmt"
	"os"
	"time"

	"tg_checkin_bot/internal/domain/checkin"

	"gopkg.in/yaml.v3"
)

// providerOverride is the yaml shape for tweaking one built-in provider.
// Only the simple knobs are overridable; parse rules stay in code.
type providerOverride struct {
	Chat            string   `yaml:"chat"`
	Bot             string   `yaml:"bot"`
	Command         string   `yaml:"command"`
	FollowupCommand string   `yaml:"followup_command"`
	SettleSeconds   int      `yaml:"settle_seconds"`
	ScanWindow      int      `yaml:"scan_window"`
	SuccessKeywords []string `yaml:"success_keywords"`
	AlreadyKeywords []string `yaml:"already_keywords"`
}

// ApplyProviderOverrides merges overrides from a yaml file into the provider
// table. Unknown provider names in the file are an error so typos surface at
// startup rather than as silently skipped bots.
func ApplyProviderOverrides(path string, providers []checkin.Provider) ([]checkin.Provider, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read providers file: %w", err)
	}

	overrides := make(map[string]providerOverride)
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("parse providers file: %w", err)
	}

	byName := make(map[string]int, len(providers))
	for i, p := range providers {
		byName[p.Name] = i
	}

	for name, o := range overrides {
		i, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("providers file references unknown provider %q", name)
		}
		p := &providers[i]
		if o.Chat != "" {
			p.Chat = o.Chat
		}
		if o.Bot != "" {
			p.Bot = o.Bot
		}
		if o.Command != "" {
			p.Command = o.Command
		}
		if o.FollowupCommand != "" {
			p.FollowupCommand = o.FollowupCommand
		}
		if o.SettleSeconds > 0 {
			p.Settle = time.Duration(o.SettleSeconds) * time.Second
		}
		if o.ScanWindow > 0 {
			p.ScanWindow = o.ScanWindow
		}
		if len(o.SuccessKeywords) > 0 {
			p.SuccessKeywords = o.SuccessKeywords
		}
		if len(o.AlreadyKeywords) > 0 {
			p.AlreadyKeywords = o.AlreadyKeywords
		}
	}
	return providers, nil
}
