package agentconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

const presetPrefix = "preset/"

// AgentPreset is a named, persisted template an operator selects at call
// time: provider choice, system prompt, greeting, plus optional partial
// settings overrides.
type AgentPreset struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Provider     Provider  `json:"provider,omitempty"` // speak-provider selection
	SystemPrompt string    `json:"system_prompt,omitempty"`
	Greeting     string    `json:"greeting,omitempty"`
	Active       bool      `json:"active"`
	Overrides    *Overlay  `json:"overrides,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PresetStore persists presets in the settings store under "preset/<id>".
type PresetStore struct {
	store SettingsStore
}

// NewPresetStore wraps a settings store with preset operations.
func NewPresetStore(store SettingsStore) *PresetStore {
	return &PresetStore{store: store}
}

// Save creates or updates a preset, maintaining timestamps.
func (p *PresetStore) Save(ctx context.Context, preset *AgentPreset) error {
	if preset.ID == "" {
		return &PresetError{ID: "", Reason: "missing id"}
	}

	now := time.Now().UTC()
	existing, err := p.Load(ctx, preset.ID)
	switch {
	case err == nil:
		preset.CreatedAt = existing.CreatedAt
	case errors.Is(err, ErrNotFound):
		preset.CreatedAt = now
	default:
		return err
	}
	preset.UpdatedAt = now

	raw, err := json.Marshal(preset)
	if err != nil {
		return fmt.Errorf("save preset %s: %w", preset.ID, err)
	}
	return p.store.Put(ctx, presetPrefix+preset.ID, raw)
}

// Load fetches one preset by id.
func (p *PresetStore) Load(ctx context.Context, id string) (*AgentPreset, error) {
	raw, err := p.store.Get(ctx, presetPrefix+id)
	if err != nil {
		return nil, err
	}
	var preset AgentPreset
	if err := json.Unmarshal(raw, &preset); err != nil {
		return nil, fmt.Errorf("load preset %s: %w", id, err)
	}
	return &preset, nil
}

// Delete removes a preset.
func (p *PresetStore) Delete(ctx context.Context, id string) error {
	return p.store.Delete(ctx, presetPrefix+id)
}

// List returns all presets ordered by name.
func (p *PresetStore) List(ctx context.Context) ([]*AgentPreset, error) {
	values, err := p.store.ListPrefix(ctx, presetPrefix)
	if err != nil {
		return nil, err
	}

	presets := make([]*AgentPreset, 0, len(values))
	for key, raw := range values {
		var preset AgentPreset
		if err := json.Unmarshal(raw, &preset); err != nil {
			return nil, fmt.Errorf("list presets: decode %s: %w", key, err)
		}
		presets = append(presets, &preset)
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].Name < presets[j].Name })
	return presets, nil
}
