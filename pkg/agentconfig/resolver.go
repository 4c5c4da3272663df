package agentconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	globalSettingsKey = "global"
	globalCacheKey    = "global-settings"
)

// GlobalSettings is the operator's saved provider configuration. It carries
// the master API key for the default provider plus an optional overlay of
// per-section settings.
type GlobalSettings struct {
	DefaultAPIKey string `json:"default_api_key,omitempty"`
	Overlay
}

// Resolver merges the four configuration layers into one call-ready
// AgentSettings. It has no side effects beyond a single read of the global
// settings from the store when the caller does not pass them explicitly.
type Resolver struct {
	store   SettingsStore
	presets *PresetStore
	cache   *gocache.Cache
	log     *zap.Logger
}

// NewResolver creates a resolver over the given settings store. Global
// settings fetched from the store are cached for cacheTTL; the store is
// read-mostly so a short TTL keeps per-call reads off the hot path.
func NewResolver(store SettingsStore, cacheTTL time.Duration, log *zap.Logger) *Resolver {
	return &Resolver{
		store:   store,
		presets: NewPresetStore(store),
		cache:   gocache.New(cacheTTL, 2*cacheTTL),
		log:     log,
	}
}

// Presets exposes the preset operations backed by the same store.
func (r *Resolver) Presets() *PresetStore { return r.presets }

// Resolve merges, lowest to highest precedence: compiled-in defaults, global
// provider settings (fetched from the store when global is nil), the named
// preset, and call-time overrides. It fails closed: no settings object is
// returned unless every active provider section carries a credential.
func (r *Resolver) Resolve(ctx context.Context, global *GlobalSettings, presetID string, overrides *Overlay) (AgentSettings, error) {
	out := defaultSettings()

	if global == nil {
		var err error
		global, err = r.globalSettings(ctx)
		if err != nil {
			return AgentSettings{}, err
		}
	}

	applyGlobal(global, &out)

	if presetID != "" {
		preset, err := r.presets.Load(ctx, presetID)
		if errors.Is(err, ErrNotFound) {
			return AgentSettings{}, &PresetError{ID: presetID, Reason: "not found"}
		}
		if err != nil {
			return AgentSettings{}, err
		}
		if !preset.Active {
			return AgentSettings{}, &PresetError{ID: presetID, Reason: "inactive"}
		}
		applyPreset(preset, &out)
	}

	overrides.apply(&out)

	if err := out.Validate(); err != nil {
		return AgentSettings{}, err
	}
	return out, nil
}

// SaveGlobalSettings persists the operator's global provider settings and
// drops the cached copy.
func (r *Resolver) SaveGlobalSettings(ctx context.Context, global *GlobalSettings) error {
	raw, err := json.Marshal(global)
	if err != nil {
		return fmt.Errorf("save global settings: %w", err)
	}
	if err := r.store.Put(ctx, globalSettingsKey, raw); err != nil {
		return err
	}
	r.cache.Delete(globalCacheKey)
	return nil
}

// globalSettings returns the saved global settings, reading through the
// cache. Absent settings resolve to an empty layer; validation catches the
// missing credentials downstream.
func (r *Resolver) globalSettings(ctx context.Context) (*GlobalSettings, error) {
	if v, ok := r.cache.Get(globalCacheKey); ok {
		gs := v.(GlobalSettings)
		return &gs, nil
	}

	raw, err := r.store.Get(ctx, globalSettingsKey)
	if errors.Is(err, ErrNotFound) {
		r.log.Debug("no global provider settings saved")
		return &GlobalSettings{}, nil
	}
	if err != nil {
		return nil, err
	}

	var gs GlobalSettings
	if err := json.Unmarshal(raw, &gs); err != nil {
		return nil, fmt.Errorf("decode global settings: %w", err)
	}
	r.cache.SetDefault(globalCacheKey, gs)
	return &gs, nil
}

// applyGlobal layers the operator settings onto out. The master key fills the
// default provider's sections only where no key is set yet; the overlay then
// applies field by field.
func applyGlobal(global *GlobalSettings, out *AgentSettings) {
	if global == nil {
		return
	}
	if key := global.DefaultAPIKey; key != "" {
		if out.Listen.Provider == ProviderDeepgram && out.Listen.Deepgram != nil && out.Listen.Deepgram.APIKey == "" {
			out.Listen.Deepgram.APIKey = key
		}
		if out.Speak.Provider == ProviderDeepgram && out.Speak.Deepgram != nil && out.Speak.Deepgram.APIKey == "" {
			out.Speak.Deepgram.APIKey = key
		}
	}
	global.Overlay.apply(out)
}

// applyPreset layers a preset onto out: provider selection, prompt and
// greeting first, then the preset's own overrides.
func applyPreset(preset *AgentPreset, out *AgentSettings) {
	if preset.Provider != "" {
		provider := preset.Provider
		(&SpeakOverlay{Provider: &provider}).apply(&out.Speak)
	}
	if preset.SystemPrompt != "" {
		out.Think.Prompt = preset.SystemPrompt
	}
	if preset.Greeting != "" {
		out.Greeting = preset.Greeting
	}
	preset.Overrides.apply(out)
}
