package translation

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"horse.fit/easydict/internal/backend"
	"horse.fit/easydict/internal/config"
	"horse.fit/easydict/internal/language"
)

// Registry stores translation providers in dispatch priority order.
type Registry struct {
	providers map[backend.ID]Provider
	order     []backend.ID
}

func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[backend.ID]Provider),
	}
}

// NewRegistryFromConfig builds the providers named in EASYDICT_PROVIDERS.
// A provider whose credentials are missing is skipped with a warning.
func NewRegistryFromConfig(cfg *config.Config, languages *language.Registry, client *http.Client, logger zerolog.Logger) (*Registry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	registry := NewRegistry()
	for _, name := range cfg.ProviderList() {
		id := backend.Parse(name)
		provider, err := NewProvider(id, cfg, languages, client)
		if errors.Is(err, ErrMissingCredentials) {
			logger.Warn().Str("provider", string(id)).Msg("provider credentials are not configured; skipping")
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := registry.Register(provider); err != nil {
			return nil, err
		}
	}
	if registry.Len() == 0 {
		return nil, fmt.Errorf("no translation providers are configured (requested: %s)", cfg.Providers)
	}
	return registry, nil
}

// NewProvider builds one provider from configuration. It returns
// ErrMissingCredentials when the backend needs keys that are not set.
func NewProvider(id backend.ID, cfg *config.Config, languages *language.Registry, client *http.Client) (Provider, error) {
	switch id {
	case backend.Youdao:
		return NewYoudaoProvider(YoudaoConfig{AppKey: cfg.YoudaoAppKey, AppSecret: cfg.YoudaoAppSecret, Client: client})
	case backend.Iciba:
		return NewIcibaProvider(IcibaConfig{Key: cfg.IcibaKey, Client: client})
	case backend.Baidu:
		return NewBaiduProvider(BaiduConfig{AppID: cfg.BaiduAppID, Secret: cfg.BaiduSecret, Client: client})
	case backend.Tencent:
		return NewTencentProvider(TencentConfig{
			SecretID:  cfg.TencentSecretID,
			SecretKey: cfg.TencentSecretKey,
			Region:    cfg.TencentRegion,
			Client:    client,
		})
	case backend.Caiyun:
		return NewCaiyunProvider(CaiyunConfig{Token: cfg.CaiyunToken, Client: client})
	case backend.Google:
		return NewGoogleProvider(GoogleConfig{Client: client}), nil
	case backend.Local:
		return NewLocalProvider(LocalConfig{
			Endpoint:  cfg.TranslationEndpoint,
			Model:     cfg.TranslationModel,
			Languages: languages,
			Client:    client,
		}), nil
	default:
		return nil, fmt.Errorf("%q is not a translation provider", id)
	}
}

// Register adds one provider. Registering the same name twice is an error.
func (r *Registry) Register(provider Provider) error {
	if r == nil {
		return fmt.Errorf("registry is nil")
	}
	if provider == nil {
		return fmt.Errorf("provider is nil")
	}
	name := provider.Name()
	if strings.TrimSpace(string(name)) == "" {
		return fmt.Errorf("provider name is required")
	}
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider %q is already registered", name)
	}
	r.providers[name] = provider
	r.order = append(r.order, name)
	return nil
}

// Provider resolves a provider by name.
func (r *Registry) Provider(name string) (Provider, error) {
	if r == nil {
		return nil, fmt.Errorf("registry is nil")
	}
	provider, ok := r.providers[backend.ID(normalizeProviderName(name))]
	if ok {
		return provider, nil
	}
	available := "none"
	if len(r.order) > 0 {
		available = strings.Join(r.ProviderNames(), ", ")
	}
	return nil, fmt.Errorf("%w: %q (available: %s)", ErrProviderNotRegistered, name, available)
}

// Providers returns providers in registration order.
func (r *Registry) Providers() []Provider {
	if r == nil {
		return nil
	}
	providers := make([]Provider, 0, len(r.order))
	for _, name := range r.order {
		providers = append(providers, r.providers[name])
	}
	return providers
}

// Only returns a registry restricted to the named providers, keeping order.
func (r *Registry) Only(names ...string) (*Registry, error) {
	restricted := NewRegistry()
	for _, name := range names {
		provider, err := r.Provider(name)
		if err != nil {
			return nil, err
		}
		if err := restricted.Register(provider); err != nil {
			return nil, err
		}
	}
	return restricted, nil
}

func (r *Registry) ProviderNames() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.order))
	for _, name := range r.order {
		names = append(names, string(name))
	}
	return names
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

func normalizeProviderName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
