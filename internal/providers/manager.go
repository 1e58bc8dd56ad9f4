package providers

import (
	"fmt"
	"log"
)

// Manager holds the ordered pool of chat providers built from the
// LEGISENSE_LLM_PROVIDERS spec. Pipelines walk the pool in order and fail
// over on quota or rate errors.
type Manager struct {
	providers []ChatProvider
	refs      []ProviderRef
}

func NewManager(spec string) (*Manager, error) {
	refs := ParseProviderList(spec)
	m := &Manager{}
	for _, ref := range refs {
		switch ref.Name {
		case "mock":
			m.providers = append(m.providers, NewMockProvider())
		case "openrouter":
			m.providers = append(m.providers, NewOpenRouterProvider(ref.KeyAlias))
		default:
			return nil, fmt.Errorf("unknown provider %q in provider list", ref.Name)
		}
		m.refs = append(m.refs, ref)
	}
	log.Printf("provider pool: %d configured", len(m.providers))
	return m, nil
}

func (m *Manager) Count() int { return len(m.providers) }

func (m *Manager) First() ChatProvider {
	if len(m.providers) == 0 {
		return NewMockProvider()
	}
	return m.providers[0]
}

func (m *Manager) ByIndex(i int) (ChatProvider, error) {
	if i < 0 || i >= len(m.providers) {
		return nil, fmt.Errorf("provider index %d out of range (have %d)", i, len(m.providers))
	}
	return m.providers[i], nil
}

func (m *Manager) Refs() []ProviderRef { return m.refs }
