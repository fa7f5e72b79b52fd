// Package categories holds the static category → card type mapping. The
// mapping is configuration data: adding a category is a data change, not a
// code change. It is loaded from a file (YAML, JSON or TOML, picked by
// extension) or from the embedded default.
package categories

import (
	"bytes"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/tbourn/go-card-feed/internal/domain"
)

//go:embed default.yaml
var defaultYAML []byte

// Mapping maps a category slug to its ordered, de-duplicated card types.
// A Mapping is immutable after construction and safe for concurrent use.
type Mapping struct {
	types map[string][]domain.CardType
}

// New builds a Mapping from raw slug → type lists. Slugs are lower-cased and
// trimmed; type tags are normalized and de-duplicated keeping first
// occurrence order.
func New(raw map[string][]string) *Mapping {
	m := &Mapping{types: make(map[string][]domain.CardType, len(raw))}
	for slug, list := range raw {
		slug = NormalizeSlug(slug)
		if slug == "" {
			continue
		}
		seen := make(map[domain.CardType]struct{}, len(list))
		out := make([]domain.CardType, 0, len(list))
		for _, s := range list {
			t := domain.NormalizeCardType(s)
			if t == "" {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
		m.types[slug] = out
	}
	return m
}

// Default returns the embedded mapping.
func Default() (*Mapping, error) {
	return read(bytes.NewReader(defaultYAML), "yaml")
}

// Load reads a mapping file. An empty path yields the embedded default.
func Load(path string) (*Mapping, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read category mapping %s: %w", path, err)
	}
	return decode(v)
}

func read(r *bytes.Reader, format string) (*Mapping, error) {
	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("read category mapping: %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Mapping, error) {
	var raw map[string][]string
	if err := v.UnmarshalKey("categories", &raw); err != nil {
		return nil, fmt.Errorf("decode category mapping: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("category mapping has no categories")
	}
	return New(raw), nil
}

// TypesFor returns the card types mapped to slug. An unmapped slug yields an
// empty (nil) set, which is not an error. The returned slice is a copy.
func (m *Mapping) TypesFor(slug string) []domain.CardType {
	if m == nil {
		return nil
	}
	src := m.types[NormalizeSlug(slug)]
	if len(src) == 0 {
		return nil
	}
	out := make([]domain.CardType, len(src))
	copy(out, src)
	return out
}

// Slugs returns the mapped category slugs in sorted order.
func (m *Mapping) Slugs() []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.types))
	for s := range m.types {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// NormalizeSlug is the canonical form of a category slug: trimmed and lower
// case. Mapping keys and category lookups both use it.
func NormalizeSlug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
