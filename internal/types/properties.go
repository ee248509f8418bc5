package types

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// NameValue is one entry of the framework's flat property list.
type NameValue struct {
	Name  string `json:"name"  yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Properties is an insertion-ordered string mapping. A nil *Properties reads
// as empty.
type Properties struct {
	m *orderedmap.OrderedMap[string, string]
}

func NewProperties(pairs ...NameValue) *Properties {
	p := &Properties{m: orderedmap.New[string, string]()}
	for _, pair := range pairs {
		p.m.Set(pair.Name, pair.Value)
	}
	return p
}

func (p *Properties) Get(key string) (string, bool) {
	if p == nil || p.m == nil {
		return "", false
	}
	return p.m.Get(key)
}

func (p *Properties) Value(key string) string {
	value, _ := p.Get(key)
	return value
}

func (p *Properties) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Set adds or replaces key. Replacing keeps the original position.
func (p *Properties) Set(key string, value string) {
	if p.m == nil {
		p.m = orderedmap.New[string, string]()
	}
	p.m.Set(key, value)
}

// SetDefault sets key only when it is absent.
func (p *Properties) SetDefault(key string, value string) {
	if !p.Has(key) {
		p.Set(key, value)
	}
}

func (p *Properties) Len() int {
	if p == nil || p.m == nil {
		return 0
	}
	return p.m.Len()
}

func (p *Properties) Keys() []string {
	keys := make([]string, 0, p.Len())
	for _, pair := range p.Pairs() {
		keys = append(keys, pair.Name)
	}
	return keys
}

func (p *Properties) Pairs() []NameValue {
	if p == nil || p.m == nil {
		return []NameValue{}
	}
	pairs := make([]NameValue, 0, p.m.Len())
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		pairs = append(pairs, NameValue{Name: pair.Key, Value: pair.Value})
	}
	return pairs
}

func (p *Properties) Clone() *Properties {
	return NewProperties(p.Pairs()...)
}

// Equal compares keys, values and order.
func (p *Properties) Equal(other *Properties) bool {
	left, right := p.Pairs(), other.Pairs()
	if len(left) != len(right) {
		return false
	}
	for i := range left {
		if left[i] != right[i] {
			return false
		}
	}
	return true
}

func (p *Properties) UnmarshalYAML(node *yaml.Node) error {
	m := orderedmap.New[string, string]()
	if err := m.UnmarshalYAML(node); err != nil {
		return err
	}
	p.m = m
	return nil
}

func (p *Properties) MarshalYAML() (interface{}, error) {
	if p == nil || p.m == nil {
		return map[string]string{}, nil
	}
	return p.m.MarshalYAML()
}
