package document

// Entry is one key/value pair of document metadata.
type Entry struct {
	Key   string
	Value string
}

// Metadata is an insertion-ordered string map. The zero value is empty and
// ready to use. Setting an existing key replaces its value but keeps its
// original position.
type Metadata struct {
	keys   []string
	values map[string]string
}

func (m *Metadata) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m Metadata) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m Metadata) Len() int { return len(m.keys) }

// Entries returns the pairs in insertion order.
func (m Metadata) Entries() []Entry {
	out := make([]Entry, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, Entry{Key: k, Value: m.values[k]})
	}
	return out
}
