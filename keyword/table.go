package keyword

import (
	"fmt"
	"sort"
	"strings"
)

// Table is an immutable many-to-one mapping from surface-form keywords to
// OSC addresses. Several synonyms usually share one address.
type Table struct {
	entries map[string]string
}

// NewTable builds a table from surface-form → address pairs. Surface forms
// are lowercased; addresses must be OSC paths.
func NewTable(entries map[string]string) (*Table, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("keyword table is empty")
	}
	m := make(map[string]string, len(entries))
	for word, address := range entries {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			return nil, fmt.Errorf("empty keyword for address %q", address)
		}
		if !strings.HasPrefix(address, "/") {
			return nil, fmt.Errorf("keyword %q: address %q is not an OSC path", word, address)
		}
		m[word] = address
	}
	return &Table{entries: m}, nil
}

func (t *Table) Len() int {
	return len(t.entries)
}

// Lookup returns the address for a surface form, case-insensitively.
func (t *Table) Lookup(word string) (string, bool) {
	address, ok := t.entries[strings.ToLower(word)]
	return address, ok
}

// Entries returns a copy of the surface-form → address mapping.
func (t *Table) Entries() map[string]string {
	m := make(map[string]string, len(t.entries))
	for word, address := range t.entries {
		m[word] = address
	}
	return m
}

// Addresses returns the distinct addresses in the table, sorted.
func (t *Table) Addresses() []string {
	seen := make(map[string]struct{}, len(t.entries))
	for _, address := range t.entries {
		seen[address] = struct{}{}
	}
	addresses := make([]string, 0, len(seen))
	for address := range seen {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)
	return addresses
}

// Words returns the surface forms mapping to the given address, sorted.
func (t *Table) Words(address string) []string {
	var words []string
	for word, a := range t.entries {
		if a == address {
			words = append(words, word)
		}
	}
	sort.Strings(words)
	return words
}

// DefaultTable returns the built-in keyword groups.
func DefaultTable() *Table {
	t, err := NewTable(map[string]string{
		// love / affection
		"love":       "/keyword/love",
		"adore":      "/keyword/love",
		"cherish":    "/keyword/love",
		"enjoy":      "/keyword/love",
		"appreciate": "/keyword/love",
		"treasure":   "/keyword/love",

		// hate / negativity
		"hate":    "/keyword/hate",
		"despise": "/keyword/hate",
		"detest":  "/keyword/hate",
		"loathe":  "/keyword/hate",
		"dislike": "/keyword/hate",

		// stop / end
		"stop":  "/keyword/stop",
		"halt":  "/keyword/stop",
		"cease": "/keyword/stop",
		"end":   "/keyword/stop",
		"quit":  "/keyword/stop",
		"pause": "/keyword/stop",

		// death / dying
		"die":    "/keyword/die",
		"death":  "/keyword/die",
		"dead":   "/keyword/die",
		"kill":   "/keyword/die",
		"killed": "/keyword/die",
		"dying":  "/keyword/die",

		// light / brightness
		"light":      "/keyword/light",
		"bright":     "/keyword/light",
		"shine":      "/keyword/light",
		"glow":       "/keyword/light",
		"illuminate": "/keyword/light",
		"sunny":      "/keyword/light",
		"radiant":    "/keyword/light",

		// dark / darkness
		"dark":     "/keyword/dark",
		"darkness": "/keyword/dark",
		"shadow":   "/keyword/dark",
		"black":    "/keyword/dark",
		"dim":      "/keyword/dark",
		"night":    "/keyword/dark",

		// speed
		"slow":   "/keyword/slow",
		"slowly": "/keyword/slow",

		// emotions
		"happy":     "/keyword/happy",
		"joy":       "/keyword/happy",
		"joyful":    "/keyword/happy",
		"glad":      "/keyword/happy",
		"delighted": "/keyword/happy",
		"pleased":   "/keyword/happy",
		"cheerful":  "/keyword/happy",

		"sad":        "/keyword/sad",
		"sorrow":     "/keyword/sad",
		"grief":      "/keyword/sad",
		"melancholy": "/keyword/sad",
		"unhappy":    "/keyword/sad",
		"depressed":  "/keyword/sad",

		"angry":   "/keyword/angry",
		"anger":   "/keyword/angry",
		"mad":     "/keyword/angry",
		"furious": "/keyword/angry",
		"rage":    "/keyword/angry",
		"upset":   "/keyword/angry",

		"fear":       "/keyword/fear",
		"afraid":     "/keyword/fear",
		"scared":     "/keyword/fear",
		"terror":     "/keyword/fear",
		"frightened": "/keyword/fear",
		"anxiety":    "/keyword/fear",
	})
	if err != nil {
		panic(err) // static table, cannot fail
	}
	return t
}
