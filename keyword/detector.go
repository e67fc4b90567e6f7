package keyword

import "strings"

// Detector scans transcript text for keyword table matches.
type Detector struct {
	table *Table
}

func NewDetector(table *Table) *Detector {
	return &Detector{table: table}
}

// Detect returns the distinct addresses whose keywords occur anywhere in
// text as a substring. Matching is case-insensitive and deliberately not
// whole-word: "loving" matches "love". Order of the result is unspecified.
func (d *Detector) Detect(text string) []string {
	lower := strings.ToLower(text)

	seen := make(map[string]struct{})
	var addresses []string
	for word, address := range d.table.entries {
		if !strings.Contains(lower, word) {
			continue
		}
		if _, dup := seen[address]; dup {
			continue
		}
		seen[address] = struct{}{}
		addresses = append(addresses, address)
	}
	return addresses
}
