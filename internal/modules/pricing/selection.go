package pricing

import "strings"

// Selection is an ordered set of distinct course ids. It is a value: changes
// produce a new Selection rather than mutating one that may be shared.
type Selection struct {
	ids []string
}

// NewSelection keeps the first occurrence of each id and drops blanks.
func NewSelection(ids ...string) Selection {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return Selection{ids: out}
}

func (s Selection) IDs() []string { return append([]string(nil), s.ids...) }

func (s Selection) Len() int { return len(s.ids) }

func (s Selection) Empty() bool { return len(s.ids) == 0 }

func (s Selection) Contains(id string) bool {
	for _, have := range s.ids {
		if have == id {
			return true
		}
	}
	return false
}
