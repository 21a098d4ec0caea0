package models

// Codex is the title-keyed lore collection of a playthrough, in arrival order.
type Codex []CodexEntry

// Merge returns the codex with every entry whose title is not already known
// appended in order. Duplicates inside entries are collapsed to the first.
func (c Codex) Merge(entries ...CodexEntry) Codex {
	seen := make(map[string]struct{}, len(c)+len(entries))
	for _, e := range c {
		seen[e.Title] = struct{}{}
	}
	out := make(Codex, len(c), len(c)+len(entries))
	copy(out, c)
	for _, e := range entries {
		if _, ok := seen[e.Title]; ok {
			continue
		}
		seen[e.Title] = struct{}{}
		out = append(out, e)
	}
	return out
}

// Newest returns a copy of the codex with the latest entries first.
func (c Codex) Newest() []CodexEntry {
	out := make([]CodexEntry, len(c))
	for i, e := range c {
		out[len(c)-1-i] = e
	}
	return out
}
