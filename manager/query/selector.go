package query

type SelectorSource byte

const (
	SelectPrimary SelectorSource = iota
	SelectLookup
)

// Selector maps one output column to the column it is copied from
type Selector struct {
	Source SelectorSource
	Column string

	Alias string
}

// resolveSelectors lists primary columns first, then lookup payload columns.
// Clashing lookup names get the suffix appended until they are unique.
func resolveSelectors(primaryColumns, lookupColumns []string, suffix string) []Selector {

	out := make([]Selector, 0, len(primaryColumns)+len(lookupColumns))
	used := make(map[string]struct{}, cap(out))

	for _, column := range primaryColumns {
		out = append(out, Selector{Source: SelectPrimary, Column: column, Alias: column})
		used[column] = struct{}{}
	}

	for _, column := range lookupColumns {
		alias := column
		for {
			if _, clash := used[alias]; !clash {
				break
			}
			alias += suffix
		}

		out = append(out, Selector{Source: SelectLookup, Column: column, Alias: alias})
		used[alias] = struct{}{}
	}

	return out
}
