package fixup

import (
	"codeberg.org/snonux/storytl/internal/chardict"
	"codeberg.org/snonux/storytl/internal/postprocess"
	"codeberg.org/snonux/storytl/internal/record"
)

// FileFunc rewrites a dialogue file in memory and returns the number of
// changed values
type FileFunc func(f *record.File) int

// DictFunc rewrites a character dictionary in memory and returns the
// number of changed values
type DictFunc func(d chardict.Dict) int

// CleanMarkers cuts the title, every name, every body and every choice at
// the first "###"
func CleanMarkers(f *record.File) int {
	changed := 0

	if title, ok := f.TargetTitle(); ok {
		if cut, ok := postprocess.TruncateAtHash(title); ok {
			f.SetTargetTitle(cut)
			changed++
		}
	}

	for _, e := range f.Entries() {
		if e == nil {
			continue
		}
		for _, field := range []record.Field{record.FieldName, record.FieldBody} {
			if value, ok := e.Target(field); ok {
				if cut, ok := postprocess.TruncateAtHash(value); ok {
					e.SetTarget(field, cut)
					changed++
				}
			}
		}
		// every choice, not only the two the pipeline fills
		for _, c := range e.Choices() {
			if c == nil {
				continue
			}
			if value, ok := c.TargetText(); ok {
				if cut, ok := postprocess.TruncateAtHash(value); ok {
					c.SetTargetText(cut)
					changed++
				}
			}
		}
	}

	return changed
}

// CleanDictMarkers cuts every value of d at the first "###"
func CleanDictMarkers(d chardict.Dict) int {
	changed := 0
	for _, charID := range d.CharIDs() {
		for _, textID := range d.TextIDs(charID) {
			if cut, ok := postprocess.TruncateAtHash(d[charID][textID]); ok {
				d[charID][textID] = cut
				changed++
			}
		}
	}
	return changed
}

// FixNames returns a FileFunc replacing entry names that exactly match a
// wrong spelling in m
func FixNames(m Map) FileFunc {
	return func(f *record.File) int {
		changed := 0
		for _, e := range f.Entries() {
			if e == nil {
				continue
			}
			name, ok := e.Target(record.FieldName)
			if !ok {
				continue
			}
			if right, ok := m.Exact(name); ok {
				e.SetTarget(record.FieldName, right)
				changed++
			}
		}
		return changed
	}
}

// FixDictNames returns a DictFunc replacing wrong spellings anywhere inside
// the values of the dictionary
func FixDictNames(m Map) DictFunc {
	return func(d chardict.Dict) int {
		changed := 0
		for _, charID := range d.CharIDs() {
			for _, textID := range d.TextIDs(charID) {
				fixed, n := m.Substitute(d[charID][textID])
				if n > 0 {
					d[charID][textID] = fixed
					changed += n
				}
			}
		}
		return changed
	}
}
