package model

// StringTable interns event names. It is append-only: ids handed out stay
// valid for the lifetime of the table. Index 0 is always the empty string.
//
// StringTable is not safe for concurrent writes; concurrent readers are fine
// once the table has been populated.
type StringTable struct {
	Dict    map[string]StringID
	Strings []string
}

func NewStringTable() *StringTable {
	var empty string
	return &StringTable{
		Dict:    map[string]StringID{empty: 0},
		Strings: []string{empty},
	}
}

func (t *StringTable) Len() int {
	return len(t.Strings)
}

// Put returns the id of s, adding it to the table if needed.
func (t *StringTable) Put(s string) StringID {
	if i, ok := t.Dict[s]; ok {
		return i
	}
	i := StringID(len(t.Strings))
	t.Strings = append(t.Strings, s)
	t.Dict[s] = i
	return i
}

// Lookup returns the string for id, or an empty string if the id is unknown.
func (t *StringTable) Lookup(i StringID) string {
	if i < 0 || int(i) >= len(t.Strings) {
		return ""
	}
	return t.Strings[i]
}
