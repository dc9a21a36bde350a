package http

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Values is an ordered multi-value mapping used for both headers and query
// parameters. Keys keep the order in which they were first seen and every key
// carries an ordered list of values; a scalar is just a one-element list.
//
// Header mappings (NewHeader) match names case-insensitively but keep the
// spelling of the first occurrence. Query mappings (NewQuery) are exact.
type Values struct {
	entries  *orderedmap.OrderedMap[string, []string]
	foldCase bool
}

// NewHeader returns an empty header mapping.
func NewHeader() *Values {
	return &Values{entries: orderedmap.New[string, []string](), foldCase: true}
}

// NewQuery returns an empty query parameter mapping.
func NewQuery() *Values {
	return &Values{entries: orderedmap.New[string, []string]()}
}

// HeaderFrom builds a header mapping from name/value pairs in order.
// Repeated names accumulate.
func HeaderFrom(pairs ...string) *Values {
	h := NewHeader()
	for i := 0; i+1 < len(pairs); i += 2 {
		h.Add(pairs[i], pairs[i+1])
	}
	return h
}

func (v *Values) lookup(name string) (string, bool) {
	if v == nil || v.entries == nil {
		return "", false
	}
	if _, ok := v.entries.Get(name); ok {
		return name, true
	}
	if !v.foldCase {
		return "", false
	}
	for pair := v.entries.Oldest(); pair != nil; pair = pair.Next() {
		if strings.EqualFold(pair.Key, name) {
			return pair.Key, true
		}
	}
	return "", false
}

// Add appends values to name, creating it if needed.
func (v *Values) Add(name string, values ...string) {
	if v.entries == nil {
		v.entries = orderedmap.New[string, []string]()
	}
	if key, ok := v.lookup(name); ok {
		existing, _ := v.entries.Get(key)
		v.entries.Set(key, append(existing, values...))
		return
	}
	v.entries.Set(name, append([]string(nil), values...))
}

// Set replaces every value of name. For headers, a differently-cased existing
// entry is dropped and the new spelling is kept at the end.
func (v *Values) Set(name string, values ...string) {
	if v.entries == nil {
		v.entries = orderedmap.New[string, []string]()
	}
	if key, ok := v.lookup(name); ok && key != name {
		v.entries.Delete(key)
	}
	v.entries.Set(name, append([]string(nil), values...))
}

// Del removes name.
func (v *Values) Del(name string) {
	if key, ok := v.lookup(name); ok {
		v.entries.Delete(key)
	}
}

// Values returns the values stored for name, nil when absent.
func (v *Values) Values(name string) []string {
	key, ok := v.lookup(name)
	if !ok {
		return nil
	}
	values, _ := v.entries.Get(key)
	return values
}

// Get returns all values of name joined with ", ".
func (v *Values) Get(name string) string {
	return strings.Join(v.Values(name), ", ")
}

// Len returns the number of distinct keys.
func (v *Values) Len() int {
	if v == nil || v.entries == nil {
		return 0
	}
	return v.entries.Len()
}

// Keys returns the keys in first-seen order.
func (v *Values) Keys() []string {
	if v.Len() == 0 {
		return nil
	}
	keys := make([]string, 0, v.entries.Len())
	for pair := v.entries.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Merge sets every key of other onto v, so other wins on collisions.
func (v *Values) Merge(other *Values) {
	for _, key := range other.Keys() {
		v.Set(key, other.Values(key)...)
	}
}

// MultiValue returns a copy as a plain map, nil when empty.
func (v *Values) MultiValue() map[string][]string {
	if v.Len() == 0 {
		return nil
	}
	out := make(map[string][]string, v.entries.Len())
	for pair := v.entries.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = append([]string(nil), pair.Value...)
	}
	return out
}

// SingleValue returns a map holding the last value of each key, nil when
// empty.
func (v *Values) SingleValue() map[string]string {
	if v.Len() == 0 {
		return nil
	}
	out := make(map[string]string, v.entries.Len())
	for pair := v.entries.Oldest(); pair != nil; pair = pair.Next() {
		if n := len(pair.Value); n > 0 {
			out[pair.Key] = pair.Value[n-1]
		} else {
			out[pair.Key] = ""
		}
	}
	return out
}
