package domain

import (
	"encoding/json"
	"sort"
)

type VariantOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// VariantSelection is an unordered set of variant options. A nil and an
// empty selection both mean "no variants".
type VariantSelection []VariantOption

// Canonical returns the selection sorted by name then value with exact
// duplicates removed. The result is never nil.
func (v VariantSelection) Canonical() VariantSelection {
	out := make(VariantSelection, 0, len(v))
	out = append(out, v...)

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Value < out[j].Value
	})

	deduped := out[:0]
	for i, opt := range out {
		if i > 0 && opt == out[i-1] {
			continue
		}
		deduped = append(deduped, opt)
	}

	return deduped
}

// Key is the stable string identity of the selection, used as the cart line
// uniqueness column.
func (v VariantSelection) Key() string {
	raw, err := json.Marshal(v.Canonical())
	if err != nil {
		// a slice of string pairs always marshals
		panic(err)
	}

	return string(raw)
}

func (v VariantSelection) Equal(other VariantSelection) bool {
	return v.Key() == other.Key()
}
