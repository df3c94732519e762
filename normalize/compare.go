// Copyright 2024 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

package normalize

import (
	"reflect"
	"slices"

	"github.com/kylelemons/godebug/pretty"
)

// Compare narrows the comparison of Opaque values. Field filters apply to a
// top-level object and to objects that are elements of a top-level array.
type Compare struct {
	Only       []string        // compare only these fields, when set
	Ignore     []string        // never compare these fields
	FieldKinds map[string]Kind // fields re-normalized before comparison
}

func (c Compare) empty() bool {
	return len(c.Only) == 0 && len(c.Ignore) == 0 && len(c.FieldKinds) == 0
}

// Equal reports whether a and b denote the same logical value.
func Equal(a, b Value, c Compare) bool {
	if a.Absent || b.Absent {
		return a.Absent == b.Absent
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Quantity:
		return a.Int != nil && b.Int != nil && a.Int.Cmp(b.Int) == 0
	case ByteString, Code:
		return a.Bytes == b.Bytes
	case Boolean:
		return a.Bool == b.Bool
	default:
		return reflect.DeepEqual(subset(a.Tree, c), subset(b.Tree, c))
	}
}

// Diff renders the difference between a and b, or "" when they are equal.
func Diff(a, b Value, c Compare) string {
	if Equal(a, b, c) {
		return ""
	}
	if a.Kind == Opaque && b.Kind == Opaque && !a.Absent && !b.Absent {
		return pretty.Compare(subset(a.Tree, c), subset(b.Tree, c))
	}
	return pretty.Compare(a.String(), b.String())
}

// subset returns the subset of tree that takes part in the comparison.
func subset(tree any, c Compare) any {
	if c.empty() {
		return tree
	}
	switch v := tree.(type) {
	case map[string]any:
		return filterObject(v, c)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			if m, ok := e.(map[string]any); ok {
				out[i] = filterObject(m, c)
			} else {
				out[i] = e
			}
		}
		return out
	default:
		return tree
	}
}

func filterObject(m map[string]any, c Compare) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if len(c.Only) > 0 && !slices.Contains(c.Only, k) {
			continue
		}
		if slices.Contains(c.Ignore, k) {
			continue
		}
		out[k] = canonicalField(v, c.FieldKinds[k])
	}
	return out
}

// canonicalField re-normalizes a field when a kind is configured for it. Values
// that do not normalize are kept as they are, so they still show up in a diff.
func canonicalField(v any, kind Kind) any {
	if kind == Opaque {
		return v
	}
	nv, err := Normalize(v, kind)
	if err != nil {
		return v
	}
	return nv.String()
}
