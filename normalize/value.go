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

// Package normalize maps JSON-RPC results from different client stacks onto one
// canonical form so they can be compared.
package normalize

import (
	"fmt"
	"math/big"

	"github.com/rsksmart/rpcsmoke/jsonrpc"
)

// Kind selects how a raw result is interpreted.
type Kind int

const (
	Opaque     Kind = iota // structural JSON tree
	Quantity               // unsigned integer
	ByteString             // hex encoded bytes
	Code                   // contract code, where all-zero code means none
	Boolean
)

func (k Kind) String() string {
	switch k {
	case Opaque:
		return "opaque"
	case Quantity:
		return "quantity"
	case ByteString:
		return "bytes"
	case Code:
		return "code"
	case Boolean:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a normalized result. Exactly one of Int, Bytes, Bool or Tree is
// meaningful, depending on Kind, unless Absent is set.
type Value struct {
	Kind   Kind
	Absent bool
	Int    *big.Int
	Bytes  string // lowercase, 0x prefixed, even length
	Bool   bool
	Tree   any // maps, slices, strings, json.Number, bool, nil
}

// AbsentValue is the normalized form of a JSON null.
func AbsentValue(kind Kind) Value {
	return Value{Kind: kind, Absent: true}
}

func (v Value) String() string {
	if v.Absent {
		return "<absent>"
	}
	switch v.Kind {
	case Quantity:
		if v.Int == nil {
			return "<nil>"
		}
		return v.Int.String()
	case ByteString, Code:
		return v.Bytes
	case Boolean:
		if v.Bool {
			return "true"
		}
		return "false"
	default:
		b, err := jsonrpc.Encode(v.Tree)
		if err != nil {
			return fmt.Sprintf("%v", v.Tree)
		}
		return string(b)
	}
}

// Field returns a top-level member of an Opaque object.
func (v Value) Field(name string) (any, bool) {
	m, ok := v.Tree.(map[string]any)
	if !ok {
		return nil, false
	}
	f, ok := m[name]
	return f, ok
}

// Len returns the length of an Opaque array, or -1 for anything else.
func (v Value) Len() int {
	if s, ok := v.Tree.([]any); ok {
		return len(s)
	}
	return -1
}

// Normalize canonicalizes raw according to kind. A nil raw value yields the
// absent sentinel for every kind.
func Normalize(raw any, kind Kind) (Value, error) {
	if isNil(raw) {
		return AbsentValue(kind), nil
	}
	switch kind {
	case Quantity:
		n, err := toQuantity(raw)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: kind, Int: n}, nil
	case ByteString:
		s, err := toByteString(raw)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: kind, Bytes: s}, nil
	case Code:
		s, err := toByteString(raw)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: kind, Bytes: stripEmptyCode(s)}, nil
	case Boolean:
		b, err := toBool(raw)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: kind, Bool: b}, nil
	case Opaque:
		t, err := toTree(raw)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: kind, Tree: t}, nil
	default:
		return Value{}, fmt.Errorf("unknown kind %v", kind)
	}
}

// MustQuantity builds a Quantity value from a decimal or hex literal. It panics on
// malformed input and is meant for expected values known at compile time.
func MustQuantity(s string) Value {
	v, err := Normalize(s, Quantity)
	if err != nil {
		panic(err)
	}
	return v
}
