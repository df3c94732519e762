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
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"github.com/rsksmart/rpcsmoke/jsonrpc"
)

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func toQuantity(raw any) (*big.Int, error) {
	bad := func(reason string) error { return &MalformedQuantityError{Raw: raw, Reason: reason} }
	switch v := raw.(type) {
	case string:
		return parseQuantity(v, raw)
	case json.Number:
		return parseQuantity(string(v), raw)
	case *big.Int:
		if v.Sign() < 0 {
			return nil, bad("negative")
		}
		return new(big.Int).Set(v), nil
	case big.Int:
		return toQuantity(&v)
	case *hexutil.Big:
		return toQuantity((*big.Int)(v))
	case hexutil.Big:
		return toQuantity((*big.Int)(&v))
	case hexutil.Uint64:
		return new(big.Int).SetUint64(uint64(v)), nil
	case *hexutil.Uint64:
		return new(big.Int).SetUint64(uint64(*v)), nil
	case hexutil.Uint:
		return new(big.Int).SetUint64(uint64(v)), nil
	case *uint256.Int:
		return v.ToBig(), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case uint:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case int:
		return signed(int64(v), raw)
	case int64:
		return signed(v, raw)
	case int32:
		return signed(int64(v), raw)
	case float64:
		if v < 0 || v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, bad("not a non-negative integer")
		}
		n, _ := big.NewFloat(v).Int(nil)
		return n, nil
	default:
		return nil, bad(fmt.Sprintf("unsupported type %T", raw))
	}
}

func signed(v int64, raw any) (*big.Int, error) {
	if v < 0 {
		return nil, &MalformedQuantityError{Raw: raw, Reason: "negative"}
	}
	return big.NewInt(v), nil
}

// parseQuantity accepts 0x-prefixed hex with or without leading zeros, or plain
// decimal digits.
func parseQuantity(s string, raw any) (*big.Int, error) {
	bad := func(reason string) error { return &MalformedQuantityError{Raw: raw, Reason: reason} }
	if s == "" {
		return nil, bad("empty")
	}
	base, digits := 10, s
	if has0xPrefix(s) {
		base, digits = 16, s[2:]
		if digits == "" {
			return nil, bad("no hex digits")
		}
	}
	for _, c := range digits {
		if !isDigit(c, base) {
			return nil, bad(fmt.Sprintf("invalid character %q", c))
		}
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, bad("not an integer")
	}
	return n, nil
}

func isDigit(c rune, base int) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case base == 16 && (c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'):
		return true
	}
	return false
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func toByteString(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return canonicalHex(v, raw)
	case []byte:
		return "0x" + hex.EncodeToString(v), nil
	case hexutil.Bytes:
		return "0x" + hex.EncodeToString(v), nil
	case common.Hash:
		return "0x" + hex.EncodeToString(v[:]), nil
	case *common.Hash:
		return "0x" + hex.EncodeToString(v[:]), nil
	case common.Address:
		return "0x" + hex.EncodeToString(v[:]), nil
	case *common.Address:
		return "0x" + hex.EncodeToString(v[:]), nil
	default:
		return "", &MalformedByteStringError{Raw: raw, Reason: fmt.Sprintf("unsupported type %T", raw)}
	}
}

func canonicalHex(s string, raw any) (string, error) {
	if !has0xPrefix(s) {
		return "", &MalformedByteStringError{Raw: raw, Reason: "missing 0x prefix"}
	}
	digits := strings.ToLower(s[2:])
	for _, c := range digits {
		if !isDigit(c, 16) {
			return "", &MalformedByteStringError{Raw: raw, Reason: fmt.Sprintf("invalid character %q", c)}
		}
	}
	if len(digits)%2 == 1 {
		digits = "0" + digits
	}
	return "0x" + digits, nil
}

// stripEmptyCode maps code made only of zero bytes to the empty byte string.
func stripEmptyCode(s string) string {
	if strings.Trim(s[2:], "0") == "" {
		return "0x"
	}
	return s
}

func toBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil || (v != "true" && v != "false") {
			return false, fmt.Errorf("malformed boolean %q", v)
		}
		return b, nil
	default:
		return false, fmt.Errorf("malformed boolean of type %T", raw)
	}
}

// toTree converts raw into the generic JSON tree. Values that are already trees
// are copied with numbers turned into json.Number; anything else goes through
// its JSON encoding.
func toTree(raw any) (any, error) {
	switch v := raw.(type) {
	case nil, string, bool, json.Number:
		return v, nil
	case float64:
		return json.Number(strconv.FormatFloat(v, 'f', -1, 64)), nil
	case int:
		return json.Number(strconv.Itoa(v)), nil
	case int64:
		return json.Number(strconv.FormatInt(v, 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(v, 10)), nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			t, err := toTree(e)
			if err != nil {
				return nil, err
			}
			out[k] = t
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			t, err := toTree(e)
			if err != nil {
				return nil, err
			}
			out[i] = t
		}
		return out, nil
	case json.RawMessage:
		return jsonrpc.Decode(v)
	default:
		b, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("encode %T: %w", raw, err)
		}
		return jsonrpc.Decode(b)
	}
}
