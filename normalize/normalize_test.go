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
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityEncodingsAgree(t *testing.T) {
	want, _ := new(big.Int).SetString("21000000000000000000000000", 10)
	inputs := []any{
		"0x115eec47f6cf7e35000000",
		"0x00115EEC47F6CF7E35000000",
		"21000000000000000000000000",
		json.Number("21000000000000000000000000"),
		want,
		(*hexutil.Big)(want),
		uint256.MustFromBig(want),
	}
	for _, in := range inputs {
		v, err := Normalize(in, Quantity)
		require.NoError(t, err, "%#v", in)
		assert.Zero(t, want.Cmp(v.Int), "%#v normalized to %v", in, v)
	}
}

func TestQuantitySmallValues(t *testing.T) {
	for _, in := range []any{"0x21", "33", json.Number("33"), 33, int64(33), uint64(33), float64(33), hexutil.Uint64(33)} {
		v, err := Normalize(in, Quantity)
		require.NoError(t, err, "%#v", in)
		assert.Equal(t, "33", v.String())
	}
	zero, err := Normalize("0x0", Quantity)
	require.NoError(t, err)
	assert.True(t, Equal(zero, MustQuantity("0"), Compare{}))
}

func TestMalformedQuantity(t *testing.T) {
	for _, in := range []any{"", "0x", "0xzz", "-1", "1.5", "abc", float64(1.5), -3, true, []any{}} {
		_, err := Normalize(in, Quantity)
		var mq *MalformedQuantityError
		require.ErrorAs(t, err, &mq, "%#v", in)
	}
}

func TestByteStringCanonical(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"0xABCDEF", "0xabcdef"},
		{"0X0a", "0x0a"},
		{"0xabc", "0x0abc"},
		{"0x", "0x"},
		{[]byte{0xde, 0xad}, "0xdead"},
		{hexutil.Bytes{0x01}, "0x01"},
		{common.HexToAddress("0x09a1eda29f664ac8f68106f6567276df0c65d859"), "0x09a1eda29f664ac8f68106f6567276df0c65d859"},
		{common.HexToHash("0x01"), "0x0000000000000000000000000000000000000000000000000000000000000001"},
	}
	for _, tt := range tests {
		v, err := Normalize(tt.in, ByteString)
		require.NoError(t, err, "%#v", tt.in)
		assert.Equal(t, tt.want, v.Bytes)

		again, err := Normalize(v.Bytes, ByteString)
		require.NoError(t, err)
		assert.Equal(t, v, again, "normalization must be idempotent")
	}
}

func TestMalformedByteString(t *testing.T) {
	for _, in := range []any{"abcd", "0xgg", 12, true} {
		_, err := Normalize(in, ByteString)
		var mb *MalformedByteStringError
		require.ErrorAs(t, err, &mb, "%#v", in)
	}
}

func TestCodeTreatsZeroPayloadAsEmpty(t *testing.T) {
	for _, in := range []any{"0x", "0x00", "0x0000", "0x0"} {
		v, err := Normalize(in, Code)
		require.NoError(t, err)
		assert.Equal(t, "0x", v.Bytes, "%v", in)
	}
	v, err := Normalize("0x6080", Code)
	require.NoError(t, err)
	assert.Equal(t, "0x6080", v.Bytes)

	// Plain byte strings keep their zero bytes.
	b, err := Normalize("0x00", ByteString)
	require.NoError(t, err)
	assert.Equal(t, "0x00", b.Bytes)
}

func TestNilIsAbsentForEveryKind(t *testing.T) {
	var addr *common.Address
	for _, k := range []Kind{Opaque, Quantity, ByteString, Code, Boolean} {
		v, err := Normalize(nil, k)
		require.NoError(t, err)
		assert.True(t, v.Absent)

		v, err = Normalize(addr, k)
		require.NoError(t, err)
		assert.True(t, v.Absent)
	}
	assert.True(t, Equal(AbsentValue(Opaque), AbsentValue(Opaque), Compare{}))
	assert.False(t, Equal(AbsentValue(Opaque), Value{Kind: Opaque, Tree: map[string]any{}}, Compare{}))
}

func TestBoolean(t *testing.T) {
	v, err := Normalize(true, Boolean)
	require.NoError(t, err)
	assert.True(t, v.Bool)
	v, err = Normalize("false", Boolean)
	require.NoError(t, err)
	assert.False(t, v.Bool)
	_, err = Normalize("1", Boolean)
	assert.Error(t, err)
}

func TestOpaqueKeyOrderIrrelevantArrayOrderSignificant(t *testing.T) {
	a, err := Normalize(map[string]any{"a": json.Number("1"), "b": []any{"x", "y"}}, Opaque)
	require.NoError(t, err)
	b, err := Normalize(map[string]any{"b": []any{"x", "y"}, "a": float64(1)}, Opaque)
	require.NoError(t, err)
	assert.True(t, Equal(a, b, Compare{}))

	c, err := Normalize(map[string]any{"a": json.Number("1"), "b": []any{"y", "x"}}, Opaque)
	require.NoError(t, err)
	assert.False(t, Equal(a, c, Compare{}))
	assert.NotEmpty(t, Diff(a, c, Compare{}))
	assert.Empty(t, Diff(a, b, Compare{}))
}

func TestOpaqueTypedValueGoesThroughJSON(t *testing.T) {
	log := &types.Log{
		Address: common.HexToAddress("0x01"),
		Topics:  []common.Hash{common.HexToHash("0x93fe6d397c74fdf1402a8b72e47b68512f0510d7b98a4bc4cbdf6ac7108b3c59")},
		Data:    common.LeftPadBytes([]byte{34}, 32),
	}
	v, err := Normalize(log, Opaque)
	require.NoError(t, err)
	addr, ok := v.Field("address")
	require.True(t, ok)
	assert.Equal(t, "0x0000000000000000000000000000000000000001", addr)
}

func TestCompareFilters(t *testing.T) {
	raw := map[string]any{"number": "0x2", "hash": "0xaa", "rskField": "x"}
	sdk := map[string]any{"number": "0x02", "hash": "0xaa", "baseFeePerGas": nil}
	a, err := Normalize(raw, Opaque)
	require.NoError(t, err)
	b, err := Normalize(sdk, Opaque)
	require.NoError(t, err)

	assert.False(t, Equal(a, b, Compare{}))
	only := Compare{Only: []string{"number", "hash"}, FieldKinds: map[string]Kind{"number": Quantity}}
	assert.True(t, Equal(a, b, only))
	ignore := Compare{Ignore: []string{"rskField", "baseFeePerGas"}, FieldKinds: map[string]Kind{"number": Quantity}}
	assert.True(t, Equal(a, b, ignore))

	// Filters reach objects inside a top-level array.
	la, _ := Normalize([]any{raw}, Opaque)
	lb, _ := Normalize([]any{sdk}, Opaque)
	assert.True(t, Equal(la, lb, only))
	assert.Equal(t, 1, la.Len())
}

func TestEqualDifferentKinds(t *testing.T) {
	q := MustQuantity("0x1")
	b, err := Normalize("0x01", ByteString)
	require.NoError(t, err)
	assert.False(t, Equal(q, b, Compare{}))
	assert.NotEmpty(t, Diff(q, b, Compare{}))
}
