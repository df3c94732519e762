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

package fixture

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// Uint returns v as a 256-bit integer.
func Uint(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

// Word renders v as one 32-byte ABI word.
func Word(v uint64) string {
	b := Uint(v).Bytes32()
	return hexutil.Encode(b[:])
}

// ParseWord decodes a single 32-byte ABI word.
func ParseWord(s string) (*uint256.Int, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("abi word %q: %w", s, err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("abi word %q: %d bytes, want 32", s, len(b))
	}
	return new(uint256.Int).SetBytes32(b), nil
}
