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

package jsonrpc

import (
	"github.com/bytedance/sonic"
)

// codec keeps numbers as json.Number so large quantities survive decoding.
var codec = sonic.Config{
	UseNumber:      true,
	CopyString:     true,
	ValidateString: true,
}.Froze()

// Decode parses a JSON document into the generic tree used for results.
func Decode(raw []byte) (any, error) {
	var v any
	if err := codec.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Encode renders v with the same codec the transport uses on the wire.
func Encode(v any) ([]byte, error) {
	return codec.Marshal(v)
}
