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

import "fmt"

// MalformedQuantityError reports a value that is not an unsigned integer in any
// accepted encoding.
type MalformedQuantityError struct {
	Raw    any
	Reason string
}

func (e *MalformedQuantityError) Error() string {
	return fmt.Sprintf("malformed quantity %#v: %s", e.Raw, e.Reason)
}

// MalformedByteStringError reports a value that is not a hex encoded byte string.
type MalformedByteStringError struct {
	Raw    any
	Reason string
}

func (e *MalformedByteStringError) Error() string {
	return fmt.Sprintf("malformed byte string %#v: %s", e.Raw, e.Reason)
}
