// Copyright 2024 The go-ethereum-core Authors
// This file is part of the go-ethereum-core library.
//
// The go-ethereum-core library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum-core library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum-core library. If not, see <http://www.gnu.org/licenses/>.

package types

import (
	"errors"
	"fmt"
)

// Construction-time error kinds. These are raised by the Header
// constructors (FromFieldDict, FromRLPBytes, FromValuesSequence) and are
// fatal to the construction that raised them.
var (
	ErrMalformedHeader     = errors.New("types: malformed header")
	ErrInvalidGenesisOption = errors.New("types: genesis option requires the chainstart hardfork")
	ErrInvalidDAOExtraData  = errors.New("types: invalid DAO fork extra data")
)

// ErrInvalidFieldWidth names the fixed-width field that failed its byte
// length check. Field widths are a per-construction invariant (spec 3).
type ErrInvalidFieldWidth struct {
	Field string
	Want  int
	Got   int
}

func (e *ErrInvalidFieldWidth) Error() string {
	return fmt.Sprintf("types: field %q must be %d bytes, got %d", e.Field, e.Want, e.Got)
}

// Is lets errors.Is(err, types.ErrInvalidFieldWidth(...)) style checks work
// against any field-width violation regardless of which field it names.
func (e *ErrInvalidFieldWidth) Is(target error) bool {
	_, ok := target.(*ErrInvalidFieldWidth)
	return ok
}
