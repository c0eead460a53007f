package sui

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// AddressLength is the size of a Sui account address in bytes.
const AddressLength = 32

var ErrInvalidAddress = errors.New("invalid sui address")

// Address is a Sui account address.
type Address [AddressLength]byte

// ParseAddress decodes a hex address with an optional 0x prefix.
// Short forms such as "0x2" are left-padded with zeros.
func ParseAddress(s string) (Address, error) {
	var addr Address

	digits := strings.TrimSpace(s)
	digits = strings.TrimPrefix(strings.TrimPrefix(digits, "0x"), "0X")
	if digits == "" {
		return addr, fmt.Errorf("%w: %q is empty", ErrInvalidAddress, s)
	}
	if len(digits) > AddressLength*2 {
		return addr, fmt.Errorf("%w: %q is longer than %d hex digits", ErrInvalidAddress, s, AddressLength*2)
	}

	digits = strings.Repeat("0", AddressLength*2-len(digits)) + digits
	if _, err := hex.Decode(addr[:], []byte(digits)); err != nil {
		return Address{}, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}

	return addr, nil
}

// String returns the 0x-prefixed lowercase hex form.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) IsZero() bool {
	return a == Address{}
}
