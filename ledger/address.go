package ledger

import (
	"fmt"

	"github.com/gofrs/uuid"
)

// Address identifies a caller or account. Addresses are UUID strings,
// the nil UUID is the reserved burn address.
type Address string

const ZeroAddress = Address("00000000-0000-0000-0000-000000000000")

func ParseAddress(s string) (Address, error) {
	u, err := uuid.FromString(s)
	if err != nil {
		return ZeroAddress, fmt.Errorf("invalid address %q: %w", s, ErrInvalidInput)
	}
	return Address(u.String()), nil
}

func NewAddress() Address {
	return Address(uuid.Must(uuid.NewV4()).String())
}

func (a Address) IsZero() bool {
	return a == "" || a == ZeroAddress
}

func (a Address) String() string {
	return string(a)
}
