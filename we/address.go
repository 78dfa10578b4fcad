package we

import (
	"fmt"
	"regexp"
)

// ContractAddress names a contract instance. Stores use it verbatim in keys,
// stream names and subjects, so it is restricted to a safe alphabet.
type ContractAddress string

var addressPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

func (a ContractAddress) String() string {
	return string(a)
}

func (a ContractAddress) Validate() error {
	if !addressPattern.MatchString(string(a)) {
		return &InvalidAddressError{Address: a}
	}

	return nil
}

type InvalidAddressError struct {
	Address ContractAddress
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid contract address %q", string(e.Address))
}
