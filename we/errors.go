package we

import (
	"fmt"

	"github.com/pkg/errors"
)

// RevisionConflict is returned by a StateStore when the instance was committed
// by someone else since the change set's expected revision.
var RevisionConflict = errors.New("revision-conflict")

type StateMissingError struct {
	Key string
}

func (e *StateMissingError) Error() string {
	return fmt.Sprintf("state missing: no value stored for %q", e.Key)
}

func StateMissing(key string) error {
	return &StateMissingError{Key: key}
}

type StorageError struct {
	Op      string
	Address ContractAddress
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed for %s: %v", e.Op, e.Address, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func StorageFailure(op string, address ContractAddress, err error) error {
	return &StorageError{Op: op, Address: address, Err: err}
}

type DeserializationError struct {
	Message string
	Err     error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("failed to deserialize %s: %v", e.Message, e.Err)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

func Deserialization(message string, err error) error {
	return &DeserializationError{Message: message, Err: err}
}

type EntryNotFoundError struct {
	Contract string
	Entry    string
}

func (e EntryNotFoundError) Error() string {
	return fmt.Sprintf("contract %s has no %s entry point", e.Contract, e.Entry)
}

func EntryNotFound(contract string, entry string) EntryNotFoundError {
	return EntryNotFoundError{Contract: contract, Entry: entry}
}

func IsStateMissing(err error) bool {
	var target *StateMissingError
	return errors.As(err, &target)
}

func IsStorageError(err error) bool {
	var target *StorageError
	return errors.As(err, &target)
}

func IsDeserializationError(err error) bool {
	var target *DeserializationError
	return errors.As(err, &target)
}

func IsInvalidAddress(err error) bool {
	var target *InvalidAddressError
	return errors.As(err, &target)
}

func IsEntryNotFound(err error) bool {
	var target EntryNotFoundError
	return errors.As(err, &target)
}

func IsRevisionConflict(err error) bool {
	return errors.Is(err, RevisionConflict)
}
