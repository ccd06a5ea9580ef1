package tagemu

import "errors"

// ErrCryptoPrecondition indicates a cryptographic primitive was invoked
// with inputs it cannot accept (wrong key length, wrong block length).
// Per the failure semantics this core follows, this is treated as an
// implementation bug: the exchange is aborted with SWFramingOrInternalError
// rather than surfaced to the caller as a recoverable condition.
var ErrCryptoPrecondition = errors.New("tagemu: cryptographic precondition violation")

// ErrPersistence indicates the Persistence adapter failed to commit a
// counter update. It is fatal for the exchange in progress; the state
// machine responds with SWFramingOrInternalError and never returns
// ciphertext for the counter value it failed to persist.
var ErrPersistence = errors.New("tagemu: persistence commit failed")

// ErrConfiguration indicates the card's configuration cannot support
// emulation: the persistence adapter failed to load it, or the loaded
// values render an NDEF message too long to fit the single-byte TLV
// length this core emits. Like ErrCryptoPrecondition, it aborts the
// exchange in progress with SWFramingOrInternalError.
var ErrConfiguration = errors.New("tagemu: configuration error")
