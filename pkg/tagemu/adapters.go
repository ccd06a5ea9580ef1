package tagemu

import "context"

// Config is the subset of a card's configuration record the state
// machine needs to answer SELECT/READ BINARY. K0 is carried for
// round-trip completeness with the on-disk record (see the Persistence
// adapter) but is never read by this core, which only ever implements
// the unauthenticated SDM read path.
type Config struct {
	K0        []byte
	K1        []byte
	K2        []byte
	UID       []byte
	CardID    string
	LNURLBase string
	Enabled   bool
}

// Persistence is the storage adapter the state machine relies on to load
// a card's configuration and to read, advance, and durably commit its
// read counter. Implementations must make IncrementCounter atomic with
// respect to concurrent callers; the state machine serializes its own
// access with a mutex but still depends on the adapter's commit being
// all-or-nothing so a crash mid-commit cannot leave the counter
// ambiguous.
type Persistence interface {
	Load(ctx context.Context) (*Config, error)
	Save(ctx context.Context, cfg *Config) error

	// IncrementCounter advances the persisted counter by one modulo
	// 2^24 and returns the new value. The increment must be durably
	// committed before this call returns successfully.
	IncrementCounter(ctx context.Context) (uint32, error)

	// SetCounter forces the persisted counter to an explicit value,
	// used by provisioning and reset tooling, never by the read path.
	SetCounter(ctx context.Context, value uint32) error
}

// NDEFProvider answers each command APDU a Transport receives with the
// serialized response APDU the Transport hands back to the reader,
// including the NDEF file content for READ BINARY. It is named here so the Transport
// side of the boundary can depend on it without importing anything
// reader-specific; StateMachine.HandleAPDU satisfies it via
// HandlerFunc.
type NDEFProvider interface {
	Handle(command []byte) []byte
}

// HandlerFunc adapts a plain function to NDEFProvider, the way
// http.HandlerFunc adapts a function to http.Handler.
type HandlerFunc func(command []byte) []byte

func (f HandlerFunc) Handle(command []byte) []byte { return f(command) }

// Transport is the host-side bridge the state machine is handed at
// composition time. It knows nothing about APDU semantics: it only
// moves bytes between the OS's card-emulation facility and the state
// machine's Handle method.
type Transport interface {
	// Enable registers provider as the command-delivery target and
	// begins accepting reader commands.
	Enable(provider NDEFProvider) error

	// Disable stops emulation. It does not alter the persisted counter,
	// only whatever session state the state machine holds.
	Disable() error
}
