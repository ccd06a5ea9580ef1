package tagemu

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"
)

// fileID identifies one of the small, closed set of files this tag
// exposes. Modeled as a sum type over that set rather than a map, since
// the set never grows at runtime.
type fileID byte

const (
	fileNone         fileID = 0x00
	fileCC           fileID = 0x01
	fileNDEF         fileID = 0x02
	fileProprietary  fileID = 0x03
)

// sessionState is the coarse SELECT state: Idle, AppSelected, or
// FileSelected (which file is carried alongside in StateMachine).
type sessionState int

const (
	stateIdle sessionState = iota
	stateAppSelected
	stateFileSelected
)

var applicationAID = []byte{0xD2, 0x76, 0x00, 0x00, 0x85, 0x01, 0x01}

// ccFileContent is the fixed Capability Container this tag returns for
// reads of file 0x01: NDEF v4.0, max read size 64, free read, free
// write.
var ccFileContent = []byte{0xE1, 0x40, 0x00, 0x40, 0x00, 0x00}

// CCFileContent exposes ccFileContent for callers outside this package
// that need to compare it against a physical tag's actual CC bytes.
var CCFileContent = ccFileContent

// ndefCacheIdleTimeout bounds how long a generated NDEF message may be
// served from cache before the next offset-0 read is treated as a fresh
// trigger even without an intervening re-select.
const ndefCacheIdleTimeout = 2 * time.Second

// StateMachine is the tag's APDU-level command processor: it owns the
// current SELECT state, the NDEF response cache, and serializes every
// counter read/increment/persist/respond sequence behind a single mutex
// per the concurrency model this core follows.
type StateMachine struct {
	persistence Persistence

	mu           sync.Mutex
	state        sessionState
	selectedFile fileID

	ndefCacheValid bool
	ndefCacheBytes []byte
	ndefCachedAt   time.Time
}

// NewStateMachine constructs a tag state machine bound to a Persistence
// adapter. The state machine starts Idle, as on emulation enable.
func NewStateMachine(persistence Persistence) *StateMachine {
	return &StateMachine{persistence: persistence, state: stateIdle}
}

// HandleAPDU is Handle for callers (principally Transport adapters) that
// have no context to thread through; it dispatches with
// context.Background(). Wrapped in HandlerFunc it satisfies NDEFProvider.
func (sm *StateMachine) HandleAPDU(raw []byte) []byte {
	return sm.Handle(context.Background(), raw)
}

// Reset returns the state machine to Idle and drops the NDEF cache,
// without touching the persisted counter. The serve command calls it
// when emulation is shut down.
func (sm *StateMachine) Reset() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.state = stateIdle
	sm.selectedFile = fileNone
	sm.invalidateCacheLocked()
}

func (sm *StateMachine) invalidateCacheLocked() {
	sm.ndefCacheValid = false
	sm.ndefCacheBytes = nil
}

// Handle parses and dispatches one command APDU, returning a fully
// serialized response APDU. No error ever escapes this method other
// than as a well-formed status word: framing errors, unsupported
// class/instruction, state errors, and resource-not-found are all
// mapped to SW here.
func (sm *StateMachine) Handle(ctx context.Context, raw []byte) []byte {
	cmd, err := ParseCommand(raw)
	if err != nil {
		return StatusOnly(SWFramingOrInternalError).Bytes()
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if cmd.CLA != 0x00 {
		return StatusOnly(SWClassNotSupported).Bytes()
	}

	switch cmd.INS {
	case 0xA4:
		return sm.handleSelectLocked(cmd).Bytes()
	case 0xB0:
		return sm.handleReadBinaryLocked(ctx, cmd).Bytes()
	default:
		return StatusOnly(SWInstructionNotSupported).Bytes()
	}
}

func (sm *StateMachine) handleSelectLocked(cmd *Command) Response {
	switch cmd.P1 {
	case 0x04:
		return sm.selectByNameLocked(cmd)
	case 0x00:
		return sm.selectByFileIDLocked(cmd)
	default:
		return StatusOnly(SWFileOrAppNotFound)
	}
}

func (sm *StateMachine) selectByNameLocked(cmd *Command) Response {
	if !bytes.Equal(cmd.Data, applicationAID) {
		return StatusOnly(SWFileOrAppNotFound)
	}
	sm.state = stateAppSelected
	sm.selectedFile = fileNone
	sm.invalidateCacheLocked()
	return StatusOnly(SWSuccess)
}

func (sm *StateMachine) selectByFileIDLocked(cmd *Command) Response {
	if sm.state == stateIdle {
		return StatusOnly(SWFileOrAppNotFound)
	}
	if len(cmd.Data) != 1 && len(cmd.Data) != 2 {
		return StatusOnly(SWFileOrAppNotFound)
	}
	id := fileID(cmd.Data[len(cmd.Data)-1])
	switch id {
	case fileCC, fileNDEF, fileProprietary:
		sm.state = stateFileSelected
		sm.selectedFile = id
		sm.invalidateCacheLocked()
		return StatusOnly(SWSuccess)
	default:
		return StatusOnly(SWFileOrAppNotFound)
	}
}

func (sm *StateMachine) handleReadBinaryLocked(ctx context.Context, cmd *Command) Response {
	if sm.state != stateFileSelected {
		return StatusOnly(SWSecurityNotSatisfied)
	}

	offset := int(cmd.P1)<<8 | int(cmd.P2)

	var content []byte
	switch sm.selectedFile {
	case fileCC:
		content = ccFileContent
	case fileNDEF:
		c, err := sm.ndefContentLocked(ctx, offset)
		if err != nil {
			return StatusOnly(SWFramingOrInternalError)
		}
		content = c
	default:
		content = nil
	}

	if offset >= len(content) {
		return Response{SW: SWSuccess}
	}

	end := len(content)
	if cmd.HasLe {
		end = offset + cmd.Le
		if end > len(content) {
			end = len(content)
		}
	}
	return Response{Data: content[offset:end], SW: SWSuccess}
}

// ndefContentLocked returns the current NDEF file bytes, regenerating
// them (and atomically advancing the persisted counter) on the first
// read, at any offset, since the most recent SELECT of the NDEF file, or
// on an offset-0 read once the cache is older than ndefCacheIdleTimeout.
// Other reads, fragmented across offsets, reuse the cached bytes so they
// observe one consistent counter value.
func (sm *StateMachine) ndefContentLocked(ctx context.Context, offset int) ([]byte, error) {
	stale := !sm.ndefCacheValid || time.Since(sm.ndefCachedAt) > ndefCacheIdleTimeout
	if !stale {
		return sm.ndefCacheBytes, nil
	}
	if sm.ndefCacheValid && offset != 0 {
		// Fragmented read continuing past a cache that just went
		// stale: there is nothing left to serve but what is cached.
		return sm.ndefCacheBytes, nil
	}

	cfg, err := sm.persistence.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("tagemu: loading card configuration: %w: %w", err, ErrConfiguration)
	}

	counter, err := sm.persistence.IncrementCounter(ctx)
	if err != nil {
		return nil, ErrPersistence
	}

	resp, err := BuildSDMResponse(SDMParams{
		UID:       cfg.UID,
		K1:        cfg.K1,
		K2:        cfg.K2,
		LNURLBase: cfg.LNURLBase,
		CardID:    cfg.CardID,
	}, counter)
	if err != nil {
		return nil, err
	}

	sm.ndefCacheBytes = resp.NDEF
	sm.ndefCacheValid = true
	sm.ndefCachedAt = time.Now()
	return sm.ndefCacheBytes, nil
}
