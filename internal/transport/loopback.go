// Package transport provides Transport adapters for pkg/tagemu. It does
// not implement the host operating system's Host Card Emulation
// facility: that surface is OS-specific, privileged, and outside this
// core's boundary. What is provided here is a line-oriented hex-APDU
// bridge suitable for local testing, scripted conformance runs, and
// driving the emulator from another process over a pipe.
package transport

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/barnettlynn/ntag424emu/pkg/tagemu"
)

// Loopback reads one hex-encoded command APDU per line from an input
// stream and writes the hex-encoded response APDU to an output stream.
// It is the Transport `emulator serve` uses, since no OS-level HCE bridge
// is provided, and it can script request/response pairs against the core
// from a file or another process.
type Loopback struct {
	in  io.Reader
	out io.Writer
	log *slog.Logger

	mu       sync.Mutex
	provider tagemu.NDEFProvider
	done     chan struct{}
}

// NewLoopback builds a Loopback bridging in/out.
func NewLoopback(in io.Reader, out io.Writer, log *slog.Logger) *Loopback {
	if log == nil {
		log = slog.Default()
	}
	return &Loopback{in: in, out: out, log: log}
}

func (l *Loopback) Enable(provider tagemu.NDEFProvider) error {
	l.mu.Lock()
	if l.provider != nil {
		l.mu.Unlock()
		return fmt.Errorf("transport: already enabled")
	}
	l.provider = provider
	l.done = make(chan struct{})
	l.mu.Unlock()

	go l.run()
	return nil
}

func (l *Loopback) Disable() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.provider == nil {
		return nil
	}
	l.provider = nil
	close(l.done)
	return nil
}

func (l *Loopback) run() {
	scanner := bufio.NewScanner(l.in)
	for scanner.Scan() {
		select {
		case <-l.done:
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		raw, err := hex.DecodeString(strings.ReplaceAll(line, " ", ""))
		if err != nil {
			l.log.Warn("loopback: skipping malformed hex line", "line", line, "error", err)
			continue
		}

		l.mu.Lock()
		provider := l.provider
		l.mu.Unlock()
		if provider == nil {
			return
		}

		resp := provider.Handle(raw)
		fmt.Fprintln(l.out, strings.ToUpper(hex.EncodeToString(resp)))
	}
}

var _ tagemu.Transport = (*Loopback)(nil)
