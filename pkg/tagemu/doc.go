/*
Package tagemu implements the cryptographic and protocol core of a software
emulator for the NXP NTAG 424 DNA contactless tag, operated in its Secure
Dynamic Messaging (SDM) read-only mode as used by Bolt Card Lightning
payment tags.

The package has no dependency beyond the standard library and the two
adapter interfaces it declares ([Persistence] and [Transport]): it holds no
socket, no file handle, and performs no I/O of its own. A caller wires a
concrete Persistence and Transport into a [StateMachine] to get a running
emulator; tests can wire in-memory fakes instead.

# Layers

  - Primitives: [AESECBEncrypt], [CTR], [CMAC] and [VerifyCMAC], [DeriveKey]
    (the SP 800-108 counter-mode KDF with CMAC as PRF).
  - SDM: [BuildSDMResponse] assembles PICCData, derives session keys,
    encrypts, computes the truncated MAC, and renders the NDEF-wrapped
    LNURL a reader receives on tap.
  - APDU: [ParseCommand] and [Response.Bytes] implement the short-form
    subset of ISO 7816-4 command/response framing this tag needs.
  - State machine: [StateMachine] dispatches SELECT/READ BINARY against
    the tag's application/file model, regenerating the NDEF message and
    advancing the read counter on each first read of the NDEF file per
    session.
*/
package tagemu
