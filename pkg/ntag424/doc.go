/*
Package ntag424 is a small PC/SC client for talking to a physical NXP
NTAG 424 DNA tag over its unauthenticated ISO 7816 surface: selecting the
NDEF application and its files, reading them with READ BINARY, and
fetching the tag's DESFire version/UID. It exists to drive the
conformance check in cmd/emulator against a real tag — it never performs
DESFire authentication, secure messaging, or key/file-settings
management, since the emulator's core only ever implements the
unauthenticated read path a live Bolt Card serves.

# File Map

An NTAG 424 DNA tag has three application files after SelectNDEFApp (AID D2760000850101):

File 1 (ID 0xE103) — Capability Container (CC)

	Size: 32 bytes. Type: standard data.
	Always readable via plain ISO READ BINARY (INS 0xB0).

File 2 (ID 0xE104) — NDEF File

	Provisioned with free read access. Readable via plain ISO READ BINARY.
	When SDM is enabled, the tag dynamically mirrors UID, counter, and MAC
	into the URL on each read.

File 3 (ID 0xE105) — Proprietary Data

	Usually requires authentication to read; out of scope for this package.

# Operation: ISO READ BINARY (INS 0xB0)

Purpose: read file data via ISO 7816 after SELECT FILE. Requires the
file's read access rights to be free — this package never authenticates.

Command:

	00 B0 <offset_hi> <offset_lo> <Le>

Fail states:

	SW=6C00+xx  Wrong Le → retry with Le=SW2 (ReadBinary does this automatically)
	SW=6982     Security not satisfied (file requires authentication)
	SW=6A82     File not found (wrong file ID or not selected)

# Operation: GetVersion (DESFire INS 0x60)

A three-part command exchange at PICC level returning hardware info,
software info, UID, batch number, and production date. Used by `conform`
to print the physical tag's identity before cross-checking it against
the emulated core.

# Complete Fail State Reference

	SW=9000  Success
	SW=6982  Security status not satisfied (need auth)
	SW=6A82  File not found
	SW=6C00  Wrong Le (correct Le in SW2 low byte)
	SW=9100  DESFire success
	SW=91AF  Additional frame expected (send 90 AF to continue)
*/
package ntag424
