package ntag424

import (
	"fmt"
	"log/slog"
)

// ReadBinary reads data from the currently selected file using ISO 7816 READ BINARY (INS 0xB0).
// Automatically retries with correct Le if the tag returns SW=6C00 (wrong Le).
//
// Parameters:
//   - card: Card interface for transmission
//   - offset: 16-bit offset (encoded in P1P2)
//   - le: Expected length (0x00 = wildcard up to 256 bytes)
//
// Returns:
//   - Data read from the file
//   - Error if read fails
//
// Note: READ BINARY CANNOT use DESFire secure messaging; it only ever
// reads files whose access rights are free.
func ReadBinary(card Card, offset uint16, le byte) ([]byte, error) {
	apdu := []byte{0x00, 0xB0, byte(offset >> 8), byte(offset), le}
	data, sw, err := Transmit(card, apdu)
	if err != nil {
		return nil, err
	}

	// If wrong Le (SW=6C00), retry with correct Le from SW2
	if (sw & 0xFF00) == SWWrongLe {
		correctLe := byte(sw & 0x00FF)
		slog.Warn("wrong Le, retrying", "original_le", apdu[4], "correct_le", correctLe)
		apdu[4] = correctLe
		data, sw, err = Transmit(card, apdu)
		if err != nil {
			return nil, err
		}
	}

	if !SwOK(sw) {
		return nil, &SWError{Cmd: 0xB0, SW: sw}
	}
	return data, nil
}

// ReadNDEF reads the complete NDEF message from the NDEF file using ISO
// READ BINARY.
//
// Steps:
//   1. Select NDEF application (AID D2760000850101)
//   2. Select CC file (0xE103) and read to get NDEF file ID
//   3. Select NDEF file (typically 0xE104)
//   4. Read NLEN (2-byte big-endian length header)
//   5. Read NDEF message in 255-byte chunks
//
// Returns:
//   - Complete NDEF message (without NLEN header)
//   - Error if any step fails
func ReadNDEF(card Card) ([]byte, error) {
	if err := SelectNDEFApp(card); err != nil {
		return nil, err
	}

	// Select CC file to determine NDEF file ID
	if err := SelectFile(card, 0xE103); err != nil {
		return nil, err
	}
	cc, err := ReadBinary(card, 0x0000, 0x0F)
	if err != nil {
		return nil, err
	}
	if len(cc) < 15 {
		return nil, fmt.Errorf("CC file too short")
	}

	// Extract NDEF file ID from CC (default 0xE104)
	ndefFileID := uint16(0xE104)
	if cc[7] == 0x04 && cc[8] >= 6 {
		ndefFileID = uint16(cc[9])<<8 | uint16(cc[10])
	}

	// Select NDEF file
	if err := SelectFile(card, ndefFileID); err != nil {
		return nil, err
	}

	// Read NLEN (2-byte big-endian length)
	nlenBytes, err := ReadBinary(card, 0x0000, 0x02)
	if err != nil {
		return nil, err
	}
	if len(nlenBytes) < 2 {
		return nil, fmt.Errorf("NLEN read too short")
	}
	nlen := int(nlenBytes[0])<<8 | int(nlenBytes[1])
	if nlen == 0 {
		return []byte{}, nil
	}

	// Read NDEF message in chunks (max 255 bytes per READ BINARY)
	ndef := make([]byte, 0, nlen)
	offset := 2 // Skip NLEN header
	remaining := nlen
	for remaining > 0 {
		chunk := remaining
		if chunk > 0xFF {
			chunk = 0xFF
		}
		part, err := ReadBinary(card, uint16(offset), byte(chunk))
		if err != nil {
			return nil, err
		}
		if len(part) == 0 {
			break
		}
		ndef = append(ndef, part...)
		offset += len(part)
		remaining -= len(part)
	}
	return ndef, nil
}

// ReadCCFile reads the Capability Container (CC) file (File 1, ID 0xE103).
//
// Returns:
//   - CC file contents (typically 15-32 bytes)
//   - Error if read fails
func ReadCCFile(card Card) ([]byte, error) {
	if err := SelectNDEFApp(card); err != nil {
		return nil, err
	}
	if err := SelectFile(card, 0xE103); err != nil {
		return nil, err
	}
	// Read CC file - typically 15-23 bytes, read up to 32 to be safe
	return ReadBinary(card, 0x0000, 0x20)
}
