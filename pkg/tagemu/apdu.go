package tagemu

import "fmt"

// Status words the state machine emits. Names follow the ISO 7816-4
// convention of referring to SW1||SW2 as a single 16-bit value.
const (
	SWSuccess               uint16 = 0x9000
	SWSecurityNotSatisfied  uint16 = 0x6982
	SWFileOrAppNotFound     uint16 = 0x6A82
	SWInstructionNotSupported uint16 = 0x6D00
	SWClassNotSupported     uint16 = 0x6E00
	SWFramingOrInternalError uint16 = 0x6F00
)

// Command is a parsed short-form ISO 7816-4 command APDU.
type Command struct {
	CLA  byte
	INS  byte
	P1   byte
	P2   byte
	Data []byte
	Le   int // 0 when there is no Le field; an Le byte of 0x00 decodes to 256.
	HasLe bool
}

// ParseCommand decodes the short-form subset of ISO 7816-4 case 1-4
// command APDUs: case 1 is CLA INS P1 P2 (4 bytes, no data, no Le); case
// 2 adds a single Le byte (5 bytes); case 3 adds Lc and Lc data bytes
// with no Le (5+Lc); case 4 adds both data and a trailing Le byte
// (5+Lc+1). Extended-length encodings are not recognized.
func ParseCommand(raw []byte) (*Command, error) {
	if len(raw) < 4 {
		return nil, fmt.Errorf("tagemu: command APDU too short: %d bytes", len(raw))
	}

	cmd := &Command{CLA: raw[0], INS: raw[1], P1: raw[2], P2: raw[3]}

	switch {
	case len(raw) == 4:
		// Case 1: no data, no Le.
		return cmd, nil
	case len(raw) == 5:
		// Case 2: bare Le byte.
		cmd.Le = leByteToLen(raw[4])
		cmd.HasLe = true
		return cmd, nil
	default:
		lc := int(raw[4])
		body := raw[5:]
		switch {
		case len(body) == lc:
			// Case 3: Lc followed by exactly Lc data bytes, no Le.
			cmd.Data = body
			return cmd, nil
		case len(body) == lc+1:
			// Case 4: Lc, Lc data bytes, then a trailing Le byte.
			cmd.Data = body[:lc]
			cmd.Le = leByteToLen(body[lc])
			cmd.HasLe = true
			return cmd, nil
		default:
			return nil, fmt.Errorf("tagemu: declared Lc=%d inconsistent with %d remaining bytes", lc, len(body))
		}
	}
}

// leByteToLen converts a one-byte Le field to a length, applying the
// short-form convention that Le=0x00 requests 256 bytes.
func leByteToLen(b byte) int {
	if b == 0 {
		return 256
	}
	return int(b)
}

// Response is a response APDU: response data followed by a two-byte
// status word.
type Response struct {
	Data []byte
	SW   uint16
}

// Bytes serializes the response as data ‖ SW1 ‖ SW2.
func (r Response) Bytes() []byte {
	out := make([]byte, 0, len(r.Data)+2)
	out = append(out, r.Data...)
	out = append(out, byte(r.SW>>8), byte(r.SW))
	return out
}

// StatusOnly builds a response carrying no data, just a status word.
func StatusOnly(sw uint16) Response {
	return Response{SW: sw}
}
