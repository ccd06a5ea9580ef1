package tagemu

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

const (
	uidLen      = 7
	counterLen  = 3
	piccDataLen = uidLen + counterLen
	sdmMACLen   = 8
)

// ndefHeaderByte is the short-form well-known-record header: MB=1, ME=1,
// CF=0, SR=1, IL=0, TNF=0x01 (NFC Forum well-known type).
const ndefHeaderByte = 0xD1

// uriRecordType is the NFC Forum URI RTD type byte, "U".
const uriRecordType = 0x55

const ndefTLVTag = 0x03
const ndefTerminatorTLV = 0xFE

// httpsPrefix is the one URI-identifier abbreviation this core emits;
// every other scheme is sent out in full under identifier code 0x00.
const httpsPrefix = "https://"
const httpsIdentifierCode = 0x04
const noAbbreviationCode = 0x00

// maxNDEFFileLen is the largest NDEF file this core will ever emit: the
// length field carried in the TLV wrapper is exactly one byte, and the
// whole wrapped file (tag + length + record + terminator) must fit in
// 254 bytes, never falling back to the extended three-byte length form.
const maxNDEFFileLen = 0xFE

// SDMResponse is the result of building one SDM message: the encrypted
// PICCData and truncated MAC that a server reconstitutes and verifies,
// the LNURL they were embedded into, and the NDEF-wrapped bytes a reader
// receives from a READ BINARY of the NDEF file.
type SDMResponse struct {
	EncPICCData []byte
	MAC         []byte
	URL         string
	NDEF        []byte
}

// SDMParams carries the per-card material a builder needs to render one
// SDM response. It has no K0 field: this core only ever implements the
// unauthenticated read path, which needs K1 (file data encryption) and
// K2 (file read MAC), not the application master key K0.
type SDMParams struct {
	UID       []byte
	K1        []byte
	K2        []byte
	LNURLBase string
	CardID    string
}

// BuildSDMResponse assembles the PICCData for (UID, counter), derives the
// session keys from K1/K2 with the all-zero session vector, encrypts and
// MACs it, and renders the LNURL and its NDEF encoding.
func BuildSDMResponse(p SDMParams, counter uint32) (*SDMResponse, error) {
	if len(p.UID) != uidLen {
		return nil, fmt.Errorf("tagemu: UID must be %d bytes, got %d: %w", uidLen, len(p.UID), ErrCryptoPrecondition)
	}
	if len(p.K1) != 16 || len(p.K2) != 16 {
		return nil, fmt.Errorf("tagemu: SDM keys must be 16 bytes each: %w", ErrCryptoPrecondition)
	}
	if counter > 0xFFFFFF {
		return nil, fmt.Errorf("tagemu: counter %d exceeds 24 bits: %w", counter, ErrCryptoPrecondition)
	}

	piccData := make([]byte, piccDataLen)
	copy(piccData, p.UID)
	putUint24BE(piccData[uidLen:], counter)

	kSesEnc, err := DeriveKey(p.K1, labelSDMEncFileData, ZeroSV)
	if err != nil {
		return nil, fmt.Errorf("tagemu: deriving K_SesEnc: %w", err)
	}
	kSesMac, err := DeriveKey(p.K2, labelSDMFileReadMAC, ZeroSV)
	if err != nil {
		return nil, fmt.Errorf("tagemu: deriving K_SesMac: %w", err)
	}

	zeroIV := make([]byte, 16)
	encPICCData, err := CTR(kSesEnc, zeroIV, piccData)
	if err != nil {
		return nil, fmt.Errorf("tagemu: encrypting PICCData: %w", err)
	}

	fullMAC, err := CMAC(kSesMac, piccData)
	if err != nil {
		return nil, fmt.Errorf("tagemu: computing SDM MAC: %w", err)
	}
	mac := TruncateMAC(fullMAC, sdmMACLen)

	url := buildLNURL(p.LNURLBase, p.CardID, encPICCData, mac)

	ndef, err := buildNDEFMessage(url)
	if err != nil {
		return nil, err
	}

	return &SDMResponse{
		EncPICCData: encPICCData,
		MAC:         mac,
		URL:         url,
		NDEF:        ndef,
	}, nil
}

func buildLNURL(base, cardID string, encPICCData, mac []byte) string {
	base = strings.TrimSuffix(base, "/")
	return fmt.Sprintf("%s/%s?p=%s&c=%s",
		base, cardID,
		strings.ToUpper(hex.EncodeToString(encPICCData)),
		strings.ToUpper(hex.EncodeToString(mac)))
}

// buildNDEFMessage renders url as a short-form well-known URI record and
// wraps it in the single-byte-length TLV envelope a CC of this size
// advertises.
func buildNDEFMessage(url string) ([]byte, error) {
	identifier := byte(noAbbreviationCode)
	rest := url
	if strings.HasPrefix(url, httpsPrefix) {
		identifier = httpsIdentifierCode
		rest = strings.TrimPrefix(url, httpsPrefix)
	}

	payload := concat([]byte{identifier}, []byte(rest))
	if len(payload) > 0xFF {
		return nil, fmt.Errorf("tagemu: URI payload %d bytes exceeds single-byte payload length: %w", len(payload), ErrConfiguration)
	}

	record := concat(
		[]byte{ndefHeaderByte, 0x01, byte(len(payload)), uriRecordType},
		payload,
	)
	if len(record) > 0xFF {
		return nil, fmt.Errorf("tagemu: NDEF record %d bytes exceeds single-byte TLV length: %w", len(record), ErrConfiguration)
	}

	wrapped := concat(
		[]byte{ndefTLVTag, byte(len(record))},
		record,
		[]byte{ndefTerminatorTLV},
	)
	if len(wrapped) > maxNDEFFileLen {
		return nil, fmt.Errorf("tagemu: NDEF file %d bytes exceeds the %d-byte limit for a single-byte length form; shorten cardId or lnurlBase: %w", len(wrapped), maxNDEFFileLen, ErrConfiguration)
	}
	return wrapped, nil
}

// DecodeNDEFRecord parses a short-form well-known URI NDEF record (header
// byte, type length, type byte, payload) and reconstructs the URL it
// encodes. It is the inverse of the record half of buildNDEFMessage.
//
// Unlike DecodeNDEFURL, it does not expect the single-byte TLV envelope:
// a Type 4 tag's NDEF file carries NLEN followed directly by the record,
// so a record read off a real tag (with NLEN already stripped) can be
// passed to this function unmodified.
func DecodeNDEFRecord(record []byte) (string, error) {
	if len(record) < 4 {
		return "", fmt.Errorf("tagemu: NDEF record too short: %d bytes", len(record))
	}
	if record[0] != ndefHeaderByte {
		return "", fmt.Errorf("tagemu: unexpected NDEF header byte 0x%02X", record[0])
	}
	typeLen := int(record[1])
	payloadLen := int(record[2])
	if typeLen != 1 || record[3] != uriRecordType {
		return "", fmt.Errorf("tagemu: not a short-form URI record")
	}
	payload := record[4:]
	if len(payload) != payloadLen {
		return "", fmt.Errorf("tagemu: NDEF payload length mismatch: header says %d, got %d", payloadLen, len(payload))
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("tagemu: empty URI payload")
	}

	switch identifier := payload[0]; identifier {
	case httpsIdentifierCode:
		return httpsPrefix + string(payload[1:]), nil
	case noAbbreviationCode:
		return string(payload[1:]), nil
	default:
		return "", fmt.Errorf("tagemu: unsupported URI identifier code 0x%02X", identifier)
	}
}

// DecodeNDEFURL is the inverse of buildNDEFMessage: it strips the
// single-byte TLV envelope this core wraps its NDEF file content in and
// decodes the URI record inside.
func DecodeNDEFURL(wrapped []byte) (string, error) {
	if len(wrapped) < 3 || wrapped[0] != ndefTLVTag {
		return "", fmt.Errorf("tagemu: missing NDEF TLV tag")
	}
	recLen := int(wrapped[1])
	if len(wrapped) < 2+recLen+1 {
		return "", fmt.Errorf("tagemu: NDEF TLV length %d exceeds available bytes", recLen)
	}
	if wrapped[2+recLen] != ndefTerminatorTLV {
		return "", fmt.Errorf("tagemu: missing NDEF TLV terminator")
	}
	return DecodeNDEFRecord(wrapped[2 : 2+recLen])
}

// ParseSDMQuery extracts the encrypted PICCData and truncated MAC a URL
// built by buildLNURL carries in its p= and c= query parameters.
func ParseSDMQuery(rawURL string) (encPICCData, mac []byte, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, nil, fmt.Errorf("tagemu: parsing SDM URL: %w", err)
	}
	q := u.Query()
	pHex, cHex := q.Get("p"), q.Get("c")
	if pHex == "" || cHex == "" {
		return nil, nil, fmt.Errorf("tagemu: SDM URL missing p/c query parameters")
	}
	if encPICCData, err = hex.DecodeString(pHex); err != nil {
		return nil, nil, fmt.Errorf("tagemu: decoding p parameter: %w", err)
	}
	if mac, err = hex.DecodeString(cHex); err != nil {
		return nil, nil, fmt.Errorf("tagemu: decoding c parameter: %w", err)
	}
	return encPICCData, mac, nil
}

// DecryptPICCData reverses the CTR encryption BuildSDMResponse applies to
// PICCData, recovering the UID and counter a card mirrored into it. K1
// must be the same file-data encryption key the card that produced
// encPICCData was provisioned with.
func DecryptPICCData(k1, encPICCData []byte) (uid []byte, counter uint32, err error) {
	if len(encPICCData) != piccDataLen {
		return nil, 0, fmt.Errorf("tagemu: encrypted PICCData must be %d bytes, got %d", piccDataLen, len(encPICCData))
	}
	kSesEnc, err := DeriveKey(k1, labelSDMEncFileData, ZeroSV)
	if err != nil {
		return nil, 0, fmt.Errorf("tagemu: deriving K_SesEnc: %w", err)
	}
	zeroIV := make([]byte, 16)
	piccData, err := CTR(kSesEnc, zeroIV, encPICCData)
	if err != nil {
		return nil, 0, fmt.Errorf("tagemu: decrypting PICCData: %w", err)
	}
	return piccData[:uidLen], uint24BE(piccData[uidLen:]), nil
}
