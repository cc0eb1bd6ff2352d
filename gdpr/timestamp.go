package gdpr

import (
	"strings"

	"github.com/prebid/tcf-adgate/errortypes"
)

// Milliseconds since the Unix epoch.
type Milliseconds int64

const (
	// base64Alphabet is the alphabet of the TC string encoding. The URL-safe '-' and '_'
	// found in real TC strings are aliases of '+' and '/'.
	base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

	timestampStart  = 1
	timestampEnd    = 7
	timestampDigits = timestampEnd - timestampStart

	millisPerDecisecond = 100
)

// symbolIndex returns the 6-bit value of a base64 symbol, or -1 when the symbol is unknown.
func symbolIndex(c byte) int {
	switch c {
	case '-':
		return 62
	case '_':
		return 63
	}
	return strings.IndexByte(base64Alphabet, c)
}

// DecodeTimestamp decodes the creation time stored in characters [1,7) of a TC string.
// The six symbols form a big-endian base64 number of deciseconds since the epoch.
//
// Decoding never aborts. A symbol outside the alphabet, or a position past the end of a
// short string, contributes 0 and is reported through an *errortypes.InvalidTimestampEncoding
// warning; the returned timestamp is always set.
func DecodeTimestamp(tcString string) (Milliseconds, error) {
	var deciseconds int64
	var invalid []int

	for i := timestampStart; i < timestampEnd; i++ {
		value := -1
		if i < len(tcString) {
			value = symbolIndex(tcString[i])
		}
		if value < 0 {
			invalid = append(invalid, i)
			value = 0
		}
		deciseconds = deciseconds*64 + int64(value)
	}

	timestamp := Milliseconds(deciseconds * millisPerDecisecond)
	if len(invalid) > 0 {
		return timestamp, &errortypes.InvalidTimestampEncoding{
			Encoded:   encodedTimestamp(tcString),
			Positions: invalid,
		}
	}
	return timestamp, nil
}

func encodedTimestamp(tcString string) string {
	if len(tcString) <= timestampStart {
		return ""
	}
	if len(tcString) < timestampEnd {
		return tcString[timestampStart:]
	}
	return tcString[timestampStart:timestampEnd]
}

// EncodeTimestamp is the inverse of DecodeTimestamp for the six timestamp symbols.
// Sub-decisecond precision is dropped and values outside the 36-bit range wrap.
func EncodeTimestamp(timestamp Milliseconds) string {
	deciseconds := int64(timestamp) / millisPerDecisecond
	encoded := make([]byte, timestampDigits)
	for i := timestampDigits - 1; i >= 0; i-- {
		encoded[i] = base64Alphabet[deciseconds&0x3f]
		deciseconds >>= 6
	}
	return string(encoded)
}
