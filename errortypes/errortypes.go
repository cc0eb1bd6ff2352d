package errortypes

import (
	"fmt"
	"strings"
)

// BadInput should be used when returning errors which are caused by bad input, such as a
// consent string that go-gdpr refuses to parse or a non-numeric consent status.
//
// BadInputs will not be written to the app log, since the fix belongs to the caller.
type BadInput struct {
	Message string
}

func (err *BadInput) Error() string {
	return err.Message
}

func (err *BadInput) Code() int {
	return BadInputErrorCode
}

func (err *BadInput) Severity() Severity {
	return SeverityFatal
}

// StoreFailure should be used when the preferences backend fails to persist or delete a value.
type StoreFailure struct {
	Message string
}

func (err *StoreFailure) Error() string {
	return err.Message
}

func (err *StoreFailure) Code() int {
	return StoreFailureErrorCode
}

func (err *StoreFailure) Severity() Severity {
	return SeverityFatal
}

// InvalidTimestampEncoding flags symbols of a TC string timestamp that are not part of the
// base64 alphabet. Each one contributed 0 to the decoded value, so the timestamp is still
// usable but probably meaningless.
type InvalidTimestampEncoding struct {
	Encoded   string
	Positions []int
}

func (err *InvalidTimestampEncoding) Error() string {
	positions := make([]string, len(err.Positions))
	for i, p := range err.Positions {
		positions[i] = fmt.Sprint(p)
	}
	return fmt.Sprintf("invalid timestamp encoding %q: unrecognized symbols at positions [%s]", err.Encoded, strings.Join(positions, ","))
}

func (err *InvalidTimestampEncoding) Code() int {
	return InvalidTimestampEncodingWarningCode
}

func (err *InvalidTimestampEncoding) Severity() Severity {
	return SeverityWarning
}
