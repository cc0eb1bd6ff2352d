// Package gdpr interprets the IAB TCF v2 values a consent management platform stores on a
// device and turns them into the ad configuration a host may serve.
//
// Every function in this package is pure: inputs are plain strings as read from storage and
// nothing is written back. Missing or malformed input degrades toward fewer ads, never to an
// error the caller must handle.
package gdpr

import "github.com/prebid/tcf-adgate/errortypes"

// An ErrorMalformedConsent is returned by ParseTCString if the consent string
// argument was the reason for the failure.
type ErrorMalformedConsent struct {
	Consent string
	Cause   error
}

func (e *ErrorMalformedConsent) Error() string {
	return "malformed consent string " + e.Consent + ": " + e.Cause.Error()
}

func (e *ErrorMalformedConsent) Unwrap() error {
	return e.Cause
}

func (e *ErrorMalformedConsent) Code() int {
	return errortypes.MalformedConsentErrorCode
}

func (e *ErrorMalformedConsent) Severity() errortypes.Severity {
	return errortypes.SeverityFatal
}
