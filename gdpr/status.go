package gdpr

import "fmt"

// PreviousConsentStatus is the consent status cached by Google's User Messaging Platform.
type PreviousConsentStatus int

const (
	PreviousStatusUnknown     PreviousConsentStatus = 0
	PreviousStatusNotRequired PreviousConsentStatus = 1
	PreviousStatusRequired    PreviousConsentStatus = 2
	PreviousStatusObtained    PreviousConsentStatus = 3
)

// PreviousStatusFromInt maps the stored consent_status integer to a PreviousConsentStatus.
// Values outside the known range map to PreviousStatusUnknown.
func PreviousStatusFromInt(stored int) PreviousConsentStatus {
	switch s := PreviousConsentStatus(stored); s {
	case PreviousStatusNotRequired, PreviousStatusRequired, PreviousStatusObtained:
		return s
	}
	return PreviousStatusUnknown
}

func (s PreviousConsentStatus) String() string {
	switch s {
	case PreviousStatusUnknown:
		return "UNKNOWN"
	case PreviousStatusNotRequired:
		return "NOT_REQUIRED"
	case PreviousStatusRequired:
		return "REQUIRED"
	case PreviousStatusObtained:
		return "OBTAINED"
	}
	return fmt.Sprintf("PreviousConsentStatus(%d)", int(s))
}

// MarshalText encodes the status by name.
func (s PreviousConsentStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
