package gdpr

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prebid/go-gdpr/api"
	"github.com/prebid/go-gdpr/consentconstants"
	"github.com/prebid/go-gdpr/vendorconsent"
	tcf2 "github.com/prebid/go-gdpr/vendorconsent/tcf2"
)

// PurposeCount is the number of purposes defined by TCF policy version 4.
const PurposeCount = 11

// TCData holds the values a CMP derives from a TC string and stores next to it.
type TCData struct {
	TCString                   string
	Created                    time.Time
	VendorListVersion          uint16
	PurposeConsents            string
	PurposeLegitimateInterests string
	VendorConsents             string
}

// ParseTCString parses and validates a TCF v2 consent string and expands its purpose and
// vendor sections into IABTCF bit strings.
func ParseTCString(consent string) (TCData, error) {
	parsed, err := vendorconsent.ParseString(consent)
	if err != nil {
		return TCData{}, &ErrorMalformedConsent{
			Consent: consent,
			Cause:   err,
		}
	}

	if err := validateVersions(parsed); err != nil {
		return TCData{}, &ErrorMalformedConsent{
			Consent: consent,
			Cause:   err,
		}
	}

	meta, ok := parsed.(tcf2.ConsentMetadata)
	if !ok {
		return TCData{}, &ErrorMalformedConsent{
			Consent: consent,
			Cause:   errors.New("unable to access TCF2 parsed consent"),
		}
	}

	return TCData{
		TCString:                   consent,
		Created:                    meta.Created(),
		VendorListVersion:          meta.VendorListVersion(),
		PurposeConsents:            purposeBits(meta.PurposeAllowed),
		PurposeLegitimateInterests: purposeBits(meta.PurposeLITransparency),
		VendorConsents:             vendorBits(meta.MaxVendorID(), meta.VendorConsent),
	}, nil
}

// validateVersions ensures that certain version fields in the consent string contain valid values.
// Only TCF v2 strings are accepted.
func validateVersions(pc api.VendorConsents) error {
	if version := pc.Version(); version != 2 {
		return fmt.Errorf("invalid encoding format version: %d", version)
	}
	if policyVersion := pc.TCFPolicyVersion(); policyVersion > 4 {
		return fmt.Errorf("invalid TCF policy version: %d", policyVersion)
	}
	return nil
}

func purposeBits(allowed func(consentconstants.Purpose) bool) string {
	var b strings.Builder
	b.Grow(PurposeCount)
	for p := 1; p <= PurposeCount; p++ {
		b.WriteByte(bit(allowed(consentconstants.Purpose(p))))
	}
	return b.String()
}

func vendorBits(maxVendorID uint16, consented func(uint16) bool) string {
	var b strings.Builder
	b.Grow(int(maxVendorID))
	for id := 1; id <= int(maxVendorID); id++ {
		b.WriteByte(bit(consented(uint16(id))))
	}
	return b.String()
}

func bit(set bool) byte {
	if set {
		return '1'
	}
	return '0'
}
