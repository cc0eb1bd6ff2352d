package gdpr

// MatchResult is the outcome of comparing a vendor consent string with the required vendors.
type MatchResult int

const (
	// VendorsMatched means every required vendor has consent.
	VendorsMatched MatchResult = iota
	// VendorsTooShort means the consent string is shorter than the requirement, so some
	// required vendors cannot have been configured.
	VendorsTooShort
	// VendorsNotMatched means at least one required vendor lacks consent.
	VendorsNotMatched
)

func (r MatchResult) String() string {
	switch r {
	case VendorsMatched:
		return "matched"
	case VendorsTooShort:
		return "too_short"
	case VendorsNotMatched:
		return "not_matched"
	}
	return "unknown"
}

// MatchVendors checks an IABTCF_VendorConsents bit string against a requirement pattern.
// A '0' in the requirement is a wildcard; any other character must appear verbatim in the
// mask at the same position. Mask positions past the end of the requirement are not checked.
func MatchVendors(vendorMask, requirement string) MatchResult {
	if len(vendorMask) < len(requirement) {
		return VendorsTooShort
	}
	for i := 0; i < len(requirement); i++ {
		if requirement[i] != '0' && vendorMask[i] != requirement[i] {
			return VendorsNotMatched
		}
	}
	return VendorsMatched
}
