package gdpr

import (
	"fmt"
	"strings"
)

// AdConfiguration is the most permissive kind of advertising the stored consent allows.
// All, NonPersonalized and Limited are ranked in that order; Unclear and None are outcomes
// of their own.
type AdConfiguration int

const (
	// AdConfigurationAll allows personalized ads for all configured vendors.
	AdConfigurationAll AdConfiguration = iota
	// AdConfigurationNonPersonalized allows at most non-personalized ads.
	AdConfigurationNonPersonalized
	// AdConfigurationLimited allows at most limited ads.
	AdConfigurationLimited
	// AdConfigurationUnclear means the vendor configuration could not be confirmed.
	AdConfigurationUnclear
	// AdConfigurationNone means consent or legitimate interest is lacking and no ads may be shown.
	AdConfigurationNone
)

var adConfigurationNames = [...]string{
	AdConfigurationAll:             "ALL",
	AdConfigurationNonPersonalized: "NONPERSONALIZED",
	AdConfigurationLimited:         "LIMITED",
	AdConfigurationUnclear:         "UNCLEAR",
	AdConfigurationNone:            "NONE",
}

// AdConfigurations lists every AdConfiguration, most permissive first.
func AdConfigurations() []AdConfiguration {
	return []AdConfiguration{
		AdConfigurationAll,
		AdConfigurationNonPersonalized,
		AdConfigurationLimited,
		AdConfigurationUnclear,
		AdConfigurationNone,
	}
}

func (c AdConfiguration) String() string {
	if c < 0 || int(c) >= len(adConfigurationNames) {
		return fmt.Sprintf("AdConfiguration(%d)", int(c))
	}
	return adConfigurationNames[c]
}

// ParseAdConfiguration maps a name produced by String back to its AdConfiguration.
func ParseAdConfiguration(name string) (AdConfiguration, error) {
	for _, c := range AdConfigurations() {
		if strings.EqualFold(c.String(), name) {
			return c, nil
		}
	}
	return AdConfigurationNone, fmt.Errorf("unknown ad configuration %q", name)
}

// MarshalText encodes the configuration by name.
func (c AdConfiguration) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a name produced by MarshalText.
func (c *AdConfiguration) UnmarshalText(text []byte) error {
	parsed, err := ParseAdConfiguration(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// AllowsAds is false only for AdConfigurationNone.
func (c AdConfiguration) AllowsAds() bool {
	switch c {
	case AdConfigurationAll, AdConfigurationNonPersonalized, AdConfigurationLimited, AdConfigurationUnclear:
		return true
	}
	return false
}

// AllowsPersonalizedAds is true only for AdConfigurationAll.
func (c AdConfiguration) AllowsPersonalizedAds() bool {
	return c == AdConfigurationAll
}

// Purposes are 1-indexed and stored at position purpose-1 of the IABTCF purpose strings.
// See https://support.google.com/admob/answer/9760862 for the minimum Google requires.
var (
	// consent to all of these allows personalized ads
	personalizedAdPurposes = []int{1, 3, 4}
	// consent to this one allows non-personalized ads
	nonPersonalizedAdPurpose = 1
	// every ad needs consent or legitimate interest for all of these
	legitimateInterestPurposes = []int{2, 7, 9, 10}
)

// Classify derives the AdConfiguration from the stored purpose consents, purpose legitimate
// interests and vendor consents, given the vendor requirement of this deployment.
//
// A missing legitimate interest always wins and yields AdConfigurationNone. Otherwise a vendor
// string that does not satisfy the requirement yields AdConfigurationUnclear, and a matching
// one yields the tier selected from the purpose consents.
func Classify(purposeConsent, purposeInterest, vendorMask, vendorRequirement string) AdConfiguration {
	tier := selectTier(purposeConsent)

	if !hasLegitimateInterest(purposeConsent, purposeInterest) {
		return AdConfigurationNone
	}

	if MatchVendors(vendorMask, vendorRequirement) != VendorsMatched {
		return AdConfigurationUnclear
	}
	return tier
}

func selectTier(purposeConsent string) AdConfiguration {
	if allPurposes(purposeConsent, personalizedAdPurposes) {
		return AdConfigurationAll
	}
	if purposeFlag(purposeConsent, nonPersonalizedAdPurpose) {
		return AdConfigurationNonPersonalized
	}
	return AdConfigurationLimited
}

func allPurposes(source string, purposes []int) bool {
	for _, p := range purposes {
		if !purposeFlag(source, p) {
			return false
		}
	}
	return true
}

func hasLegitimateInterest(purposeConsent, purposeInterest string) bool {
	for _, p := range legitimateInterestPurposes {
		if !purposeFlag(purposeConsent, p) && !purposeFlag(purposeInterest, p) {
			return false
		}
	}
	return true
}

// Classifier classifies consent against a fixed vendor requirement.
type Classifier struct {
	// VendorRequirement is the IABTCF_VendorConsents value of a known good configuration,
	// with '0' at every vendor that does not matter.
	VendorRequirement string
}

// NewClassifier returns a Classifier for the given vendor requirement.
func NewClassifier(vendorRequirement string) Classifier {
	return Classifier{VendorRequirement: vendorRequirement}
}

// Classify is Classify with the classifier's vendor requirement.
func (c Classifier) Classify(purposeConsent, purposeInterest, vendorMask string) AdConfiguration {
	return Classify(purposeConsent, purposeInterest, vendorMask, c.VendorRequirement)
}
