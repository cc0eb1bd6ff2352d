// Package consent reads a user's stored TCF values, asks the gdpr package what they allow
// and carries out the resulting storage changes.
package consent

import (
	"context"
	"time"

	"github.com/prebid/tcf-adgate/config"
	"github.com/prebid/tcf-adgate/errortypes"
	"github.com/prebid/tcf-adgate/gdpr"
	"github.com/prebid/tcf-adgate/logger"
	"github.com/prebid/tcf-adgate/metrics"
	"github.com/prebid/tcf-adgate/prefs"
)

// Keys of the stored values. The names are fixed by the IAB TCF and Google UMP.
const (
	KeyTCString                   = "IABTCF_TCString"
	KeyPurposeConsents            = "IABTCF_PurposeConsents"
	KeyPurposeLegitimateInterests = "IABTCF_PurposeLegitimateInterests"
	KeyVendorConsents             = "IABTCF_VendorConsents"
	KeyConsentStatus              = "consent_status"
)

const (
	defaultPurposeString = "0000000000"
	defaultVendorString  = "0"
)

// Report is the outcome of a full consent check for one user.
type Report struct {
	AdConfiguration gdpr.AdConfiguration       `json:"ad_configuration"`
	Ads             bool                       `json:"ads"`
	PersonalizedAds bool                       `json:"personalized_ads"`
	Expired         bool                       `json:"expired"`
	PreviousStatus  gdpr.PreviousConsentStatus `json:"previous_status"`
}

// Service applies the consent rules to the preferences in a store.
type Service struct {
	store      prefs.Store
	classifier gdpr.Classifier
	expiry     gdpr.ExpiryPolicy
	metrics    metrics.MetricsEngine
	now        func() time.Time
}

// NewService builds a Service from the consent configuration.
func NewService(store prefs.Store, cfg config.Consent, me metrics.MetricsEngine) *Service {
	if me == nil {
		me = metrics.NewNilMetrics()
	}
	return &Service{
		store:      store,
		classifier: gdpr.NewClassifier(cfg.VendorRequirement),
		expiry:     gdpr.ExpiryPolicy{MaxAgeDays: cfg.MaxAgeDays},
		metrics:    me,
		now:        time.Now,
	}
}

func (s *Service) tcfPreferences(user string) prefs.Preferences {
	return s.store.Preferences(user, prefs.DefaultNamespace)
}

// DetectAdConfiguration classifies the user's stored purpose and vendor consents.
// Absent values count as no consent.
func (s *Service) DetectAdConfiguration(ctx context.Context, user string) gdpr.AdConfiguration {
	p := s.tcfPreferences(user)

	purposeConsents := p.GetString(ctx, KeyPurposeConsents, defaultPurposeString)
	purposeInterests := p.GetString(ctx, KeyPurposeLegitimateInterests, defaultPurposeString)
	vendorConsents := p.GetString(ctx, KeyVendorConsents, defaultVendorString)

	adConfig := s.classifier.Classify(purposeConsents, purposeInterests, vendorConsents)
	if adConfig == gdpr.AdConfigurationUnclear {
		logger.Debugf("user %s: vendor consents %q do not satisfy %q", user, vendorConsents, s.classifier.VendorRequirement)
	}
	s.metrics.RecordClassification(adConfig)
	return adConfig
}

// DeleteTCStringIfOutdated removes the user's TC string when it is older than the expiry
// policy allows, so that the CMP asks for consent again. An absent string counts as outdated
// and removing it is a no-op. It reports whether the string was outdated.
func (s *Service) DeleteTCStringIfOutdated(ctx context.Context, user string) (bool, error) {
	p := s.tcfPreferences(user)
	tcString := p.GetString(ctx, KeyTCString, gdpr.DefaultTCString)

	now := s.now()
	days, err := gdpr.Age(tcString, now)
	if err != nil {
		logger.Warnf("user %s: %v", user, err)
		s.metrics.RecordTimestampWarning()
	}

	expired := s.expiry.Exceeded(days)
	s.metrics.RecordExpiryCheck(expired)
	if !expired {
		return false, nil
	}

	logger.Debugf("user %s: removing TC string created %d days ago", user, days)
	if err := p.Remove(ctx, KeyTCString); err != nil {
		s.metrics.RecordStoreError(metrics.StoreOperationRemove)
		return true, err
	}
	return true, nil
}

// PreviousConsentStatus returns the consent status cached by Google UMP.
func (s *Service) PreviousConsentStatus(ctx context.Context, user string) gdpr.PreviousConsentStatus {
	stored := s.store.Preferences(user, prefs.UMPNamespace).GetInt(ctx, KeyConsentStatus, int(gdpr.PreviousStatusUnknown))
	status := gdpr.PreviousStatusFromInt(stored)
	s.metrics.RecordPreviousStatus(status)
	return status
}

// Check expires an outdated TC string, then classifies the stored consent and reads the
// previous status. A failed removal is returned together with a complete report.
func (s *Service) Check(ctx context.Context, user string) (Report, error) {
	expired, err := s.DeleteTCStringIfOutdated(ctx, user)
	if err != nil {
		logger.Errorf("user %s: removing outdated TC string: %v", user, err)
	}

	adConfig := s.DetectAdConfiguration(ctx, user)
	return Report{
		AdConfiguration: adConfig,
		Ads:             adConfig.AllowsAds(),
		PersonalizedAds: adConfig.AllowsPersonalizedAds(),
		Expired:         expired,
		PreviousStatus:  s.PreviousConsentStatus(ctx, user),
	}, err
}

// StoreTCString parses a TC string and stores it along with the purpose and vendor bit
// strings derived from it, the way a CMP does on the device. The four values are written
// in one batch so the TC string's timestamp always belongs to the stored consents.
func (s *Service) StoreTCString(ctx context.Context, user, tcString string) error {
	data, err := gdpr.ParseTCString(tcString)
	if err != nil {
		s.metrics.RecordIngest(metrics.IngestStatusMalformed)
		return &errortypes.BadInput{Message: err.Error()}
	}

	err = s.tcfPreferences(user).SetStrings(ctx, map[string]string{
		KeyTCString:                   data.TCString,
		KeyPurposeConsents:            data.PurposeConsents,
		KeyPurposeLegitimateInterests: data.PurposeLegitimateInterests,
		KeyVendorConsents:             data.VendorConsents,
	})
	if err != nil {
		s.metrics.RecordStoreError(metrics.StoreOperationWrite)
		s.metrics.RecordIngest(metrics.IngestStatusErr)
		return err
	}

	s.metrics.RecordIngest(metrics.IngestStatusOK)
	return nil
}

// SetPreviousConsentStatus stores the UMP consent status.
func (s *Service) SetPreviousConsentStatus(ctx context.Context, user string, status gdpr.PreviousConsentStatus) error {
	if err := s.store.Preferences(user, prefs.UMPNamespace).SetInt(ctx, KeyConsentStatus, int(status)); err != nil {
		s.metrics.RecordStoreError(metrics.StoreOperationWrite)
		return err
	}
	return nil
}
