package gdpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreviousStatusFromInt(t *testing.T) {
	tests := []struct {
		description string
		stored      int
		want        PreviousConsentStatus
		wantName    string
	}{
		{
			description: "unknown",
			stored:      0,
			want:        PreviousStatusUnknown,
			wantName:    "UNKNOWN",
		},
		{
			description: "not required",
			stored:      1,
			want:        PreviousStatusNotRequired,
			wantName:    "NOT_REQUIRED",
		},
		{
			description: "required",
			stored:      2,
			want:        PreviousStatusRequired,
			wantName:    "REQUIRED",
		},
		{
			description: "obtained",
			stored:      3,
			want:        PreviousStatusObtained,
			wantName:    "OBTAINED",
		},
		{
			description: "out of range",
			stored:      4,
			want:        PreviousStatusUnknown,
			wantName:    "UNKNOWN",
		},
		{
			description: "negative",
			stored:      -1,
			want:        PreviousStatusUnknown,
			wantName:    "UNKNOWN",
		},
	}

	for _, test := range tests {
		got := PreviousStatusFromInt(test.stored)
		assert.Equal(t, test.want, got, test.description)
		assert.Equal(t, test.wantName, got.String(), test.description)
	}

	assert.Equal(t, "PreviousConsentStatus(7)", PreviousConsentStatus(7).String())
}
