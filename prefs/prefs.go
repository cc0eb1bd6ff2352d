// Package prefs defines the key-value preferences the consent values are read from and
// written to. It mirrors the Android SharedPreferences files a CMP and Google's User
// Messaging Platform write on a device, keyed additionally by user.
package prefs

import "context"

const (
	// DefaultNamespace holds the IABTCF_* keys written by the CMP.
	DefaultNamespace = "default"

	// UMPNamespace is the preferences file of Google's User Messaging Platform.
	UMPNamespace = "__GOOGLE_FUNDING_CHOICE_SDK_INTERNAL__"
)

// Preferences is one user's preferences file.
//
// Reads never fail: an absent key, a value of the wrong type or a backend error all yield
// the default. SetStrings writes all values or none of them. Remove is idempotent.
type Preferences interface {
	GetString(ctx context.Context, key, defaultValue string) string
	GetInt(ctx context.Context, key string, defaultValue int) int
	SetString(ctx context.Context, key, value string) error
	SetStrings(ctx context.Context, values map[string]string) error
	SetInt(ctx context.Context, key string, value int) error
	Remove(ctx context.Context, key string) error
}

// Store opens preferences by user and namespace.
type Store interface {
	Preferences(user, namespace string) Preferences
}
