// Package prefstest holds conformance checks shared by the prefs.Store implementations.
package prefstest

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/prebid/tcf-adgate/prefs"
	"github.com/stretchr/testify/assert"
)

// AssertStoreRobustness checks the read, write and remove contract of a Store.
func AssertStoreRobustness(t *testing.T, store prefs.Store) {
	t.Helper()
	ctx := context.Background()

	p := store.Preferences("user-1", prefs.DefaultNamespace)

	assert.Equal(t, "0000000000", p.GetString(ctx, "IABTCF_PurposeConsents", "0000000000"), "absent string yields the default")
	assert.Equal(t, 0, p.GetInt(ctx, "consent_status", 0), "absent int yields the default")

	assert.NoError(t, p.SetString(ctx, "IABTCF_PurposeConsents", "1111000000"))
	assert.Equal(t, "1111000000", p.GetString(ctx, "IABTCF_PurposeConsents", "0000000000"))

	assert.NoError(t, p.SetInt(ctx, "consent_status", 3))
	assert.Equal(t, 3, p.GetInt(ctx, "consent_status", 0))

	assert.Equal(t, 7, p.GetInt(ctx, "IABTCF_PurposeConsents", 7), "a non-integer value reads as the default")

	assert.NoError(t, p.Remove(ctx, "IABTCF_PurposeConsents"))
	assert.Equal(t, "AAAAAAA", p.GetString(ctx, "IABTCF_PurposeConsents", "AAAAAAA"))
	assert.NoError(t, p.Remove(ctx, "IABTCF_PurposeConsents"), "removing an absent key is a no-op")

	assert.NoError(t, p.SetStrings(ctx, map[string]string{
		"IABTCF_TCString":        "CPuKGCP",
		"IABTCF_VendorConsents":  "11010",
		"IABTCF_PurposeConsents": "11110010110",
	}))
	assert.Equal(t, "CPuKGCP", p.GetString(ctx, "IABTCF_TCString", ""))
	assert.Equal(t, "11010", p.GetString(ctx, "IABTCF_VendorConsents", ""))
	assert.Equal(t, "11110010110", p.GetString(ctx, "IABTCF_PurposeConsents", ""))
	assert.NoError(t, p.SetStrings(ctx, map[string]string{}), "an empty batch is a no-op")

	other := store.Preferences("user-2", prefs.DefaultNamespace)
	assert.Equal(t, 0, other.GetInt(ctx, "consent_status", 0), "users are isolated")

	ump := store.Preferences("user-1", prefs.UMPNamespace)
	assert.Equal(t, 0, ump.GetInt(ctx, "consent_status", 0), "namespaces are isolated")
}

// AssertStoreConcurrency hammers one preferences file from several goroutines.
func AssertStoreConcurrency(t *testing.T, store prefs.Store) {
	t.Helper()
	ctx := context.Background()
	p := store.Preferences("user-race", prefs.DefaultNamespace)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				key := "key-" + strconv.Itoa(i%5)
				assert.NoError(t, p.SetInt(ctx, key, w*i))
				p.GetInt(ctx, key, -1)
				assert.NoError(t, p.Remove(ctx, key))
			}
		}(w)
	}
	wg.Wait()
}
