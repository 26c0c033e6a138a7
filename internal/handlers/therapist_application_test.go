package handlers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The upsert only rewrites declared affiliations when the request carried the
// field, so decoding must keep "absent" and "empty array" distinguishable.
func TestUpsertRequestDistinguishesAbsentAffiliations(t *testing.T) {
	var absent therapistApplicationRequest
	err := json.Unmarshal([]byte(`{"professional_name":"Dr. Reyes","email":"r@example.com"}`), &absent)
	require.NoError(t, err)
	assert.Nil(t, absent.ClinicAffiliations,
		"omitting clinic_affiliations must decode to nil so saved affiliations survive")

	var cleared therapistApplicationRequest
	err = json.Unmarshal([]byte(`{"professional_name":"Dr. Reyes","email":"r@example.com","clinic_affiliations":[]}`), &cleared)
	require.NoError(t, err)
	assert.NotNil(t, cleared.ClinicAffiliations,
		"an explicit empty array must decode non-nil so it clears affiliations")
	assert.Len(t, cleared.ClinicAffiliations, 0)
}
