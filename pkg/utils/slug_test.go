package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "bright-minds-clinic", Slugify("Bright Minds Clinic"))
	assert.Equal(t, "little-steps-therapy", Slugify("Little Steps & Therapy!"))
	assert.Equal(t, "care-center", Slugify("  Care --- Center  "))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestClinicSlug(t *testing.T) {
	applicationID := "a1b2c3d4-0000-0000-0000-000000000000"
	assert.Equal(t, "bright-minds-a1b2c3d4", ClinicSlug("Bright Minds", applicationID))

	// Two clinics with the same name still get distinct slugs
	otherID := "ffffffff-0000-0000-0000-000000000000"
	assert.NotEqual(t, ClinicSlug("Bright Minds", applicationID), ClinicSlug("Bright Minds", otherID))
}
