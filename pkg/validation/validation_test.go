package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "admin", SanitizeString("  ad\x00min\x07 "))
	assert.Equal(t, "line\nnext", SanitizeString("line\nnext"))
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("dispatcher"))
	assert.NoError(t, ValidateUsername("ops.lead@example.com"))

	for _, bad := range []string{"", "ab", "has space", "-leading"} {
		err := ValidateUsername(bad)
		assert.ErrorIs(t, err, ErrInvalidInput, bad)
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Sentinel#2026"))

	err := ValidatePassword("short")
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = ValidatePassword("alllowercase")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "an uppercase letter")
	assert.Contains(t, err.Error(), "a number")
	assert.Contains(t, err.Error(), "a special character")
}

func TestValidateShipmentID(t *testing.T) {
	assert.NoError(t, ValidateShipmentID(""))
	assert.NoError(t, ValidateShipmentID("SHP-00042"))
	assert.ErrorIs(t, ValidateShipmentID("SHP 42;--"), ErrInvalidInput)
}

func TestParseFilters(t *testing.T) {
	kind, err := ParseAnomalyKind("export_spike")
	require.NoError(t, err)
	assert.Equal(t, models.AnomalyExportSpike, kind)

	_, err = ParseAnomalyKind("port_scan")
	assert.ErrorIs(t, err, ErrInvalidInput)

	severity, err := ParseSeverity("HIGH")
	require.NoError(t, err)
	assert.Equal(t, models.SeverityHigh, severity)

	severity, err = ParseSeverity("")
	require.NoError(t, err)
	assert.Empty(t, severity)

	_, err = ParseSeverity("urgent")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
