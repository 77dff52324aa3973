package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRole(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want Role
		ok   bool
	}{
		{"plain string", "fiscal", RoleFiscal, true},
		{"string with noise", "  Supervisor ", RoleSupervisor, true},
		{"unknown string", "admin", "", false},
		{"empty string", "", "", false},
		{"list takes first known", []any{"nope", "fiscal"}, RoleFiscal, true},
		{"string list", []string{"supervisor"}, RoleSupervisor, true},
		{"empty list", []any{}, "", false},
		{"flags map", map[string]bool{"fiscal": true}, RoleFiscal, true},
		{"flags supervisor wins", map[string]bool{"fiscal": true, "supervisor": true}, RoleSupervisor, true},
		{"flags all false", map[string]bool{"fiscal": false, "supervisor": false}, "", false},
		{"any map with bools", map[string]any{"supervisor": true}, RoleSupervisor, true},
		{"nested object", map[string]any{"role": "fiscal"}, RoleFiscal, true},
		{"deeply nested", map[string]any{"perfil": map[string]any{"cargo": []any{"supervisor"}}}, RoleSupervisor, true},
		{"nil", nil, "", false},
		{"number", 42, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NormalizeRole(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidLoginPassword(t *testing.T) {
	assert.True(t, ValidLogin("inspector77"))
	assert.False(t, ValidLogin("short"))
	assert.False(t, ValidLogin("with space 123"))

	assert.True(t, ValidPassword("Sup3rv!sor"))
	assert.False(t, ValidPassword("alllower1!"))
	assert.False(t, ValidPassword("NoDigits!!"))
	assert.False(t, ValidPassword("Sh0r!"))
}

func TestValidEnumsAndLocation(t *testing.T) {
	assert.True(t, ValidSeverity(SeverityHigh))
	assert.False(t, ValidSeverity("critical"))

	assert.True(t, ValidStatus(StatusInReview))
	assert.False(t, ValidStatus("done"))

	assert.True(t, ValidLocation(GeoPoint{Lat: -23.55, Lon: -46.63}))
	assert.False(t, ValidLocation(GeoPoint{Lat: 91, Lon: 0}))
	assert.False(t, ValidLocation(GeoPoint{Lat: 0, Lon: -200}))
}
