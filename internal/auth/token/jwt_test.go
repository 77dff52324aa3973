package token

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brvnobarreto/activity-log-controller/internal/domain"
)

func TestIssueParseRoundtrip(t *testing.T) {
	m := New("test-secret", "activity-log", time.Hour)
	ctx := context.Background()
	uid := uuid.New()

	raw, issued, err := m.Issue(ctx, uid, "inspector77", domain.RoleSupervisor)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	parsed, err := m.Parse(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, issued.JTI, parsed.JTI)
	assert.Equal(t, uid, parsed.UserID)
	assert.Equal(t, "inspector77", parsed.Login)
	assert.Equal(t, domain.RoleSupervisor, parsed.Role)
	assert.WithinDuration(t, issued.ExpiresAt, parsed.ExpiresAt, time.Second)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	ctx := context.Background()
	raw, _, err := New("secret-a", "activity-log", time.Hour).
		Issue(ctx, uuid.New(), "inspector77", domain.RoleFiscal)
	require.NoError(t, err)

	_, err = New("secret-b", "activity-log", time.Hour).Parse(ctx, raw)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	ctx := context.Background()
	m := New("secret", "activity-log", -time.Minute)
	raw, _, err := m.Issue(ctx, uuid.New(), "inspector77", domain.RoleFiscal)
	require.NoError(t, err)

	_, err = m.Parse(ctx, raw)
	assert.Error(t, err)
}

func TestParseUnknownRoleFallsBackToFiscal(t *testing.T) {
	// токен со странной ролью (выпущен старой версией) не должен
	// давать супервизорских прав
	ctx := context.Background()
	m := New("secret", "activity-log", time.Hour)
	raw, _, err := m.Issue(ctx, uuid.New(), "inspector77", domain.Role("weird"))
	require.NoError(t, err)

	cl, err := m.Parse(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleFiscal, cl.Role)
}
