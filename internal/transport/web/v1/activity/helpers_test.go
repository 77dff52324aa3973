package activity

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/brvnobarreto/activity-log-controller/internal/domain"
)

func TestWeakETag(t *testing.T) {
	et := weakETag(7, []byte{0xde, 0xad, 0xbe, 0xef, 0x01, 0x02})
	assert.Equal(t, `W/"7-deadbeef"`, et)

	// без фото — только версия
	assert.Equal(t, `W/"1-"`, weakETag(1, nil))
}

func TestNormalizeSort(t *testing.T) {
	assert.Equal(t, domain.SortByCreatedAsc, normalizeSort("created_asc"))
	assert.Equal(t, domain.SortBySeverityDesc, normalizeSort("severity"))
	assert.Equal(t, domain.SortByCreatedDesc, normalizeSort(""))
	assert.Equal(t, domain.SortByCreatedDesc, normalizeSort("garbage"))
}

func TestListCacheKey(t *testing.T) {
	me := domain.User{ID: uuid.New(), Role: domain.RoleFiscal}
	f := domain.ListFilter{
		Status: domain.StatusOpen,
		Limit:  50,
		Sort:   domain.SortByCreatedDesc,
	}

	k1 := listCacheKey(me, f, 3)
	k2 := listCacheKey(me, f, 3)
	assert.Equal(t, k1, k2, "same inputs must give a stable key")
	assert.True(t, strings.HasPrefix(k1, "actlist:"))

	// смена версии обязана дать другой ключ (так работает инвалидация)
	assert.NotEqual(t, k1, listCacheKey(me, f, 4))

	// другой пользователь — другой ключ
	other := domain.User{ID: uuid.New(), Role: domain.RoleFiscal}
	assert.NotEqual(t, k1, listCacheKey(other, f, 3))

	// фильтры влияют на ключ
	f2 := f
	f2.Severity = domain.SeverityHigh
	assert.NotEqual(t, k1, listCacheKey(me, f2, 3))

	f3 := f
	f3.From = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.NotEqual(t, k1, listCacheKey(me, f3, 3))
}

func TestCanSee(t *testing.T) {
	owner := domain.User{ID: uuid.New(), Role: domain.RoleFiscal}
	boss := domain.User{ID: uuid.New(), Role: domain.RoleSupervisor}
	stranger := domain.User{ID: uuid.New(), Role: domain.RoleFiscal}

	a := domain.Activity{ID: uuid.New(), FiscalID: owner.ID}

	assert.True(t, canSee(owner, a))
	assert.True(t, canSee(boss, a))
	assert.False(t, canSee(stranger, a))
}
