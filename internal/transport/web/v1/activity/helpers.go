package activity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	srt "sort"
	"strconv"
	"strings"
	"time"

	"github.com/brvnobarreto/activity-log-controller/internal/domain"
)

func weakETag(version int64, sha []byte) string {
	pref := hex.EncodeToString(sha)
	if len(pref) > 8 {
		pref = pref[:8]
	}
	return fmt.Sprintf(`W/"%d-%s"`, version, pref)
}

func httpTime(t time.Time) string { return t.UTC().Format(time.RFC1123) }

// формирует стабильный ключ кэша списка; ver — версия списков из Redis,
// после мутаций она растёт и старые ключи отмирают по TTL
func listCacheKey(me domain.User, f domain.ListFilter, ver int64) string {
	parts := []string{
		"user=" + me.ID.String(),
		"role=" + string(me.Role),
		"login=" + f.FiscalLogin,
		"status=" + string(f.Status),
		"severity=" + string(f.Severity),
		"from=" + f.From.UTC().Format(time.RFC3339),
		"to=" + f.To.UTC().Format(time.RFC3339),
		"sort=" + string(f.Sort),
		"after_created=" + f.AfterCreated.UTC().Format(time.RFC3339Nano),
		"after_id=" + f.AfterID.String(),
		fmt.Sprintf("limit=%d", f.Limit),
		fmt.Sprintf("ver=%d", ver),
	}
	srt.Strings(parts)
	return domain.CacheKeyActivityList(sha256hex(strings.Join(parts, "&")))
}

func sha256hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// listVersion читает текущую версию списков; отсутствие ключа — версия 0
func (h *Handler) listVersion(ctx context.Context) int64 {
	b, err := h.Cache.Get(ctx, domain.CacheKeyListVersion())
	if err != nil || len(b) == 0 {
		return 0
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// bumpListVersion двигает версию и сбрасывает кэш сводки; ошибки кеша
// не фатальны — максимум лишний поход в БД
func (h *Handler) bumpListVersion(ctx context.Context) {
	if _, err := h.Cache.Incr(ctx, domain.CacheKeyListVersion()); err != nil {
		h.Log.Printf("bump list version: %v", err)
	}
	_ = h.Cache.Del(ctx, domain.CacheKeySummary())
}

// нормализация sort из query
func normalizeSort(s string) domain.ListSort {
	switch s {
	case "created_asc":
		return domain.SortByCreatedAsc
	case "severity":
		return domain.SortBySeverityDesc
	default:
		return domain.SortByCreatedDesc
	}
}

// для safety: url.PathUnescape id из path-параметра
func unescape(s string) string {
	u, _ := url.PathUnescape(s)
	return u
}
