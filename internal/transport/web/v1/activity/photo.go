package activity

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/brvnobarreto/activity-log-controller/internal/domain"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/logx"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/mw"
	v1 "github.com/brvnobarreto/activity-log-controller/internal/transport/web/v1"
)

// Photo godoc
// @Summary     Stream activity photo
// @Description Отдаёт фото из S3, поддерживает Range и HEAD.
// @Tags        activities
// @Produce     octet-stream
// @Param       id    path   string true  "activity id"
// @Param       Range header string false "bytes range"
// @Success     200 "full content"
// @Success     206 "partial content"
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/activities/{id}/photo [get]
func (h *Handler) Photo(w http.ResponseWriter, r *http.Request) {
	const op = "activities.photo"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := mw.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}
	id, err := uuid.Parse(unescape(r.PathValue("id")))
	if err != nil {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	a, err := h.loadActivity(r.Context(), id)
	if err != nil {
		logx.Error(h.Log, reqID, op, "load failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}
	if !canSee(me, a) || !a.HasPhoto {
		v1.WriteDomainError(w, r, domain.ErrNotFound)
		return
	}

	rangeHdr := r.Header.Get("Range")
	rc, clen, contentRange, ctype, etag, err := h.Storage.Get(r.Context(), a.StorageKey, rangeHdr)
	if err != nil {
		if errors.Is(err, domain.ErrRangeInvalid) {
			w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", a.PhotoSize))
			w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
			return
		}
		logx.Error(h.Log, reqID, op, "storage get failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	defer rc.Close()

	if a.PhotoMIME != "" {
		ctype = a.PhotoMIME
	}
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Length", strconv.FormatInt(clen, 10))
	if etag != "" {
		w.Header().Set("ETag", etag)
	}
	w.Header().Set("Last-Modified", httpTime(a.UpdatedAt))

	status := http.StatusOK
	if contentRange != "" {
		w.Header().Set("Content-Range", contentRange)
		status = http.StatusPartialContent
	}
	w.WriteHeader(status)

	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, rc); err != nil {
		// клиент мог оборвать соединение — просто фиксируем
		logx.Error(h.Log, reqID, op, "stream interrupted", err)
	}
}
