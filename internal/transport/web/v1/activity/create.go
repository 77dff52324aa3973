package activity

import (
	"encoding/json"
	"net/http"

	"github.com/brvnobarreto/activity-log-controller/internal/domain"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/logx"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/mw"
	v1 "github.com/brvnobarreto/activity-log-controller/internal/transport/web/v1"
)

type createMeta struct {
	Description string  `json:"description" validate:"required,min=3,max=2000"`
	Severity    string  `json:"severity"    validate:"required,oneof=low medium high"`
	Lat         float64 `json:"lat"         validate:"gte=-90,lte=90"`
	Lon         float64 `json:"lon"         validate:"gte=-180,lte=180"`
	Address     string  `json:"address"     validate:"max=500"`
	Mime        string  `json:"mime"`
}

// Create godoc
// @Summary     Register new activity
// @Description multipart: meta(json) + photo(optional). Создаёт запись о проверке со статусом open.
// @Tags        activities
// @Accept      multipart/form-data
// @Produce     json
// @Param       meta  formData string true  "JSON meta"
// @Param       photo formData file   false "photo"
// @Success     200 {object} domain.APIEnvelope{response=domain.Activity}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/activities [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "activities.create"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	me, ok := mw.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		logx.Error(h.Log, reqID, op, "parse form", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	var meta createMeta
	if s := r.FormValue("meta"); s != "" {
		if err := json.Unmarshal([]byte(s), &meta); err != nil {
			logx.Error(h.Log, reqID, op, "bad meta json", err)
			v1.WriteDomainError(w, r, domain.ErrBadParams)
			return
		}
	}
	if err := h.Validate.Struct(meta); err != nil {
		logx.Error(h.Log, reqID, op, "meta validation failed", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	a := domain.Activity{
		FiscalID:    me.ID,
		Description: meta.Description,
		Severity:    domain.Severity(meta.Severity),
		Status:      domain.StatusOpen,
		Location:    domain.GeoPoint{Lat: meta.Lat, Lon: meta.Lon},
		Address:     meta.Address,
	}

	// фото — опционально
	if fh, hdr, err := r.FormFile("photo"); err == nil {
		defer fh.Close()
		mime := meta.Mime
		if mime == "" {
			mime = hdr.Header.Get("Content-Type")
		}
		if mime == "" {
			mime = "application/octet-stream"
		}
		res, err := h.Storage.Put(r.Context(), fh, hdr.Filename, mime)
		if err != nil {
			logx.Error(h.Log, reqID, op, "storage put failed", err)
			v1.WriteDomainError(w, r, domain.ErrUnexpected)
			return
		}
		a.HasPhoto = true
		a.PhotoMIME = mime
		a.PhotoSize = res.Size
		a.StorageKey = res.StorageKey
		a.SHA256 = res.SHA256
	}

	out, err := h.Acts.CreateActivity(r.Context(), a)
	if err != nil {
		logx.Error(h.Log, reqID, op, "db create failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	// выборочная инвалидация: версия списков растёт, сводка сбрасывается
	h.bumpListVersion(r.Context())

	logx.Info(h.Log, reqID, op, "ok", "activity_id", out.ID, "severity", out.Severity)
	v1.WriteOKResponse(w, r, out)
}
