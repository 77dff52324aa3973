package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/brvnobarreto/activity-log-controller/internal/domain"
	"github.com/brvnobarreto/activity-log-controller/internal/infra/cache/memo"
)

const resActivities = "activities"

type activitiesPayload struct {
	Activities []domain.Activity `json:"activities"`
}

// Activities возвращает список записей. Свежий кеш — без сети; force
// игнорирует свежесть, но присоединяется к уже летящему запросу.
func (c *Client) Activities(ctx context.Context, force bool) ([]domain.Activity, error) {
	key := c.key(resActivities)
	out, err := memo.Fetch(ctx, c.store, key, func(ctx context.Context) ([]domain.Activity, error) {
		var p activitiesPayload
		if err := c.doJSON(ctx, http.MethodGet, "/api/activities", nil, &p); err != nil {
			return nil, err
		}
		return p.Activities, nil
	}, memo.Options{TTL: c.ttl, Force: force})
	if err != nil {
		if force {
			// провал принудительного обновления: кеш больше не авторитетен
			c.store.Invalidate(key)
		}
		return nil, err
	}
	return out, nil
}

// NewActivity — параметры создания записи.
type NewActivity struct {
	Description string          `json:"description"`
	Severity    domain.Severity `json:"severity"`
	Lat         float64         `json:"lat"`
	Lon         float64         `json:"lon"`
	Address     string          `json:"address,omitempty"`
	Mime        string          `json:"mime,omitempty"`
}

// CreateActivity создаёт запись (фото опционально) и патчит кешированный
// список на месте — без повторного запроса.
func (c *Client) CreateActivity(ctx context.Context, meta NewActivity, photo io.Reader, photoName string) (domain.Activity, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("client: encode meta: %w", err)
	}
	if err := mw.WriteField("meta", string(metaJSON)); err != nil {
		return domain.Activity{}, fmt.Errorf("client: write meta: %w", err)
	}
	if photo != nil {
		fw, err := mw.CreateFormFile("photo", photoName)
		if err != nil {
			return domain.Activity{}, fmt.Errorf("client: create photo part: %w", err)
		}
		if _, err := io.Copy(fw, photo); err != nil {
			return domain.Activity{}, fmt.Errorf("client: copy photo: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return domain.Activity{}, fmt.Errorf("client: close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/activities", &buf)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var created domain.Activity
	if err := c.send(req, &created); err != nil {
		return domain.Activity{}, err
	}

	c.patchActivities(func(list []domain.Activity) []domain.Activity {
		// новые записи сервер отдаёт первыми (created_desc)
		return append([]domain.Activity{created}, list...)
	})
	return created, nil
}

// UpdateActivityStatus меняет статус и обновляет запись в кеше.
func (c *Client) UpdateActivityStatus(ctx context.Context, id domain.ActivityID, st domain.Status) (domain.Activity, error) {
	var updated domain.Activity
	body := struct {
		Status domain.Status `json:"status"`
	}{Status: st}
	if err := c.doJSON(ctx, http.MethodPatch, "/api/activities/"+id.String()+"/status", body, &updated); err != nil {
		return domain.Activity{}, err
	}
	c.patchActivities(func(list []domain.Activity) []domain.Activity {
		for i := range list {
			if list[i].ID == updated.ID {
				list[i] = updated
			}
		}
		return list
	})
	return updated, nil
}

// DeleteActivity удаляет запись и выкидывает её из кеша.
func (c *Client) DeleteActivity(ctx context.Context, id domain.ActivityID) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/api/activities/"+id.String(), nil, nil); err != nil {
		return err
	}
	c.patchActivities(func(list []domain.Activity) []domain.Activity {
		out := list[:0]
		for _, a := range list {
			if a.ID != id {
				out = append(out, a)
			}
		}
		return out
	})
	return nil
}

// patchActivities применяет правку к кешированному списку, если он есть.
// Промах кеша — значит патчить нечего, следующий Fetch всё равно пойдёт в сеть.
func (c *Client) patchActivities(fn func([]domain.Activity) []domain.Activity) {
	key := c.key(resActivities)
	list, ok := memo.Get[[]domain.Activity](c.store, key, c.ttl)
	if !ok {
		return
	}
	cp := make([]domain.Activity, len(list))
	copy(cp, list)
	c.store.Put(key, fn(cp))
}
