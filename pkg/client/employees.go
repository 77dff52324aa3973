package client

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/brvnobarreto/activity-log-controller/internal/domain"
	"github.com/brvnobarreto/activity-log-controller/internal/infra/cache/memo"
)

const resEmployees = "employees"

type employeesPayload struct {
	Employees []domain.User `json:"employees"`
}

// Employees возвращает список сотрудников (нужна роль супервизора).
func (c *Client) Employees(ctx context.Context, force bool) ([]domain.User, error) {
	key := c.key(resEmployees)
	out, err := memo.Fetch(ctx, c.store, key, func(ctx context.Context) ([]domain.User, error) {
		var p employeesPayload
		if err := c.doJSON(ctx, http.MethodGet, "/api/employees", nil, &p); err != nil {
			return nil, err
		}
		return p.Employees, nil
	}, memo.Options{TTL: c.ttl, Force: force})
	if err != nil {
		if force {
			c.store.Invalidate(key)
		}
		return nil, err
	}
	return out, nil
}

// UpdateEmployeeRole меняет роль и патчит кеш. role может быть строкой,
// списком или объектом флагов — сервер нормализует любую форму.
func (c *Client) UpdateEmployeeRole(ctx context.Context, id domain.UserID, role any) (domain.User, error) {
	var updated domain.User
	body := struct {
		Role any `json:"role"`
	}{Role: role}
	if err := c.doJSON(ctx, http.MethodPatch, "/api/employees/"+id.String()+"/role", body, &updated); err != nil {
		return domain.User{}, err
	}
	c.patchEmployees(func(list []domain.User) []domain.User {
		for i := range list {
			if list[i].ID == updated.ID {
				list[i] = updated
			}
		}
		return list
	})
	return updated, nil
}

// DeleteEmployee удаляет учётку и выкидывает её из кеша.
func (c *Client) DeleteEmployee(ctx context.Context, id domain.UserID) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/api/employees/"+id.String(), nil, nil); err != nil {
		return err
	}
	c.patchEmployees(func(list []domain.User) []domain.User {
		out := list[:0]
		for _, u := range list {
			if u.ID != id {
				out = append(out, u)
			}
		}
		return out
	})
	return nil
}

func (c *Client) patchEmployees(fn func([]domain.User) []domain.User) {
	key := c.key(resEmployees)
	list, ok := memo.Get[[]domain.User](c.store, key, c.ttl)
	if !ok {
		return
	}
	cp := make([]domain.User, len(list))
	copy(cp, list)
	c.store.Put(key, fn(cp))
}

// Prefetch греет оба списка параллельно (например, при старте UI).
func (c *Client) Prefetch(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := c.Activities(gctx, false)
		return err
	})
	g.Go(func() error {
		_, err := c.Employees(gctx, false)
		return err
	})
	return g.Wait()
}
