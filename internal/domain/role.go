package domain

import "strings"

// Исторически поле role в выгрузках встречается в трёх видах:
//   - строка:              "supervisor"
//   - список:              ["fiscal", ...]
//   - объект bool-флагов:  {"supervisor": true, "fiscal": false}
// (возможно с вложенностью). NormalizeRole — единственное место,
// где эта форма приводится к канонической роли.
func NormalizeRole(v any) (Role, bool) {
	switch x := v.(type) {
	case string:
		r := Role(strings.ToLower(strings.TrimSpace(x)))
		if ValidRole(r) {
			return r, true
		}
	case Role:
		if ValidRole(x) {
			return x, true
		}
	case []any:
		// берём первый элемент, который удаётся распознать
		for _, el := range x {
			if r, ok := NormalizeRole(el); ok {
				return r, true
			}
		}
	case []string:
		for _, el := range x {
			if r, ok := NormalizeRole(el); ok {
				return r, true
			}
		}
	case map[string]bool:
		m := make(map[string]any, len(x))
		for k, b := range x {
			m[k] = b
		}
		return roleFromFlags(m)
	case map[string]any:
		return roleFromFlags(x)
	}
	return "", false
}

// roleFromFlags разбирает объект флагов. Если взведены оба флага,
// побеждает supervisor. Вложенные объекты разворачиваются рекурсивно.
func roleFromFlags(m map[string]any) (Role, bool) {
	var (
		found Role
		ok    bool
	)
	for k, v := range m {
		var (
			r   Role
			rok bool
		)
		if b, isBool := v.(bool); isBool {
			if !b {
				continue
			}
			r, rok = NormalizeRole(k)
		} else {
			// вложенная структура — пробуем как самостоятельное значение
			r, rok = NormalizeRole(v)
		}
		if !rok {
			continue
		}
		if r == RoleSupervisor {
			return r, true // сильнее уже не будет
		}
		if !ok {
			found, ok = r, true
		}
	}
	return found, ok
}
