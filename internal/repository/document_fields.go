package repository

import "fmt"

// Page is one typed listing page.
type Page[T any] struct {
	Total int
	Items []T
}

func mapPage[T any](list *DocumentList, convert func(*Document) T) *Page[T] {
	page := &Page[T]{Total: list.Total, Items: make([]T, 0, len(list.Documents))}
	for i := range list.Documents {
		page.Items = append(page.Items, convert(&list.Documents[i]))
	}
	return page
}

func stringField(data map[string]any, key string) string {
	switch v := data[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func boolField(data map[string]any, key string) bool {
	switch v := data[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

func stringSliceField(data map[string]any, key string) []string {
	switch v := data[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}
