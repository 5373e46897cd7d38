package service

const (
	DefaultPageLimit = 25
	MaxPageLimit     = 100
)

// normalizePage applies listing defaults: limit 25 when unset, capped at 100; offset >= 0.
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
