package database

import "gorm.io/gorm"

// Page одна страница результатов.
// Страница за пределами диапазона возвращает пустой список, а не ошибку.
type Page[T any] struct {
	Items   []T   `json:"items"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}

func (p Page[T]) HasNext() bool {
	return int64(p.Page*p.PerPage) < p.Total
}

func (p Page[T]) HasPrev() bool {
	return p.Page > 1
}

func (p Page[T]) NextNum() int {
	if !p.HasNext() {
		return 0
	}
	return p.Page + 1
}

func (p Page[T]) PrevNum() int {
	if !p.HasPrev() {
		return 0
	}
	return p.Page - 1
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 25
	}
	return page, perPage
}

// paginate считает общее число строк базового запроса и выбирает нужную страницу.
// base вызывается дважды, чтобы подсчёт и выборка не делили состояние запроса.
func paginate[T any](db *gorm.DB, base func() *gorm.DB, order string, preload []string, page, perPage int) (Page[T], error) {
	page, perPage = normalizePage(page, perPage)
	result := Page[T]{Items: []T{}, Page: page, PerPage: perPage}

	if err := db.Table("(?) AS sub", base()).Count(&result.Total).Error; err != nil {
		return result, err
	}
	if result.Total == 0 {
		return result, nil
	}

	q := base()
	for _, p := range preload {
		q = q.Preload(p)
	}
	err := q.Order(order).
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&result.Items).Error
	return result, err
}
