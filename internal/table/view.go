// Package table - сортируемая постраничная таблица поверх произвольного среза.
package table

import (
	"errors"
	"reflect"
	"slices"
	"sort"
	"strings"
)

var ErrUnknownField = errors.New("unknown sort field")

const DefaultPageSize = 10

// Selector достает значение колонки из записи.
type Selector[T any] func(T) any

// Page - одна страница таблицы в том виде, в каком она уходит клиенту.
type Page[T any] struct {
	Items       []T `json:"items"`
	TotalData   int `json:"totalData"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
}

// View хранит исходные записи и текущее представление: поиск, сортировку, страницу.
// Исходный срез не меняется, кроме как через Delete.
type View[T any] struct {
	source    []T
	rows      []T
	idOf      func(T) string
	selectors map[string]Selector[T]

	term     string
	sortKey  string
	sortBy   Selector[T]
	desc     bool
	pageSize int
	page     int
}

// New создает таблицу. idOf нужен только для Delete и может быть nil.
func New[T any](items []T, pageSize int, idOf func(T) string) *View[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	v := &View[T]{
		source:    slices.Clone(items),
		idOf:      idOf,
		selectors: make(map[string]Selector[T]),
		pageSize:  pageSize,
		page:      1,
	}
	v.refresh()
	return v
}

// Register добавляет типизированную колонку. Она имеет приоритет над путем с тем же именем.
func (v *View[T]) Register(key string, selector Selector[T]) {
	v.selectors[key] = selector
}

// Search фильтрует по подстроке во всех строковых полях и возвращает на первую страницу.
func (v *View[T]) Search(term string) {
	v.term = strings.ToLower(strings.TrimSpace(term))
	v.page = 1
	v.refresh()
}

// SortBy сортирует по колонке. Повторный вызов с той же колонкой переключает
// порядок на обратный, новая колонка сортируется по возрастанию.
func (v *View[T]) SortBy(key string) error {
	if key == v.sortKey && v.sortBy != nil {
		return v.Sort(key, !v.desc)
	}
	return v.Sort(key, false)
}

// Sort задает колонку и порядок явно.
func (v *View[T]) Sort(key string, desc bool) error {
	selector, err := v.selector(key)
	if err != nil {
		return err
	}

	v.sortKey = key
	v.sortBy = selector
	v.desc = desc
	v.refresh()
	return nil
}

func (v *View[T]) selector(key string) (Selector[T], error) {
	if selector, ok := v.selectors[key]; ok {
		return selector, nil
	}

	var zero T
	path, err := compilePath(reflect.TypeOf(&zero).Elem(), key)
	if err != nil {
		return nil, err
	}
	return func(item T) any { return path.resolve(item) }, nil
}

// Paginate переходит на страницу, зажимая номер в [1, TotalPages].
func (v *View[T]) Paginate(page int) {
	v.page = min(max(page, 1), v.TotalPages())
}

// Next переходит на следующую страницу, если она есть.
func (v *View[T]) Next() {
	v.Paginate(v.page + 1)
}

// Prev переходит на предыдущую страницу.
func (v *View[T]) Prev() {
	v.Paginate(v.page - 1)
}

// Delete убирает видимую запись из источника, пересчитывает страницы и зажимает
// текущую. Запись, скрытая поиском, не удаляется: TotalData всегда уменьшается ровно на 1.
func (v *View[T]) Delete(id string) bool {
	if v.idOf == nil {
		return false
	}

	matches := func(item T) bool { return v.idOf(item) == id }
	if !slices.ContainsFunc(v.rows, matches) {
		return false
	}

	index := slices.IndexFunc(v.source, matches)
	if index < 0 {
		return false
	}

	v.source = slices.Delete(v.source, index, index+1)
	v.refresh()
	return true
}

// TotalData возвращает число строк после поиска.
func (v *View[T]) TotalData() int {
	return len(v.rows)
}

// TotalPages возвращает число страниц, минимум одна.
func (v *View[T]) TotalPages() int {
	pages := (len(v.rows) + v.pageSize - 1) / v.pageSize
	return max(pages, 1)
}

// CurrentPage возвращает номер текущей страницы с единицы.
func (v *View[T]) CurrentPage() int {
	return v.page
}

// Rows - все записи после поиска и сортировки.
func (v *View[T]) Rows() []T {
	return slices.Clone(v.rows)
}

// Page возвращает строки текущей страницы.
func (v *View[T]) Page() Page[T] {
	start := (v.page - 1) * v.pageSize
	end := min(start+v.pageSize, len(v.rows))

	items := make([]T, 0, max(end-start, 0))
	if start < end {
		items = append(items, v.rows[start:end]...)
	}

	return Page[T]{
		Items:       items,
		TotalData:   len(v.rows),
		TotalPages:  v.TotalPages(),
		CurrentPage: v.page,
	}
}

func (v *View[T]) refresh() {
	rows := make([]T, 0, len(v.source))
	for _, item := range v.source {
		if v.term == "" || containsText(reflect.ValueOf(item), v.term) {
			rows = append(rows, item)
		}
	}

	if v.sortBy != nil {
		sort.SliceStable(rows, func(i, j int) bool {
			return compareValues(v.sortBy(rows[i]), v.sortBy(rows[j])) < 0
		})
		// Обратный порядок - ровно развернутый прямой, включая равные элементы.
		if v.desc {
			slices.Reverse(rows)
		}
	}

	v.rows = rows
	v.page = min(max(v.page, 1), v.TotalPages())
}
