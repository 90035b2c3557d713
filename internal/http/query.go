package router

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Renal37/cardledger/internal/middlewares"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// intParam читает целый параметр запроса. Пустое значение дает fallback.
func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, fmt.Errorf("query parameter %s must be a positive integer", name)
	}
	return value, nil
}

// pageParams читает page и pageSize. При ошибке уже ответил 400.
func pageParams(w http.ResponseWriter, r *http.Request) (page, pageSize int, ok bool) {
	page, err := intParam(r, "page", 1)
	if err != nil {
		middlewares.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return 0, 0, false
	}

	pageSize, err = intParam(r, "pageSize", defaultPageSize)
	if err != nil {
		middlewares.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return 0, 0, false
	}

	return page, min(pageSize, maxPageSize), true
}
