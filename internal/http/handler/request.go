package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/debt-ledger-service/internal/http/middleware"
	"github.com/sandeepkv93/debt-ledger-service/internal/http/response"
	"github.com/sandeepkv93/debt-ledger-service/internal/repository"
)

var errEmptyBody = errors.New("request body is required")

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return errors.New("invalid JSON payload")
	}
	return nil
}

// currentUserID reads the authenticated subject. It writes the 401 itself
// when the route was mounted without AuthMiddleware.
func currentUserID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	uid, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "TOKEN_MALFORMED", "Missing auth context", nil)
	}
	return uid, ok
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		badRequest(w, r, "invalid "+name+" id")
		return 0, false
	}
	return uint(id), true
}

func parsePageRequest(r *http.Request) (repository.PageRequest, error) {
	page := repository.DefaultPage
	pageSize := repository.DefaultPageSize
	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return repository.PageRequest{}, errors.New("page must be a positive integer")
		}
		page = v
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("page_size")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return repository.PageRequest{}, errors.New("page_size must be a positive integer")
		}
		if v > repository.MaxPageSize {
			return repository.PageRequest{}, fmt.Errorf("page_size must be <= %d", repository.MaxPageSize)
		}
		pageSize = v
	}
	return repository.PageRequest{Page: page, PageSize: pageSize}, nil
}

func parseDebtFilter(r *http.Request) (repository.DebtFilter, error) {
	var f repository.DebtFilter
	q := r.URL.Query()
	for name, dst := range map[string]**bool{"is_paid": &f.IsPaid, "is_my_debt": &f.IsMyDebt} {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return repository.DebtFilter{}, fmt.Errorf("%s must be true or false", name)
		}
		*dst = &v
	}
	if raw := strings.TrimSpace(q.Get("contact_id")); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || v == 0 {
			return repository.DebtFilter{}, errors.New("contact_id must be a positive integer")
		}
		id := uint(v)
		f.ContactID = &id
	}
	return f, nil
}

func paginatedData[T any](key string, res repository.PageResult[T], extra map[string]any) map[string]any {
	items := res.Items
	if items == nil {
		items = []T{}
	}
	out := map[string]any{
		key:           items,
		"total_count": res.Total,
		"pagination": map[string]any{
			"page":        res.Page,
			"page_size":   res.PageSize,
			"total":       res.Total,
			"total_pages": res.TotalPages,
		},
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
