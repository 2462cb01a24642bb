package handling

import (
	"net/http"
	"rentkart_server/structs"
	"strconv"
	"strings"
	"time"
)

// ParseProductListOptions parses HTTP query parameters into ProductListOptions
func ParseProductListOptions(r *http.Request) (*structs.ProductListOptions, error) {
	query := r.URL.Query()

	if len(query) == 0 {
		return &structs.ProductListOptions{}, nil
	}

	opts := &structs.ProductListOptions{}
	var err error
	var val64 int64
	var valInt int
	var valBool bool

	if page := query.Get("page"); page != "" {
		if valInt, err = strconv.Atoi(page); err != nil {
			return nil, err
		}
		opts.Page = valInt
	}

	if pageSize := query.Get("page_size"); pageSize != "" {
		if valInt, err = strconv.Atoi(pageSize); err != nil {
			return nil, err
		}
		opts.PageSize = valInt
	}

	if isPublished := query.Get("is_published"); isPublished != "" {
		if valBool, err = strconv.ParseBool(isPublished); err != nil {
			return nil, err
		}
		opts.IsPublished = &valBool
	}

	if isRentable := query.Get("is_rentable"); isRentable != "" {
		if valBool, err = strconv.ParseBool(isRentable); err != nil {
			return nil, err
		}
		opts.IsRentable = &valBool
	}

	if searchTerm := query.Get("search"); searchTerm != "" {
		opts.SearchTerm = searchTerm
	}

	// Price bounds are cents on the daily pricing tier
	if minPrice := query.Get("min_price"); minPrice != "" {
		if val64, err = strconv.ParseInt(minPrice, 10, 64); err != nil {
			return nil, err
		}
		opts.MinPrice = &val64
	}

	if maxPrice := query.Get("max_price"); maxPrice != "" {
		if val64, err = strconv.ParseInt(maxPrice, 10, 64); err != nil {
			return nil, err
		}
		opts.MaxPrice = &val64
	}

	if skus := query.Get("skus"); skus != "" {
		opts.SKUs = splitAndTrim(skus)
	}

	if createdAfter := query.Get("created_after"); createdAfter != "" {
		t, err := time.Parse(time.RFC3339, createdAfter)
		if err != nil {
			return nil, err
		}
		opts.CreatedAfter = &t
	}

	if createdBefore := query.Get("created_before"); createdBefore != "" {
		t, err := time.Parse(time.RFC3339, createdBefore)
		if err != nil {
			return nil, err
		}
		opts.CreatedBefore = &t
	}

	if sortBy := query.Get("sort_by"); sortBy != "" {
		opts.SortBy = sortBy
	}

	if sortDirection := query.Get("sort_direction"); sortDirection != "" {
		opts.SortDirection = strings.ToUpper(sortDirection)
	}

	return opts, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace efficiently
func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
