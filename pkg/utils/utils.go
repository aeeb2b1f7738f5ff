package utils

import (
	"bytes"
	"encoding/json"
	"regexp"

	"github.com/gofiber/fiber/v2"
)

type Map map[string]string

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// StrictBodyParser parses the request body strictly and returns an error if
// the body contains unknown fields.
func StrictBodyParser(c *fiber.Ctx, out interface{}) error {
	decoder := json.NewDecoder(bytes.NewReader(c.Body()))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return err
	}
	return nil
}

// Contains checks if a string exists in a slice of strings.
func Contains(arr []string, str string) bool {
	for _, a := range arr {
		if a == str {
			return true
		}
	}
	return false
}

// Pagination carries the derived paging fields public listings answer with.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	HasMore     bool  `json:"hasMore"`
	TotalCount  int64 `json:"totalCount"`
}

// NewPagination normalizes page/limit (both floored at 1) and derives the
// total page count from the row total.
func NewPagination(page, limit int, total int64) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		HasMore:     page < totalPages,
		TotalCount:  total,
	}
}
