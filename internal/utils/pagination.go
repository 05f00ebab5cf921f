// Package utils provides small helpers used across layers that carry no
// domain knowledge.
package utils

import "strconv"

// AtoiDefault converts s with strconv.Atoi, returning def when s is empty
// or not an integer.
//
//	utils.AtoiDefault("42", 0) // 42
//	utils.AtoiDefault("", 10)  // 10
//	utils.AtoiDefault("x", 5)  // 5
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// Page is a resolved page request.
type Page struct {
	Number int // 1-based
	Size   int
}

// ParsePage reads raw page/size query values. Missing or malformed values
// take the defaults; the number is at least 1 and the size lies in [1, maxSize].
func ParsePage(rawPage, rawSize string, defSize, maxSize int) Page {
	p := Page{
		Number: AtoiDefault(rawPage, 1),
		Size:   AtoiDefault(rawSize, defSize),
	}
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = 1
	}
	if p.Size > maxSize {
		p.Size = maxSize
	}
	return p
}

// Offset is the number of rows before the page.
func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// TotalPages is ceil(total/size).
func (p Page) TotalPages(total int64) int {
	if p.Size <= 0 {
		return 0
	}
	return int((total + int64(p.Size) - 1) / int64(p.Size))
}

// HasNext reports whether pages follow p.
func (p Page) HasNext(total int64) bool { return p.Number < p.TotalPages(total) }
