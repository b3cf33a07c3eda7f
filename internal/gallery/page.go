package gallery

import "inari-web/internal/models"

// DefaultPerPage is used when no page size is requested
const DefaultPerPage = 40

// Page is one page of a media grid
type Page struct {
	Items      []models.Media
	Number     int
	PerPage    int
	TotalPages int
	TotalItems int
}

func (p Page) HasPrev() bool { return p.Number > 1 }

func (p Page) HasNext() bool { return p.Number < p.TotalPages }

func (p Page) PrevNumber() int { return p.Number - 1 }

func (p Page) NextNumber() int { return p.Number + 1 }

// Paginate slices items into the requested page. Page numbers are clamped
// to the available range.
func Paginate(items []models.Media, page, perPage int) Page {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	total := len(items)
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}

	return Page{
		Items:      items[start:end],
		Number:     page,
		PerPage:    perPage,
		TotalPages: totalPages,
		TotalItems: total,
	}
}

// PageOf returns the page number that holds the item at the 1-based position
func PageOf(position, perPage int) int {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if position < 1 {
		return 1
	}
	return (position-1)/perPage + 1
}
