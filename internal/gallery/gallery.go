// Package gallery holds the navigation model behind the single-item viewer:
// an ordered media list split into the items before the current one, the
// current item, and the items after it.
package gallery

import (
	"sort"

	"inari-web/internal/models"
)

// Model is the prev/current/next partition of an ordered media list.
// Models are values; every operation returns a new Model.
type Model struct {
	prev    []models.Media
	current *models.Media
	next    []models.Media
}

// New partitions media around the first item whose ID is currentID.
// When currentID is not present there is no current item and every item
// is placed in prev.
func New(media []models.Media, currentID string) Model {
	m := Model{
		prev: make([]models.Media, 0, len(media)),
		next: make([]models.Media, 0),
	}

	for i := range media {
		item := media[i]
		switch {
		case m.current == nil && currentID != "" && item.ID == currentID:
			m.current = &item
		case m.current == nil:
			m.prev = append(m.prev, item)
		default:
			m.next = append(m.next, item)
		}
	}

	return m
}

// FromCollection sorts the collection chronologically and makes the
// earliest item current.
func FromCollection(detail models.CollectionDetail) Model {
	sorted := SortByDate(detail.Media)
	if len(sorted) == 0 {
		return New(nil, "")
	}
	return New(sorted, sorted[0].ID)
}

// SortByDate returns a chronologically ordered copy of media. Items with
// equal dates keep their relative order.
func SortByDate(media []models.Media) []models.Media {
	out := make([]models.Media, len(media))
	copy(out, media)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Taken().Before(out[j].Taken())
	})
	return out
}

// List returns the full ordered list
func (m Model) List() []models.Media {
	out := make([]models.Media, 0, m.Len())
	out = append(out, m.prev...)
	if m.current != nil {
		out = append(out, *m.current)
	}
	return append(out, m.next...)
}

// Len returns the number of items in the model
func (m Model) Len() int {
	n := len(m.prev) + len(m.next)
	if m.current != nil {
		n++
	}
	return n
}

// Current returns the current item, if any
func (m Model) Current() (models.Media, bool) {
	if m.current == nil {
		return models.Media{}, false
	}
	return *m.current, true
}

// Position returns the 1-based index of the current item, 0 when none
func (m Model) Position() int {
	if m.current == nil {
		return 0
	}
	return len(m.prev) + 1
}

func (m Model) Prev() []models.Media { return m.prev }

func (m Model) Next() []models.Media { return m.next }

func (m Model) HasPrev() bool { return m.current != nil && len(m.prev) > 0 }

func (m Model) HasNext() bool { return m.current != nil && len(m.next) > 0 }

// PrevItem returns the item immediately before the current one
func (m Model) PrevItem() (models.Media, bool) {
	if !m.HasPrev() {
		return models.Media{}, false
	}
	return m.prev[len(m.prev)-1], true
}

// NextItem returns the item immediately after the current one
func (m Model) NextItem() (models.Media, bool) {
	if !m.HasNext() {
		return models.Media{}, false
	}
	return m.next[0], true
}

// MoveNext makes the following item current. At the end it is a no-op.
func (m Model) MoveNext() Model {
	item, ok := m.NextItem()
	if !ok {
		return m
	}
	return m.Select(item.ID)
}

// MovePrev makes the preceding item current. At the start it is a no-op.
func (m Model) MovePrev() Model {
	item, ok := m.PrevItem()
	if !ok {
		return m
	}
	return m.Select(item.ID)
}

// Select re-partitions the list around id
func (m Model) Select(id string) Model {
	return New(m.List(), id)
}

// Delete removes id from the list. Deleting the current item moves to the
// following item, or the preceding one at the end of the list.
func (m Model) Delete(id string) Model {
	list := m.List()
	remaining := make([]models.Media, 0, len(list))
	for _, item := range list {
		if item.ID != id {
			remaining = append(remaining, item)
		}
	}

	if m.current == nil {
		return New(remaining, "")
	}
	if m.current.ID != id {
		return New(remaining, m.current.ID)
	}

	if item, ok := m.NextItem(); ok {
		return New(remaining, item.ID)
	}
	if item, ok := m.PrevItem(); ok {
		return New(remaining, item.ID)
	}
	return New(remaining, "")
}

// UpdateCaption replaces the caption of id, keeping the current item
func (m Model) UpdateCaption(id, caption string) Model {
	list := m.List()
	for i := range list {
		if list[i].ID == id {
			list[i].Caption = caption
		}
	}

	currentID := ""
	if m.current != nil {
		currentID = m.current.ID
	}
	return New(list, currentID)
}
