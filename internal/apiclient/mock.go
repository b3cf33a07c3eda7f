package apiclient

import (
	"context"
	"fmt"
	"sync"

	"github.com/gosimple/slug"

	"inari-web/internal/models"
)

// MockClient is an in-memory stand-in for the API used in development.
// Edits are applied to its store so the UI behaves end to end.
type MockClient struct {
	mu          sync.RWMutex
	collections []models.Collection
	members     map[string][]string
	media       map[string]models.Media
}

// NewMockClient returns a client seeded with the development fixtures
func NewMockClient() *MockClient {
	m := NewEmptyMockClient()
	seedFixtures(m)
	return m
}

// NewEmptyMockClient returns a client with no collections
func NewEmptyMockClient() *MockClient {
	return &MockClient{
		members: make(map[string][]string),
		media:   make(map[string]models.Media),
	}
}

// Add stores media and files it into the given collections, creating any
// collection that does not exist yet.
func (m *MockClient) Add(media models.Media, collections ...models.Collection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	media.Collections = nil
	m.media[media.ID] = media
	for _, c := range collections {
		m.addToCollection(c, media.ID)
	}
}

func (m *MockClient) addToCollection(c models.Collection, mediaID string) {
	if m.collectionIndex(c.ID) < 0 {
		c.MediaCount = 0
		m.collections = append(m.collections, c)
	}
	for _, id := range m.members[c.ID] {
		if id == mediaID {
			return
		}
	}
	m.members[c.ID] = append(m.members[c.ID], mediaID)
}

func (m *MockClient) collectionIndex(id string) int {
	for i, c := range m.collections {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (m *MockClient) collection(i int) models.Collection {
	c := m.collections[i]
	c.MediaCount = len(m.members[c.ID])
	return c
}

func (m *MockClient) mediaWithCollections(id string) models.Media {
	media := m.media[id]
	media.Collections = make([]models.Collection, 0)
	for i, c := range m.collections {
		for _, memberID := range m.members[c.ID] {
			if memberID == id {
				media.Collections = append(media.Collections, m.collection(i))
				break
			}
		}
	}
	return media
}

func (m *MockClient) ListCollections(ctx context.Context, collectionType models.CollectionType) ([]models.Collection, error) {
	if collectionType == "" {
		collectionType = models.CollectionTypeTimelineMonth
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Collection, 0)
	for i, c := range m.collections {
		if c.Type != collectionType || len(m.members[c.ID]) == 0 {
			continue
		}
		out = append(out, m.collection(i))
	}
	return out, nil
}

func (m *MockClient) CollectionDetail(ctx context.Context, collectionID string) (models.CollectionDetail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.collectionIndex(collectionID)
	if i < 0 {
		return models.CollectionDetail{}, fmt.Errorf("collection detail: %w", ErrNotFound)
	}

	detail := models.CollectionDetail{
		CollectionMeta: m.collection(i),
		Media:          make([]models.Media, 0, len(m.members[collectionID])),
	}
	for _, id := range m.members[collectionID] {
		detail.Media = append(detail.Media, m.mediaWithCollections(id))
	}
	return detail, nil
}

func (m *MockClient) MediaDetail(ctx context.Context, mediaID string) (models.MediaDetail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.media[mediaID]; !ok {
		return models.MediaDetail{}, fmt.Errorf("media detail: %w", ErrNotFound)
	}
	return models.MediaDetail{Media: m.mediaWithCollections(mediaID)}, nil
}

func (m *MockClient) DeleteMedia(ctx context.Context, mediaID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.media[mediaID]; !ok {
		return fmt.Errorf("delete media: %w", ErrNotFound)
	}
	delete(m.media, mediaID)

	for collectionID, ids := range m.members {
		kept := ids[:0]
		for _, id := range ids {
			if id != mediaID {
				kept = append(kept, id)
			}
		}
		m.members[collectionID] = kept
	}
	return nil
}

func (m *MockClient) UpdateCaption(ctx context.Context, mediaID, caption string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	media, ok := m.media[mediaID]
	if !ok {
		return fmt.Errorf("update caption: %w", ErrNotFound)
	}
	media.Caption = caption
	m.media[mediaID] = media
	return nil
}

func (m *MockClient) AddHashtag(ctx context.Context, mediaID, hashtag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.media[mediaID]; !ok {
		return fmt.Errorf("add hashtag: %w", ErrNotFound)
	}

	m.addToCollection(models.Collection{
		ID:    "hashtag__" + slug.Make(hashtag),
		Title: "#" + hashtag,
		Type:  models.CollectionTypeHashtag,
	}, mediaID)
	return nil
}
