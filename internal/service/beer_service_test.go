package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tapline/brewlog/internal/domain"
)

// MockBeerRepository is a mock implementation of repository.BeerRepository.
type MockBeerRepository struct {
	mu       sync.Mutex
	beers    map[int64]*domain.Beer
	comments map[int64][]int64 // beerID -> ordered comment IDs
	nextID   int64
}

func NewMockBeerRepository() *MockBeerRepository {
	return &MockBeerRepository{
		beers:    make(map[int64]*domain.Beer),
		comments: make(map[int64][]int64),
		nextID:   1,
	}
}

func (m *MockBeerRepository) Create(ctx context.Context, beer *domain.Beer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	beer.ID = m.nextID
	m.nextID++
	m.beers[beer.ID] = beer
	return nil
}

func (m *MockBeerRepository) GetByID(ctx context.Context, id int64) (*domain.Beer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, exists := m.beers[id]
	if !exists {
		return nil, domain.ErrBeerNotFound
	}
	copied := *b
	copied.CommentIDs = append([]int64(nil), m.comments[id]...)
	return &copied, nil
}

func (m *MockBeerRepository) List(ctx context.Context) ([]*domain.Beer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Beer
	for id := int64(1); id < m.nextID; id++ {
		if b, exists := m.beers[id]; exists {
			result = append(result, b)
		}
	}
	return result, nil
}

func (m *MockBeerRepository) AppendComment(ctx context.Context, beerID, commentID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.beers[beerID]; !exists {
		return domain.ErrBeerNotFound
	}
	m.comments[beerID] = append(m.comments[beerID], commentID)
	return nil
}

// MockCommentRepository is a mock implementation of repository.CommentRepository.
type MockCommentRepository struct {
	mu       sync.Mutex
	comments map[int64]*domain.Comment
	nextID   int64
}

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{
		comments: make(map[int64]*domain.Comment),
		nextID:   1,
	}
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	comment.ID = m.nextID
	m.nextID++
	m.comments[comment.ID] = comment
	return nil
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, exists := m.comments[id]; exists {
		return c, nil
	}
	return nil, domain.ErrCommentNotFound
}

func (m *MockCommentRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.Comment, 0, len(ids))
	for _, id := range ids {
		if c, exists := m.comments[id]; exists {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *MockCommentRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.comments)
}

// =============================================================================
// Tests
// =============================================================================

func TestBeerService_Create(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateBeerInput
		wantErr error
	}{
		{
			name:    "success",
			input:   CreateBeerInput{Name: "IPA", ImageURL: "https://example.com/ipa.jpg", Description: "Hoppy"},
			wantErr: nil,
		},
		{
			name:    "missing name",
			input:   CreateBeerInput{ImageURL: "https://example.com/ipa.jpg", Description: "Hoppy"},
			wantErr: ErrBeerNameRequired,
		},
		{
			name:    "missing image",
			input:   CreateBeerInput{Name: "IPA", Description: "Hoppy"},
			wantErr: ErrBeerImageRequired,
		},
		{
			name:    "missing description",
			input:   CreateBeerInput{Name: "IPA", ImageURL: "https://example.com/ipa.jpg"},
			wantErr: ErrBeerDescriptionRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewBeerService(NewMockBeerRepository(), NewMockCommentRepository(), zerolog.Nop())
			beer, err := svc.Create(context.Background(), tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if beer.ID == 0 {
				t.Error("expected assigned beer ID")
			}
			if len(beer.CommentIDs) != 0 {
				t.Errorf("expected empty comment sequence, got %v", beer.CommentIDs)
			}
		})
	}
}

func TestBeerService_Get_ExpandsCommentsInOrder(t *testing.T) {
	beerRepo := NewMockBeerRepository()
	commentRepo := NewMockCommentRepository()
	svc := NewBeerService(beerRepo, commentRepo, zerolog.Nop())

	beer, err := svc.Create(context.Background(), CreateBeerInput{
		Name: "Stout", ImageURL: "https://example.com/stout.jpg", Description: "Dark",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	texts := []string{"first", "second", "third"}
	for _, text := range texts {
		if _, err := svc.AttachComment(context.Background(), AttachCommentInput{
			BeerID: beer.ID, Text: text, AuthorID: 1, AuthorName: "bob",
		}); err != nil {
			t.Fatalf("attach failed: %v", err)
		}
	}

	detail, err := svc.Get(context.Background(), beer.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(detail.Comments) != len(texts) {
		t.Fatalf("expected %d comments, got %d", len(texts), len(detail.Comments))
	}
	for i, text := range texts {
		if detail.Comments[i].Text != text {
			t.Errorf("comment %d: expected %q, got %q", i, text, detail.Comments[i].Text)
		}
	}
}

func TestBeerService_Get_NotFound(t *testing.T) {
	svc := NewBeerService(NewMockBeerRepository(), NewMockCommentRepository(), zerolog.Nop())

	if _, err := svc.Get(context.Background(), 42); !errors.Is(err, ErrBeerNotFound) {
		t.Errorf("expected ErrBeerNotFound, got %v", err)
	}
}

func TestBeerService_AttachComment_EmptyText(t *testing.T) {
	commentRepo := NewMockCommentRepository()
	svc := NewBeerService(NewMockBeerRepository(), commentRepo, zerolog.Nop())

	_, err := svc.AttachComment(context.Background(), AttachCommentInput{
		BeerID: 1, Text: "", AuthorID: 1, AuthorName: "bob",
	})
	if !errors.Is(err, ErrCommentTextRequired) {
		t.Errorf("expected ErrCommentTextRequired, got %v", err)
	}
	if commentRepo.Count() != 0 {
		t.Error("validation failure still created a comment")
	}
}

func TestBeerService_AttachComment_BeerMissingLeavesOrphan(t *testing.T) {
	beerRepo := NewMockBeerRepository()
	commentRepo := NewMockCommentRepository()
	svc := NewBeerService(beerRepo, commentRepo, zerolog.Nop())

	_, err := svc.AttachComment(context.Background(), AttachCommentInput{
		BeerID: 42, Text: "into the void", AuthorID: 1, AuthorName: "bob",
	})
	if !errors.Is(err, ErrBeerNotFound) {
		t.Fatalf("expected ErrBeerNotFound, got %v", err)
	}

	// The comment persisted in phase one is not rolled back. It exists
	// standalone and no beer references it.
	if got := commentRepo.Count(); got != 1 {
		t.Fatalf("expected 1 orphaned comment, got %d", got)
	}
	for _, ids := range beerRepo.comments {
		if len(ids) != 0 {
			t.Errorf("orphaned comment leaked into a beer sequence: %v", ids)
		}
	}
}

func TestBeerService_AttachComment_Concurrent(t *testing.T) {
	beerRepo := NewMockBeerRepository()
	commentRepo := NewMockCommentRepository()
	svc := NewBeerService(beerRepo, commentRepo, zerolog.Nop())

	beer, err := svc.Create(context.Background(), CreateBeerInput{
		Name: "Pilsner", ImageURL: "https://example.com/pils.jpg", Description: "Crisp",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const writers = 10
	var wg sync.WaitGroup
	errs := make([]error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.AttachComment(context.Background(), AttachCommentInput{
				BeerID:     beer.ID,
				Text:       fmt.Sprintf("comment %d", i),
				AuthorID:   int64(i + 1),
				AuthorName: fmt.Sprintf("user%d", i),
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("writer %d failed: %v", i, err)
		}
	}

	// Every append landed, each exactly once.
	detail, err := svc.Get(context.Background(), beer.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(detail.Comments) != writers {
		t.Fatalf("expected %d comments, got %d", writers, len(detail.Comments))
	}
	seen := make(map[int64]bool)
	for _, c := range detail.Comments {
		if seen[c.ID] {
			t.Errorf("comment %d appears twice", c.ID)
		}
		seen[c.ID] = true
	}
}
