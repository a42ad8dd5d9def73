package restblog

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

var april5 = time.Date(2024, time.April, 5, 10, 30, 0, 0, time.UTC)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "test_posts.db")
	s, err := NewStore(path, WithStoreClock(func() time.Time { return april5 }))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func helloFields() PostFields {
	return PostFields{
		Title:    "Hello",
		Subtitle: "World",
		Author:   "A",
		Body:     "B",
		ImgURL:   "https://x.com/i.png",
	}
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
}

func TestCreateAndGetPost(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	created, err := s.CreatePost(ctx, helloFields())
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if created.ID <= 0 {
		t.Fatalf("ID = %d, want a positive id", created.ID)
	}
	if created.Date != "April 05, 2024" {
		t.Errorf("Date = %q, want %q", created.Date, "April 05, 2024")
	}

	got, err := s.GetPost(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got != created {
		t.Errorf("GetPost = %+v, want %+v", got, created)
	}
	if got.Fields() != helloFields() {
		t.Errorf("Fields = %+v, want %+v", got.Fields(), helloFields())
	}
}

func TestCreatePostDuplicateTitle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.CreatePost(ctx, helloFields()); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	dup := helloFields()
	dup.Subtitle = "Another"
	_, err := s.CreatePost(ctx, dup)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	posts, err := s.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("ListPosts count = %d, want 1", len(posts))
	}
}

func TestUpdatePostKeepsDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.db")
	now := april5
	s, err := NewStore(path, WithStoreClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	created, err := s.CreatePost(ctx, helloFields())
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	now = now.AddDate(0, 1, 0)
	changed := helloFields()
	changed.Title = "Hello again"
	changed.Subtitle = "Updated"
	changed.Author = "C"
	changed.Body = "<p>new body</p>"
	changed.ImgURL = "https://example.org/new.jpg"

	updated, err := s.UpdatePost(ctx, created.ID, changed)
	if err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}

	got, err := s.GetPost(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got != updated {
		t.Errorf("GetPost = %+v, want %+v", got, updated)
	}
	if got.Fields() != changed {
		t.Errorf("Fields = %+v, want %+v", got.Fields(), changed)
	}
	if got.Date != "April 05, 2024" {
		t.Errorf("Date = %q, want the original creation date", got.Date)
	}
	if got.ID != created.ID {
		t.Errorf("ID = %d, want %d", got.ID, created.ID)
	}
}

func TestUpdatePostSameTitle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	created, err := s.CreatePost(ctx, helloFields())
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	f := helloFields()
	f.Subtitle = "Updated"
	if _, err := s.UpdatePost(ctx, created.ID, f); err != nil {
		t.Fatalf("updating a post without changing its title should succeed, got %v", err)
	}
}

func TestUpdatePostTitleConflict(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first, err := s.CreatePost(ctx, helloFields())
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	other := helloFields()
	other.Title = "Other"
	second, err := s.CreatePost(ctx, other)
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	clash := other
	clash.Title = first.Title
	clash.Subtitle = "should not be written"
	if _, err := s.UpdatePost(ctx, second.ID, clash); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	got, err := s.GetPost(ctx, second.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Title != "Other" || got.Subtitle != other.Subtitle {
		t.Errorf("post changed after a failed update: %+v", got)
	}
}

func TestUpdatePostNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.UpdatePost(context.Background(), 42, helloFields())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetPostNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetPost(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeletePost(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	created, err := s.CreatePost(ctx, helloFields())
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if err := s.DeletePost(ctx, created.ID); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}

	if _, err := s.GetPost(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Post should not exist after delete, got err: %v", err)
	}
	posts, err := s.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("ListPosts = %v, want empty", posts)
	}
}

func TestDeleteNonexistentPost(t *testing.T) {
	s := setupTestStore(t)

	if err := s.DeletePost(context.Background(), 7); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestIDsAreNotReused(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first, err := s.CreatePost(ctx, helloFields())
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if err := s.DeletePost(ctx, first.ID); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	second, err := s.CreatePost(ctx, helloFields())
	if err != nil {
		t.Fatalf("CreatePost after delete failed: %v", err)
	}
	if second.ID <= first.ID {
		t.Errorf("new ID = %d, want greater than deleted ID %d", second.ID, first.ID)
	}
}

func TestListPostsOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	titles := []string{"Post 1", "Post 2", "Post 3"}
	for _, title := range titles {
		f := helloFields()
		f.Title = title
		if _, err := s.CreatePost(ctx, f); err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}
	}

	got, err := s.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(got) != len(titles) {
		t.Fatalf("ListPosts count = %d, want %d", len(got), len(titles))
	}
	for i, title := range titles {
		if got[i].Title != title {
			t.Errorf("ListPosts[%d].Title = %q, want %q", i, got[i].Title, title)
		}
	}
}

func TestListPostsEmpty(t *testing.T) {
	s := setupTestStore(t)

	got, err := s.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("ListPosts = %#v, want an empty non-nil slice", got)
	}
}

func TestConcurrentCreateSameTitle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreatePost(ctx, helloFields())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrConflict):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("%d creates succeeded, want exactly 1", succeeded)
	}
}

func TestPostLifecycle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	post, err := s.CreatePost(ctx, helloFields())
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if post.ID != 1 || post.Date != "April 05, 2024" {
		t.Fatalf("created post = %+v, want id 1 dated April 05, 2024", post)
	}

	f := post.Fields()
	f.Subtitle = "Updated"
	updated, err := s.UpdatePost(ctx, post.ID, f)
	if err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}
	if updated.Subtitle != "Updated" || updated.Date != "April 05, 2024" {
		t.Errorf("updated post = %+v", updated)
	}

	if err := s.DeletePost(ctx, post.ID); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	posts, err := s.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("ListPosts = %v, want empty", posts)
	}
}
