package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/volunteer-scheduler/internal/application"
	"github.com/example/volunteer-scheduler/internal/testfixtures"
)

func newClassService(store *testfixtures.MemoryStore) *application.ClassService {
	factory := testfixtures.NewServiceFactory(
		testfixtures.WithFactoryIDGenerator(testfixtures.NewIDGenerator("class")),
	)
	return factory.NewClassService(testfixtures.ClassServiceDeps{Classes: store, Terms: store})
}

func TestClassService_CreateClass(t *testing.T) {
	t.Run("persists unpublished classes bound to an existing term", func(t *testing.T) {
		store := testfixtures.NewMemoryStore()
		term := testfixtures.NewTermFixture()
		store.SeedTerm(term)

		svc := newClassService(store)
		created, err := svc.CreateClass(context.Background(), application.ClassInput{
			Name:   "  Beginner Pottery  ",
			TermID: term.ID,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if created.Name != "Beginner Pottery" {
			t.Fatalf("expected trimmed name, got %q", created.Name)
		}
		if created.Published {
			t.Fatalf("expected new classes to start unpublished")
		}

		stored, err := store.GetClass(context.Background(), created.ID)
		if err != nil {
			t.Fatalf("failed to reload class: %v", err)
		}
		if stored.TermID != term.ID {
			t.Fatalf("expected term association %q, got %q", term.ID, stored.TermID)
		}
	})

	t.Run("validates required attributes", func(t *testing.T) {
		svc := newClassService(testfixtures.NewMemoryStore())

		_, err := svc.CreateClass(context.Background(), application.ClassInput{Name: " "})

		var vErr *application.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["name"]; !ok {
			t.Fatalf("expected name validation error, got %v", vErr.FieldErrors)
		}
		if _, ok := vErr.FieldErrors["term_id"]; !ok {
			t.Fatalf("expected term validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("rejects classes referencing unknown terms", func(t *testing.T) {
		svc := newClassService(testfixtures.NewMemoryStore())

		_, err := svc.CreateClass(context.Background(), application.ClassInput{
			Name:   "Orphan",
			TermID: "missing",
		})
		if !errors.Is(err, application.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestClassService_ListClasses(t *testing.T) {
	store := testfixtures.NewMemoryStore()
	term := testfixtures.NewTermFixture()
	store.SeedTerm(term)
	store.SeedClass(testfixtures.NewClassFixture(term.ID))
	store.SeedClass(testfixtures.NewClassFixture(term.ID, testfixtures.Published()))

	svc := newClassService(store)
	classes, err := svc.ListClasses(context.Background())
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(classes) != 2 {
		t.Fatalf("expected two classes, got %d", len(classes))
	}

	published := 0
	for _, class := range classes {
		if class.Published {
			published++
		}
	}
	if published != 1 {
		t.Fatalf("expected exactly one published class, got %d", published)
	}
}
