package category

import (
	"context"
	"errors"
	"testing"

	"lovmeds/internal/db/dbtest"
	"lovmeds/internal/domain"
)

func TestPostgres_CreateAndList(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	repo := NewPostgres(pool)

	skin, err := repo.Create(ctx, domain.Category{Name: "Skin Care", Slug: "skin-care", DisplayOrder: 2, IsActive: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if skin.ID == "" || skin.ParentID != nil {
		t.Fatalf("unexpected category %+v", skin)
	}
	if _, err := repo.Create(ctx, domain.Category{Name: "Body", Slug: "body", DisplayOrder: 1, IsActive: true}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, domain.Category{Name: "Archive", Slug: "archive"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	active, err := repo.List(ctx, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 2 || active[0].Slug != "body" || active[1].Slug != "skin-care" {
		t.Fatalf("unexpected order %+v", active)
	}
	all, err := repo.List(ctx, false)
	if err != nil || len(all) != 3 {
		t.Fatalf("list all: %d %v", len(all), err)
	}

	if _, err := repo.Create(ctx, domain.Category{Name: "Skin", Slug: "skin-care"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestPostgres_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	repo := NewPostgres(pool)

	parent, err := repo.Create(ctx, domain.Category{Name: "Hair", Slug: "hair", IsActive: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	child, err := repo.Create(ctx, domain.Category{Name: "Oils", Slug: "oils", IsActive: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	child.Name = "Hair Oils"
	child.ParentID = &parent.ID
	updated, err := repo.Update(ctx, *child)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Hair Oils" || updated.ParentID == nil || *updated.ParentID != parent.ID {
		t.Fatalf("unexpected update %+v", updated)
	}

	got, err := repo.GetBySlug(ctx, "oils")
	if err != nil || got.ID != child.ID {
		t.Fatalf("get by slug: %+v %v", got, err)
	}

	if err := repo.Delete(ctx, parent.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	orphan, err := repo.GetByID(ctx, child.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if orphan.ParentID != nil {
		t.Fatalf("expected parent cleared, got %v", *orphan.ParentID)
	}
	if err := repo.Delete(ctx, parent.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
