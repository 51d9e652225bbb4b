package catalog_test

import (
	"context"
	"errors"
	"testing"

	"varologs/internal/catalog"
	"varologs/internal/media"
	"varologs/internal/services"
	"varologs/internal/testsupport"
)

func ptr[T any](v T) *T { return &v }

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	version, err := store.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != "002_item_details" {
		t.Fatalf("schema version = %q", version)
	}
	if store.Path() != cfg.Paths.DatabasePath {
		t.Fatalf("path = %q, want %q", store.Path(), cfg.Paths.DatabasePath)
	}
}

func TestReopenIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	testsupport.NewUser(t, store, "Ana")
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	users, err := reopened.Users(context.Background())
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 1 || users[0].Name != "Ana" {
		t.Fatalf("users after reopen = %+v", users)
	}
}

func TestUsers(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	ana, err := store.CreateUser(ctx, "  Ana ", "")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if ana.Name != "Ana" || ana.AvatarColor != catalog.DefaultAvatarColor {
		t.Fatalf("unexpected user: %+v", ana)
	}
	if _, err := store.CreateUser(ctx, "Bruno", "#ff0000"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := store.CreateUser(ctx, "Ana", ""); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict on duplicate name, got %v", err)
	}
	if _, err := store.CreateUser(ctx, "   ", ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	users, err := store.Users(ctx)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 2 || users[0].Name != "Ana" || users[1].Name != "Bruno" {
		t.Fatalf("users = %+v", users)
	}

	if err := store.DeleteUser(ctx, ana.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if err := store.DeleteUser(ctx, ana.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestCreateItemReturnsExistingOnConflict(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	in := catalog.ItemInput{Type: media.Book, Title: "Dune", Year: ptr(1965), Creator: ptr("Frank Herbert")}
	first, created, err := store.CreateItem(ctx, in)
	if err != nil || !created {
		t.Fatalf("CreateItem: created=%v err=%v", created, err)
	}
	again, created, err := store.CreateItem(ctx, in)
	if err != nil {
		t.Fatalf("CreateItem duplicate: %v", err)
	}
	if created || again.ID != first.ID {
		t.Fatalf("expected existing item %d, got %d created=%v", first.ID, again.ID, created)
	}

	if _, _, err := store.CreateItem(ctx, catalog.ItemInput{Type: media.Type("vinyl"), Title: "X"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for bad type, got %v", err)
	}
}

func TestItemDetailsRoundTrip(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	in := catalog.ItemInput{
		Type:    media.Series,
		Title:   "The Wire",
		Year:    ptr(2002),
		Details: catalog.Details{Episodes: ptr(60), Seasons: ptr(5)},
	}
	item, _, err := store.CreateItem(ctx, in)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.Seasons == nil || *item.Seasons != 5 || item.Pages != nil {
		t.Fatalf("details not stored: %+v", item.Details)
	}

	in.Title = "The Wire (HBO)"
	in.Synopsis = ptr("Baltimore.")
	updated, err := store.UpdateItem(ctx, item.ID, in)
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if updated.Title != "The Wire (HBO)" || updated.Synopsis == nil {
		t.Fatalf("update not applied: %+v", updated)
	}
	if _, err := store.UpdateItem(ctx, 9999, in); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestItemsFilter(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	ana := testsupport.NewUser(t, store, "Ana")
	dune := testsupport.NewItem(t, store, media.Book, "Dune", 1965)
	halo := testsupport.NewItem(t, store, media.Game, "Halo", 2001)
	testsupport.NewItem(t, store, media.Movie, "Dune", 2021)

	if _, err := store.UpsertReview(ctx, dune.ID, catalog.ReviewInput{UserID: ana.ID, Status: catalog.StatusCompleted, Rating: ptr(9.0)}); err != nil {
		t.Fatalf("UpsertReview: %v", err)
	}
	if _, err := store.UpsertReview(ctx, halo.ID, catalog.ReviewInput{UserID: ana.ID}); err != nil {
		t.Fatalf("UpsertReview: %v", err)
	}

	cases := []struct {
		name   string
		filter catalog.ItemFilter
		want   int
	}{
		{"all", catalog.ItemFilter{}, 3},
		{"type", catalog.ItemFilter{Type: media.Book}, 1},
		{"search", catalog.ItemFilter{Search: "dun"}, 2},
		{"user", catalog.ItemFilter{UserID: &ana.ID}, 2},
		{"user and status", catalog.ItemFilter{UserID: &ana.ID, Status: catalog.StatusCompleted}, 1},
		{"limit", catalog.ItemFilter{Limit: 1}, 1},
		{"offset", catalog.ItemFilter{Offset: 2}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, err := store.Items(ctx, tc.filter)
			if err != nil {
				t.Fatalf("Items: %v", err)
			}
			if len(items) != tc.want {
				t.Fatalf("got %d items, want %d", len(items), tc.want)
			}
		})
	}

	all, _ := store.Items(ctx, catalog.ItemFilter{})
	if all[0].Title != "Dune" || all[0].Type != media.Movie {
		t.Fatalf("expected newest first, got %+v", all[0])
	}
}

func TestReviewsAndDetail(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	ana := testsupport.NewUser(t, store, "Ana")
	bruno := testsupport.NewUser(t, store, "Bruno")
	item := testsupport.NewItem(t, store, media.Anime, "Cowboy Bebop", 1998)

	review, err := store.UpsertReview(ctx, item.ID, catalog.ReviewInput{UserID: ana.ID, Rating: ptr(8.0)})
	if err != nil {
		t.Fatalf("UpsertReview: %v", err)
	}
	if review.Status != catalog.StatusPending || review.UserName != "Ana" {
		t.Fatalf("unexpected review: %+v", review)
	}
	review, err = store.UpsertReview(ctx, item.ID, catalog.ReviewInput{UserID: ana.ID, Rating: ptr(10.0), Status: catalog.StatusCompleted})
	if err != nil {
		t.Fatalf("UpsertReview update: %v", err)
	}
	if *review.Rating != 10 || review.Status != catalog.StatusCompleted {
		t.Fatalf("review not replaced: %+v", review)
	}
	if _, err := store.UpsertReview(ctx, item.ID, catalog.ReviewInput{UserID: bruno.ID, Rating: ptr(6.0)}); err != nil {
		t.Fatalf("UpsertReview bruno: %v", err)
	}

	detail, err := store.ItemDetail(ctx, item.ID)
	if err != nil {
		t.Fatalf("ItemDetail: %v", err)
	}
	if len(detail.Reviews) != 2 || detail.ReviewCount != 2 {
		t.Fatalf("reviews = %+v", detail.Reviews)
	}
	if detail.AvgRating == nil || *detail.AvgRating != 8 {
		t.Fatalf("avg rating = %v", detail.AvgRating)
	}

	if _, err := store.UpsertReview(ctx, 9999, catalog.ReviewInput{UserID: ana.ID}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for missing item, got %v", err)
	}
	if _, err := store.UpsertReview(ctx, item.ID, catalog.ReviewInput{UserID: ana.ID, Rating: ptr(11.0)}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for rating, got %v", err)
	}

	if err := store.DeleteReview(ctx, item.ID, bruno.ID); err != nil {
		t.Fatalf("DeleteReview: %v", err)
	}
	if err := store.DeleteReview(ctx, item.ID, bruno.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := store.DeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if _, err := store.ItemDetail(ctx, item.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestLists(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	ana := testsupport.NewUser(t, store, "Ana")
	bruno := testsupport.NewUser(t, store, "Bruno")
	item := testsupport.NewItem(t, store, media.Movie, "Alien", 1979)

	public, err := store.CreateList(ctx, catalog.ListInput{UserID: ana.ID, Name: "Favoritas"})
	if err != nil {
		t.Fatalf("CreateList: %v", err)
	}
	if !public.IsPublic || public.UserName != "Ana" {
		t.Fatalf("unexpected list: %+v", public)
	}
	private, err := store.CreateList(ctx, catalog.ListInput{UserID: bruno.ID, Name: "Secreta", IsPublic: ptr(false)})
	if err != nil {
		t.Fatalf("CreateList private: %v", err)
	}

	anon, _ := store.Lists(ctx, nil)
	if len(anon) != 1 {
		t.Fatalf("anonymous should see only public lists, got %d", len(anon))
	}
	mine, _ := store.Lists(ctx, &bruno.ID)
	if len(mine) != 2 {
		t.Fatalf("owner should see own private list, got %d", len(mine))
	}

	for range 2 {
		if err := store.AddToList(ctx, public.ID, item.ID); err != nil {
			t.Fatalf("AddToList: %v", err)
		}
	}
	if err := store.AddToList(ctx, public.ID, 9999); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for unknown item, got %v", err)
	}
	detail, err := store.List(ctx, public.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(detail.Items) != 1 || detail.ItemCount != 1 || detail.Items[0].Title != "Alien" {
		t.Fatalf("list detail = %+v", detail)
	}

	updated, err := store.UpdateList(ctx, private.ID, catalog.ListUpdate{Name: "Pública ahora", IsPublic: ptr(true)})
	if err != nil {
		t.Fatalf("UpdateList: %v", err)
	}
	if !updated.IsPublic || updated.Name != "Pública ahora" {
		t.Fatalf("update not applied: %+v", updated)
	}
	kept, err := store.UpdateList(ctx, private.ID, catalog.ListUpdate{Name: "Renombrada"})
	if err != nil || !kept.IsPublic {
		t.Fatalf("nil visibility should keep current value: %+v %v", kept, err)
	}

	if err := store.RemoveFromList(ctx, public.ID, item.ID); err != nil {
		t.Fatalf("RemoveFromList: %v", err)
	}
	if err := store.RemoveFromList(ctx, public.ID, item.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.DeleteList(ctx, public.ID); err != nil {
		t.Fatalf("DeleteList: %v", err)
	}
	if _, err := store.List(ctx, public.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestStats(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	ana := testsupport.NewUser(t, store, "Ana")
	testsupport.NewUser(t, store, "Bruno")
	a := testsupport.NewItem(t, store, media.Book, "Dune", 1965)
	b := testsupport.NewItem(t, store, media.Book, "Hyperion", 1989)
	testsupport.NewItem(t, store, media.Game, "Halo", 2001)

	store.UpsertReview(ctx, a.ID, catalog.ReviewInput{UserID: ana.ID, Rating: ptr(9.0), Status: catalog.StatusCompleted})
	store.UpsertReview(ctx, b.ID, catalog.ReviewInput{UserID: ana.ID, Rating: ptr(7.0)})

	stats, err := store.Stats(ctx, nil)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalItems != 3 || stats.TotalUsers != 2 || stats.UserStats != nil {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.ItemsByType[0].Type != media.Book || stats.ItemsByType[0].Count != 2 {
		t.Fatalf("items by type = %+v", stats.ItemsByType)
	}

	stats, err = store.Stats(ctx, &ana.ID)
	if err != nil {
		t.Fatalf("Stats user: %v", err)
	}
	us := stats.UserStats
	if us == nil || us.Reviewed != 2 || us.Completed != 1 || us.AvgRating == nil || *us.AvgRating != 8 {
		t.Fatalf("user stats = %+v", us)
	}
}
