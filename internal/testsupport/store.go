package testsupport

import (
	"context"
	"testing"

	"varologs/internal/catalog"
	"varologs/internal/config"
	"varologs/internal/media"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewUser creates a user with the default avatar.
func NewUser(t testing.TB, store *catalog.Store, name string) *catalog.User {
	t.Helper()

	user, err := store.CreateUser(context.Background(), name, "")
	if err != nil {
		t.Fatalf("store.CreateUser: %v", err)
	}
	return user
}

// NewItem creates an item of type t with the given title and optional year.
func NewItem(t testing.TB, store *catalog.Store, mediaType media.Type, title string, year int) *catalog.Item {
	t.Helper()

	in := catalog.ItemInput{Type: mediaType, Title: title}
	if year > 0 {
		in.Year = &year
	}
	item, _, err := store.CreateItem(context.Background(), in)
	if err != nil {
		t.Fatalf("store.CreateItem: %v", err)
	}
	return item
}
