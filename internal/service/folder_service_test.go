package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"velodrive/internal/domain"
)

func newFolderServiceFixture(t *testing.T) (*FolderService, *memStore, string) {
	t.Helper()
	store := newMemStore()
	ownerID := store.addUser("alice", "alice@example.com", 1000, 1000)
	return NewFolderService(store.asFolderStore(), store), store, ownerID
}

func TestRegisterFolder(t *testing.T) {
	svc, _, ownerID := newFolderServiceFixture(t)
	ctx := context.Background()

	name, err := svc.RegisterFolder(ctx, "Documents", nil, ownerID)
	require.NoError(t, err)
	require.Equal(t, "Documents", name)
}

func TestRegisterFolderDuplicateAtLocation(t *testing.T) {
	svc, store, ownerID := newFolderServiceFixture(t)
	ctx := context.Background()

	_, err := svc.RegisterFolder(ctx, "Documents", nil, ownerID)
	require.NoError(t, err)

	_, err = svc.RegisterFolder(ctx, "Documents", nil, ownerID)
	require.ErrorIs(t, err, domain.ErrConflict)

	// То же имя в другой локации проходит
	var parentID uuid.UUID
	for id, f := range store.folders {
		if f.Name == "Documents" {
			parentID = id
		}
	}
	_, err = svc.RegisterFolder(ctx, "Documents", &parentID, ownerID)
	require.NoError(t, err)
}

func TestRegisterFolderUnknownParent(t *testing.T) {
	svc, _, ownerID := newFolderServiceFixture(t)
	missing := uuid.New()

	_, err := svc.RegisterFolder(context.Background(), "Documents", &missing, ownerID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterFolderForeignParent(t *testing.T) {
	svc, store, ownerID := newFolderServiceFixture(t)
	ctx := context.Background()

	strangerID := store.addUser("bob", "bob@example.com", 1000, 1000)
	_, err := svc.RegisterFolder(ctx, "Private", nil, strangerID)
	require.NoError(t, err)

	var foreignID uuid.UUID
	for id := range store.folders {
		foreignID = id
	}

	// Чужая папка неотличима от несуществующей
	_, err = svc.RegisterFolder(ctx, "Sneaky", &foreignID, ownerID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRenameFolderMovesAndChecksNewLocation(t *testing.T) {
	svc, store, ownerID := newFolderServiceFixture(t)
	ctx := context.Background()

	_, err := svc.RegisterFolder(ctx, "Inbox", nil, ownerID)
	require.NoError(t, err)
	_, err = svc.RegisterFolder(ctx, "Archive", nil, ownerID)
	require.NoError(t, err)

	var inboxID, archiveID uuid.UUID
	for id, f := range store.folders {
		switch f.Name {
		case "Inbox":
			inboxID = id
		case "Archive":
			archiveID = id
		}
	}

	// Перенос Inbox внутрь Archive с новым именем
	require.NoError(t, svc.RenameFolder(ctx, ownerID, inboxID, &archiveID, "Old Mail"))
	require.Equal(t, "Old Mail", store.folders[inboxID].Name)
	require.Equal(t, archiveID, *store.folders[inboxID].ParentFolderID)

	// Коллизия проверяется в целевой локации
	_, err = svc.RegisterFolder(ctx, "Recent", &archiveID, ownerID)
	require.NoError(t, err)
	var recentID uuid.UUID
	for id, f := range store.folders {
		if f.Name == "Recent" {
			recentID = id
		}
	}
	err = svc.RenameFolder(ctx, ownerID, recentID, &archiveID, "Old Mail")
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestRetrieveContentValidatesSort(t *testing.T) {
	svc, _, ownerID := newFolderServiceFixture(t)

	_, err := svc.RetrieveContent(context.Background(), ownerID, domain.SortField("size"), domain.OrderAsc, nil)
	require.ErrorIs(t, err, domain.ErrBadRequest)

	_, err = svc.RetrieveContent(context.Background(), ownerID, domain.SortByName, domain.SortOrder("sideways"), nil)
	require.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestRetrieveContentRootCarriesSummary(t *testing.T) {
	svc, _, ownerID := newFolderServiceFixture(t)
	ctx := context.Background()

	_, err := svc.RegisterFolder(ctx, "Documents", nil, ownerID)
	require.NoError(t, err)

	listing, err := svc.RetrieveContent(ctx, ownerID, domain.SortByName, domain.OrderAsc, nil)
	require.NoError(t, err)
	require.NotNil(t, listing.User)
	require.Equal(t, "alice", listing.User.Username)
	require.Len(t, listing.Entries, 1)
	require.Equal(t, domain.EntryKindFolder, listing.Entries[0].Kind)
}

func TestRetrieveContentSubfolderOmitsSummary(t *testing.T) {
	svc, store, ownerID := newFolderServiceFixture(t)
	ctx := context.Background()

	_, err := svc.RegisterFolder(ctx, "Documents", nil, ownerID)
	require.NoError(t, err)
	var docsID uuid.UUID
	for id := range store.folders {
		docsID = id
	}

	listing, err := svc.RetrieveContent(ctx, ownerID, domain.SortByName, domain.OrderAsc, &docsID)
	require.NoError(t, err)
	require.Nil(t, listing.User)
	require.Empty(t, listing.Entries)
}

func TestRetrieveContentForeignFolder(t *testing.T) {
	svc, store, ownerID := newFolderServiceFixture(t)
	ctx := context.Background()

	strangerID := store.addUser("bob", "bob@example.com", 1000, 1000)
	_, err := svc.RegisterFolder(ctx, "Private", nil, strangerID)
	require.NoError(t, err)
	var foreignID uuid.UUID
	for id := range store.folders {
		foreignID = id
	}

	_, err = svc.RetrieveContent(ctx, ownerID, domain.SortByName, domain.OrderAsc, &foreignID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRetrieveContentSortsMixedEntries(t *testing.T) {
	svc, store, ownerID := newFolderServiceFixture(t)
	ctx := context.Background()

	_, err := svc.RegisterFolder(ctx, "b-folder", nil, ownerID)
	require.NoError(t, err)
	f := &domain.File{OwnerID: ownerID, Name: "a-file.txt", SizeInBytes: 10, Type: "txt"}
	require.NoError(t, store.asFileStore().CreateWithReservation(ctx, f))

	listing, err := svc.RetrieveContent(ctx, ownerID, domain.SortByName, domain.OrderAsc, nil)
	require.NoError(t, err)
	require.Len(t, listing.Entries, 2)
	require.Equal(t, "a-file.txt", listing.Entries[0].Name)
	require.Equal(t, "b-folder", listing.Entries[1].Name)
}
