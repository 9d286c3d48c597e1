package media

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nyumbalink/listings-backend/pkg/db/models"
	"github.com/nyumbalink/listings-backend/pkg/enums"
	pkgerrors "github.com/nyumbalink/listings-backend/pkg/errors"
	"github.com/nyumbalink/listings-backend/pkg/logger"
	"github.com/nyumbalink/listings-backend/pkg/metrics"
	"github.com/nyumbalink/listings-backend/pkg/storage/gcs"
)

// Minimal real PNG header so mimetype sniffing recognizes the payload.
var pngBytes = append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, bytes.Repeat([]byte{0}, 32)...)

type stubRepo struct {
	records     map[uuid.UUID]*models.MediaRecord
	created     []*models.MediaRecord
	createErr   error
	deleted     []uuid.UUID
	maxPosition int
	hasMedia    bool
	listed      []models.MediaRecord
	listCalls   int
	keys        []string
}

func newStubRepo() *stubRepo {
	return &stubRepo{records: make(map[uuid.UUID]*models.MediaRecord)}
}

func (s *stubRepo) Create(_ context.Context, record *models.MediaRecord) (*models.MediaRecord, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, record)
	s.records[record.ID] = record
	return record, nil
}

func (s *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*models.MediaRecord, error) {
	if record, ok := s.records[id]; ok {
		return record, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	s.deleted = append(s.deleted, id)
	if _, ok := s.records[id]; !ok {
		return 0, nil
	}
	delete(s.records, id)
	return 1, nil
}

func (s *stubRepo) MaxPosition(context.Context, Parent) (int, bool, error) {
	return s.maxPosition, s.hasMedia, nil
}

func (s *stubRepo) ListByListingIDs(_ context.Context, _ []uuid.UUID) ([]models.MediaRecord, error) {
	s.listCalls++
	return s.listed, nil
}

func (s *stubRepo) ListByPageSection(_ context.Context, _ string) ([]models.MediaRecord, error) {
	s.listCalls++
	return s.listed, nil
}

func (s *stubRepo) KeysForListing(context.Context, uuid.UUID) ([]string, error) {
	return s.keys, nil
}

type stubStore struct {
	uploads    []string
	uploadErr  error
	deletes    []string
	deleteErrs map[string]error
}

func (s *stubStore) UploadObject(_ context.Context, _, key, _ string, _ []byte) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.uploads = append(s.uploads, key)
	return "https://storage.googleapis.com/test-bucket/" + key, nil
}

func (s *stubStore) DeleteObject(_ context.Context, _, key string) error {
	s.deletes = append(s.deletes, key)
	if err, ok := s.deleteErrs[key]; ok {
		return err
	}
	return nil
}

func newTestService(t *testing.T, repo *stubRepo, store *stubStore) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test"})
	svc, err := NewService(repo, store, "test-bucket", 1<<20, metrics.NewMediaMetrics(nil), logg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func listingParent(id uuid.UUID) Parent {
	return Parent{ListingID: &id}
}

func TestCreateUploadsThenPersists(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	repo.hasMedia = true
	repo.maxPosition = 4
	store := &stubStore{}
	svc := newTestService(t, repo, store)

	listingID := uuid.New()
	record, err := svc.Create(context.Background(), CreateInput{
		Parent:   listingParent(listingID),
		Category: enums.MediaCategoryGallery,
		FileName: "front view.png",
		Data:     pngBytes,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if len(store.uploads) != 1 {
		t.Fatalf("expected one upload, got %d", len(store.uploads))
	}
	if record.Position != 5 {
		t.Fatalf("expected position max+1=5, got %d", record.Position)
	}
	if record.URL == "" || record.GCSKey == "" {
		t.Fatalf("record missing storage references: %+v", record)
	}
	if record.ListingID == nil || *record.ListingID != listingID {
		t.Fatalf("record not bound to listing")
	}
}

func TestCreateFirstMediaStartsAtZero(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	store := &stubStore{}
	svc := newTestService(t, repo, store)

	record, err := svc.Create(context.Background(), CreateInput{
		Parent:   listingParent(uuid.New()),
		Category: enums.MediaCategoryGallery,
		FileName: "a.png",
		Data:     pngBytes,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if record.Position != 0 {
		t.Fatalf("expected position 0 for first media, got %d", record.Position)
	}
}

func TestCreateMetadataFailureLeavesOrphan(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	repo.createErr = errors.New("insert failed")
	store := &stubStore{}
	svc := newTestService(t, repo, store)

	_, err := svc.Create(context.Background(), CreateInput{
		Parent:   listingParent(uuid.New()),
		Category: enums.MediaCategoryGallery,
		FileName: "a.png",
		Data:     pngBytes,
	})
	if err == nil {
		t.Fatal("expected metadata write failure")
	}
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected CodeDependency, got %v", err)
	}
	if len(store.uploads) != 1 {
		t.Fatalf("object should have been uploaded before the failure")
	}
	if len(store.deletes) != 0 {
		t.Fatalf("orphan must not be cleaned inline, got deletes %v", store.deletes)
	}
}

func TestCreateStorageFailurePersistsNothing(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	store := &stubStore{uploadErr: errors.New("503")}
	svc := newTestService(t, repo, store)

	_, err := svc.Create(context.Background(), CreateInput{
		Parent:   listingParent(uuid.New()),
		Category: enums.MediaCategoryGallery,
		FileName: "a.png",
		Data:     pngBytes,
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeStorageUnavailable {
		t.Fatalf("expected CodeStorageUnavailable, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatalf("no metadata row should exist after upload failure")
	}
}

func TestCreateValidatesParentAndPayload(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubRepo(), &stubStore{})
	section := "home_hero"
	listingID := uuid.New()

	cases := []struct {
		name  string
		input CreateInput
	}{
		{"no parent", CreateInput{Category: enums.MediaCategoryGallery, Data: pngBytes}},
		{"both parents", CreateInput{
			Parent:   Parent{ListingID: &listingID, PageSection: &section},
			Category: enums.MediaCategoryGallery,
			Data:     pngBytes,
		}},
		{"bad category", CreateInput{
			Parent:   listingParent(listingID),
			Category: enums.MediaCategory("poster"),
			Data:     pngBytes,
		}},
		{"empty payload", CreateInput{
			Parent:   listingParent(listingID),
			Category: enums.MediaCategoryGallery,
		}},
		{"pdf rejected for gallery", CreateInput{
			Parent:   listingParent(listingID),
			Category: enums.MediaCategoryGallery,
			Data:     []byte("%PDF-1.4 fake document body"),
		}},
	}

	for _, tc := range cases {
		_, err := svc.Create(context.Background(), tc.input)
		if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestDeleteStorageFirstThenMetadata(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	id := uuid.New()
	listingID := uuid.New()
	repo.records[id] = &models.MediaRecord{ID: id, ListingID: &listingID, GCSKey: "media/key"}
	store := &stubStore{}
	svc := newTestService(t, repo, store)

	if err := svc.Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(store.deletes) != 1 || store.deletes[0] != "media/key" {
		t.Fatalf("expected storage delete for media/key, got %v", store.deletes)
	}
	if len(repo.deleted) != 1 {
		t.Fatalf("expected metadata delete")
	}

	// Second delete reports NotFound, not an error class the caller retries.
	err := svc.Delete(context.Background(), id)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected CodeNotFound on repeat delete, got %v", err)
	}
}

func TestDeleteTreatsMissingObjectAsSuccess(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	id := uuid.New()
	listingID := uuid.New()
	repo.records[id] = &models.MediaRecord{ID: id, ListingID: &listingID, GCSKey: "media/gone"}
	store := &stubStore{deleteErrs: map[string]error{"media/gone": gcs.ErrObjectNotFound}}
	svc := newTestService(t, repo, store)

	if err := svc.Delete(context.Background(), id); err != nil {
		t.Fatalf("missing object should not block delete: %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Fatalf("metadata row should have been removed")
	}
}

func TestDeleteAbortsOnStorageError(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	id := uuid.New()
	listingID := uuid.New()
	repo.records[id] = &models.MediaRecord{ID: id, ListingID: &listingID, GCSKey: "media/stuck"}
	store := &stubStore{deleteErrs: map[string]error{"media/stuck": errors.New("500")}}
	svc := newTestService(t, repo, store)

	err := svc.Delete(context.Background(), id)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeStorageError {
		t.Fatalf("expected CodeStorageError, got %v", err)
	}
	if len(repo.deleted) != 0 {
		t.Fatalf("metadata row must survive a failed storage delete")
	}
}

func TestReplaceKeepsSlot(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	id := uuid.New()
	listingID := uuid.New()
	alt := "old alt"
	repo.records[id] = &models.MediaRecord{
		ID:        id,
		ListingID: &listingID,
		GCSKey:    "media/old",
		Category:  enums.MediaCategoryGallery,
		Position:  3,
		AltText:   &alt,
	}
	store := &stubStore{}
	svc := newTestService(t, repo, store)

	record, err := svc.Replace(context.Background(), id, pngBytes, "new.png")
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if record.Position != 3 {
		t.Fatalf("replacement should keep position 3, got %d", record.Position)
	}
	if record.ID == id {
		t.Fatalf("replacement should mint a new record id")
	}
	if len(store.deletes) != 1 || store.deletes[0] != "media/old" {
		t.Fatalf("old object should be deleted first, got %v", store.deletes)
	}
	if record.AltText == nil || *record.AltText != alt {
		t.Fatalf("replacement should carry the old alt text")
	}
}

func TestGalleriesEmptyBatchShortCircuits(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	svc := newTestService(t, repo, &stubStore{})

	got, err := svc.Galleries(context.Background(), nil)
	if err != nil {
		t.Fatalf("Galleries: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
	if repo.listCalls != 0 {
		t.Fatalf("empty batch must not query the store")
	}
}

func TestGalleriesGroupsAndPicksPrimary(t *testing.T) {
	t.Parallel()

	withMedia := uuid.New()
	without := uuid.New()
	repo := newStubRepo()
	// Repo contract: ordered by position ascending already.
	repo.listed = []models.MediaRecord{
		{ID: uuid.New(), ListingID: &withMedia, URL: "u0", Position: 0},
		{ID: uuid.New(), ListingID: &withMedia, URL: "u1", Position: 1},
		{ID: uuid.New(), ListingID: &withMedia, URL: "u2", Position: 2},
	}
	svc := newTestService(t, repo, &stubStore{})

	got, err := svc.Galleries(context.Background(), []uuid.UUID{withMedia, without})
	if err != nil {
		t.Fatalf("Galleries: %v", err)
	}
	if repo.listCalls != 1 {
		t.Fatalf("expected exactly one media query, got %d", repo.listCalls)
	}

	gallery := got[withMedia]
	if len(gallery.URLs) != 3 || gallery.URLs[0] != "u0" || gallery.URLs[2] != "u2" {
		t.Fatalf("unexpected ordering %v", gallery.URLs)
	}
	if gallery.Primary != "u0" {
		t.Fatalf("primary should be the smallest position, got %q", gallery.Primary)
	}

	empty, ok := got[without]
	if !ok {
		t.Fatalf("parent without media must still get an entry")
	}
	if empty.URLs == nil || len(empty.URLs) != 0 {
		t.Fatalf("expected empty non-nil gallery, got %v", empty.URLs)
	}
}

func TestDeleteObjectsCountsLeaks(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	store := &stubStore{deleteErrs: map[string]error{
		"media/missing": gcs.ErrObjectNotFound,
		"media/stuck":   errors.New("500"),
	}}
	svc := newTestService(t, repo, store)

	err := svc.DeleteObjects(context.Background(), []string{"media/ok", "media/missing", "media/stuck"})
	if err == nil {
		t.Fatal("expected combined error for the leaked object")
	}
	if len(store.deletes) != 3 {
		t.Fatalf("all keys should be attempted, got %v", store.deletes)
	}
}
