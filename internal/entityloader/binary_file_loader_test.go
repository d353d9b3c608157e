package entityloader

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader"

	"github.com/rpattn/dataview/internal/domain"
)

type fakeBinaryFiles struct {
	mu        sync.Mutex
	files     []domain.BinaryFile
	batches   [][]uuid.UUID
	byID      int
	typeCalls int
	err       error
}

func (f *fakeBinaryFiles) GetBinaryFile(_ context.Context, id int) (*domain.BinaryFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID++
	for _, file := range f.files {
		if file.ID == id {
			found := file
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeBinaryFiles) GetBinaryFileByGUID(context.Context, uuid.UUID) (*domain.BinaryFile, error) {
	return nil, errors.New("loader must batch GUID lookups")
}

func (f *fakeBinaryFiles) GetByGUIDs(_ context.Context, guids []uuid.UUID) ([]domain.BinaryFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, append([]uuid.UUID{}, guids...))
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.BinaryFile
	for _, file := range f.files {
		for _, guid := range guids {
			if file.GUID == guid {
				out = append(out, file)
			}
		}
	}
	return out, nil
}

func (f *fakeBinaryFiles) ListBinaryFileTypes(context.Context) ([]domain.BinaryFileType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typeCalls++
	return []domain.BinaryFileType{{ID: 1, Name: "Person Image"}}, nil
}

var (
	photoGUID = uuid.MustParse("5b1f6a60-3c4e-4b55-9a1d-2f0c7f3e8a01")
	cvGUID    = uuid.MustParse("0e8c2f7d-91a4-4d6b-8f3e-6c5a2b1d9e02")
)

func newFakeFiles() *fakeBinaryFiles {
	return &fakeBinaryFiles{files: []domain.BinaryFile{
		{ID: 1, GUID: photoGUID, FileName: "photo.jpg"},
		{ID: 2, GUID: cvGUID, FileName: "cv.pdf"},
	}}
}

func TestBinaryFileLoaderBatchesGUIDLookups(t *testing.T) {
	repo := newFakeFiles()
	l := NewBinaryFileLoader(repo, 16, time.Minute)
	ctx := context.Background()

	missing := uuid.New()
	thunks := []dataloader.Thunk{
		l.loader.Load(ctx, dataloader.StringKey(photoGUID.String())),
		l.loader.Load(ctx, dataloader.StringKey(missing.String())),
		l.loader.Load(ctx, dataloader.StringKey(cvGUID.String())),
	}
	var names []string
	for _, thunk := range thunks {
		data, err := thunk()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if file := data.(*domain.BinaryFile); file != nil {
			names = append(names, file.FileName)
		} else {
			names = append(names, "")
		}
	}

	if diff := cmp.Diff([]string{"photo.jpg", "", "cv.pdf"}, names); diff != "" {
		t.Fatalf("results out of key order (-want +got):\n%s", diff)
	}
	if len(repo.batches) != 1 || len(repo.batches[0]) != 3 {
		t.Fatalf("expected one batch of three GUIDs, got %v", repo.batches)
	}
}

func TestBinaryFileLoaderCachesResolvedFiles(t *testing.T) {
	repo := newFakeFiles()
	l := NewBinaryFileLoader(repo, 16, time.Minute)
	ctx := context.Background()

	file, err := l.GetBinaryFileByGUID(ctx, photoGUID)
	if err != nil || file == nil || file.ID != 1 {
		t.Fatalf("unexpected result %+v, %v", file, err)
	}
	if _, err := l.GetBinaryFileByGUID(ctx, photoGUID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	byID, err := l.GetBinaryFile(ctx, 1)
	if err != nil || byID.GUID != photoGUID {
		t.Fatalf("unexpected result %+v, %v", byID, err)
	}
	if len(repo.batches) != 1 || repo.byID != 0 {
		t.Fatalf("expected cached lookups, got %d batches and %d id lookups", len(repo.batches), repo.byID)
	}

	l.Forget(*file)
	if _, err := l.GetBinaryFile(ctx, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.byID != 1 {
		t.Fatalf("expected forgotten file to be fetched again")
	}

	none, err := l.GetBinaryFileByGUID(ctx, uuid.New())
	if err != nil || none != nil {
		t.Fatalf("expected missing file to resolve to nil, got %+v, %v", none, err)
	}

	for i := 0; i < 2; i++ {
		if _, err := l.ListBinaryFileTypes(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if repo.typeCalls != 1 {
		t.Fatalf("expected file types to be cached, got %d calls", repo.typeCalls)
	}
}

func TestBinaryFileLoaderPropagatesErrors(t *testing.T) {
	repo := newFakeFiles()
	repo.err = errors.New("connection reset")
	l := NewBinaryFileLoader(repo, 16, time.Minute)

	if _, err := l.GetBinaryFileByGUID(context.Background(), photoGUID); err == nil {
		t.Fatalf("expected repository error")
	}
}
