// Package entityloader batches and caches the lookups field types make while
// formatting and editing values.
package entityloader

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rpattn/dataview/internal/cache"
	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/fieldtype"
	"github.com/rpattn/dataview/internal/repository"
)

var _ fieldtype.BinaryFileResolver = (*BinaryFileLoader)(nil)

// BinaryFileLoader resolves binary files for the binary file field type.
// Lookups by GUID issued close together are fetched in one query.
type BinaryFileLoader struct {
	repo   repository.BinaryFileRepository
	loader *dataloader.Loader
	files  *cache.Cache[domain.BinaryFile]
	types  *cache.Cache[[]domain.BinaryFileType]
}

// NewBinaryFileLoader wraps repo. files caches resolved files by GUID and id;
// it may be shared across requests.
func NewBinaryFileLoader(repo repository.BinaryFileRepository, size int, ttl time.Duration) *BinaryFileLoader {
	l := &BinaryFileLoader{
		repo:  repo,
		files: cache.New[domain.BinaryFile]("binaryfile", size, ttl),
		types: cache.New[[]domain.BinaryFileType]("binaryfiletype", 1, ttl),
	}
	l.loader = dataloader.NewBatchedLoader(l.batch,
		dataloader.WithWait(5*time.Millisecond),
		dataloader.WithCache(&dataloader.NoCache{}),
	)
	return l
}

func (l *BinaryFileLoader) batch(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
	results := make([]*dataloader.Result, len(keys))

	guids := make([]uuid.UUID, 0, len(keys))
	for i, k := range keys {
		guid, err := uuid.Parse(k.String())
		if err != nil {
			results[i] = &dataloader.Result{Error: errors.Wrapf(err, "invalid binary file GUID %q", k.String())}
			continue
		}
		guids = append(guids, guid)
	}

	files, err := l.repo.GetByGUIDs(ctx, guids)
	if err != nil {
		for i := range results {
			if results[i] == nil {
				results[i] = &dataloader.Result{Error: err}
			}
		}
		return results
	}

	byGUID := make(map[uuid.UUID]domain.BinaryFile, len(files))
	for _, f := range files {
		byGUID[f.GUID] = f
	}

	for i, k := range keys {
		if results[i] != nil {
			continue
		}
		guid := uuid.MustParse(k.String())
		if f, ok := byGUID[guid]; ok {
			file := f
			results[i] = &dataloader.Result{Data: &file}
		} else {
			results[i] = &dataloader.Result{Data: (*domain.BinaryFile)(nil)}
		}
	}

	logrus.WithFields(logrus.Fields{
		"requested": len(keys),
		"found":     len(files),
	}).Debug("Batched binary file lookup")

	return results
}

// GetBinaryFileByGUID returns nil when no file has guid.
func (l *BinaryFileLoader) GetBinaryFileByGUID(ctx context.Context, guid uuid.UUID) (*domain.BinaryFile, error) {
	if f, ok := l.files.Get("guid", guid.String()); ok {
		return &f, nil
	}

	data, err := l.loader.Load(ctx, dataloader.StringKey(guid.String()))()
	if err != nil {
		return nil, err
	}
	file, _ := data.(*domain.BinaryFile)
	if file == nil {
		logrus.WithField("guid", guid).Debug("Binary file not found")
		return nil, nil
	}
	l.remember(*file)
	return file, nil
}

// GetBinaryFile returns nil when no file has id.
func (l *BinaryFileLoader) GetBinaryFile(ctx context.Context, id int) (*domain.BinaryFile, error) {
	if f, ok := l.files.Get("id", strconv.Itoa(id)); ok {
		return &f, nil
	}

	file, err := l.repo.GetBinaryFile(ctx, id)
	if err != nil {
		return nil, err
	}
	if file == nil {
		logrus.WithField("id", id).Debug("Binary file not found")
		return nil, nil
	}
	l.remember(*file)
	return file, nil
}

func (l *BinaryFileLoader) ListBinaryFileTypes(ctx context.Context) ([]domain.BinaryFileType, error) {
	if types, ok := l.types.Get("all", ""); ok {
		return types, nil
	}
	types, err := l.repo.ListBinaryFileTypes(ctx)
	if err != nil {
		return nil, err
	}
	l.types.Set("all", "", types)
	return types, nil
}

// Forget drops a file from the cache after it changed.
func (l *BinaryFileLoader) Forget(file domain.BinaryFile) {
	l.files.Invalidate("guid", file.GUID.String())
	l.files.Invalidate("id", strconv.Itoa(file.ID))
}

func (l *BinaryFileLoader) remember(file domain.BinaryFile) {
	l.files.Set("guid", file.GUID.String(), file)
	l.files.Set("id", strconv.Itoa(file.ID), file)
}
