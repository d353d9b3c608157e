package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/rpattn/dataview/internal/db"
	"github.com/rpattn/dataview/internal/domain"
)

const binaryFileColumns = "id, guid, binary_file_type_id, file_name, mime_type, created_at"

type binaryFileRepository struct {
	db db.DBTX
}

// NewBinaryFileRepository creates a repository over the binary_files table
func NewBinaryFileRepository(exec db.DBTX) BinaryFileRepository {
	return &binaryFileRepository{db: exec}
}

func (r *binaryFileRepository) GetBinaryFile(ctx context.Context, id int) (*domain.BinaryFile, error) {
	row := r.db.QueryRow(ctx, "SELECT "+binaryFileColumns+" FROM binary_files WHERE id = $1", id)
	file, err := scanBinaryFile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get binary file %d", id)
	}
	return &file, nil
}

func (r *binaryFileRepository) GetBinaryFileByGUID(ctx context.Context, guid uuid.UUID) (*domain.BinaryFile, error) {
	row := r.db.QueryRow(ctx, "SELECT "+binaryFileColumns+" FROM binary_files WHERE guid = $1", guid)
	file, err := scanBinaryFile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get binary file %s", guid)
	}
	return &file, nil
}

// GetByGUIDs returns the files that exist among guids, in no particular
// order.
func (r *binaryFileRepository) GetByGUIDs(ctx context.Context, guids []uuid.UUID) ([]domain.BinaryFile, error) {
	if len(guids) == 0 {
		return []domain.BinaryFile{}, nil
	}

	keys := make([]string, len(guids))
	for i, guid := range guids {
		keys[i] = guid.String()
	}

	rows, err := r.db.Query(ctx, "SELECT "+binaryFileColumns+" FROM binary_files WHERE guid = ANY($1::uuid[])", keys)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get binary files by GUIDs")
	}
	defer rows.Close()

	files := make([]domain.BinaryFile, 0, len(guids))
	for rows.Next() {
		file, err := scanBinaryFile(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan binary file row")
		}
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate binary file rows")
	}
	return files, nil
}

func (r *binaryFileRepository) ListBinaryFileTypes(ctx context.Context) ([]domain.BinaryFileType, error) {
	rows, err := r.db.Query(ctx, "SELECT id, name FROM binary_file_types ORDER BY name")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list binary file types")
	}
	defer rows.Close()

	types := make([]domain.BinaryFileType, 0)
	for rows.Next() {
		var t domain.BinaryFileType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, errors.Wrap(err, "scan binary file type row")
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate binary file type rows")
	}
	return types, nil
}

func scanBinaryFile(row pgx.Row) (domain.BinaryFile, error) {
	var f domain.BinaryFile
	err := row.Scan(&f.ID, &f.GUID, &f.BinaryFileTypeID, &f.FileName, &f.MimeType, &f.CreatedAt)
	return f, err
}
