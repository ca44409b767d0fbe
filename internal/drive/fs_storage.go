// Package drive implements the local drive storage capability on the host
// filesystem. Each drive is a directory under the configured root; temp
// areas live under <drive>/tmp/<file-id> and committed files under
// <drive>/files/<file-id> with a JSON header sidecar.
package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dotfed/idhost/internal/config"
	"github.com/dotfed/idhost/internal/logger"
	"github.com/dotfed/idhost/models"
)

const (
	tmpDirName   = "tmp"
	filesDirName = "files"

	headerFileName   = "header.json"
	quarantineSuffix = ".quarantine"
)

// fsStorage is the filesystem implementation of [Storage].
type fsStorage struct {
	root   string
	logger *logger.Logger
}

// NewStorage constructs a filesystem-backed [Storage] rooted at
// cfg.RootDir. The root directory is created if missing.
func NewStorage(cfg config.Drive, log *logger.Logger) (Storage, error) {
	if cfg.RootDir == "" {
		return nil, errors.New("drive root directory is not configured")
	}

	if err := os.MkdirAll(cfg.RootDir, 0o700); err != nil {
		return nil, fmt.Errorf("create drive root: %w", err)
	}

	log.Debug().Str("root", cfg.RootDir).Msg("creating drive storage")
	return &fsStorage{
		root:   cfg.RootDir,
		logger: log,
	}, nil
}

// ValidDriveID reports whether id can name a drive directory: one clean
// path element, no separators and no parent references. Anything else would
// let a remote-chosen drive id escape the storage root.
func ValidDriveID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	if strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, 0) {
		return false
	}
	return filepath.Clean(id) == id
}

// CreateTempFile implements [Storage].
func (s *fsStorage) CreateTempFile(ctx context.Context, driveID string) (models.FileRef, error) {
	if !ValidDriveID(driveID) {
		return models.FileRef{}, ErrUnknownDrive
	}

	ref := models.FileRef{DriveID: driveID, FileID: uuid.New()}
	if err := os.MkdirAll(s.tempDir(ref), 0o700); err != nil {
		return models.FileRef{}, fmt.Errorf("create temp area: %w", err)
	}

	return ref, nil
}

// WriteTempStream implements [Storage].
func (s *fsStorage) WriteTempStream(ctx context.Context, ref models.FileRef, kind models.PartKind, r io.Reader) (int64, error) {
	return s.writeTemp(ref, kind, r, false)
}

// QuarantineTempStream implements [Storage].
func (s *fsStorage) QuarantineTempStream(ctx context.Context, ref models.FileRef, kind models.PartKind, r io.Reader) (int64, error) {
	return s.writeTemp(ref, kind, r, true)
}

func (s *fsStorage) writeTemp(ref models.FileRef, kind models.PartKind, r io.Reader, quarantined bool) (int64, error) {
	dir := s.tempDir(ref)
	if _, err := os.Stat(dir); err != nil {
		return 0, ErrFileNotFound
	}

	name := string(kind)
	if quarantined {
		name += quarantineSuffix
	}

	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return 0, fmt.Errorf("open temp part: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		return n, fmt.Errorf("write temp part: %w", err)
	}

	return n, nil
}

// ReadTempPart implements [Storage].
func (s *fsStorage) ReadTempPart(ctx context.Context, ref models.FileRef, kind models.PartKind) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.tempDir(ref), string(kind)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("read temp part: %w", err)
	}

	return data, nil
}

// ReadQuarantinedPart implements [Storage].
func (s *fsStorage) ReadQuarantinedPart(ctx context.Context, ref models.FileRef, kind models.PartKind) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.tempDir(ref), string(kind)+quarantineSuffix))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("read quarantined part: %w", err)
	}

	return data, nil
}

// DeleteTempFiles implements [Storage].
func (s *fsStorage) DeleteTempFiles(ctx context.Context, ref models.FileRef) error {
	if err := os.RemoveAll(s.tempDir(ref)); err != nil {
		return fmt.Errorf("delete temp area: %w", err)
	}

	return nil
}

// PurgeQuarantine implements [Storage].
func (s *fsStorage) PurgeQuarantine(ctx context.Context, ref models.FileRef) error {
	dir := s.tempDir(ref)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read temp area: %w", err)
	}

	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == quarantineSuffix {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				return fmt.Errorf("purge quarantined part: %w", err)
			}
		}
	}

	return nil
}

// CommitFile implements [Storage]. The temp area is renamed into the files
// directory, then the header sidecar is written. Rename is atomic within
// one filesystem, so a committed file never exposes a partial part set.
func (s *fsStorage) CommitFile(ctx context.Context, header models.FileHeader) error {
	if header.Ref.IsZero() {
		return ErrFileNotFound
	}

	tempDir := s.tempDir(header.Ref)
	if _, err := os.Stat(tempDir); err != nil {
		return ErrFileNotFound
	}

	// Quarantined parts must never survive into committed storage.
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return fmt.Errorf("read temp area: %w", err)
	}
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == quarantineSuffix {
			return ErrQuarantinedContent
		}
	}

	fileDir := s.fileDir(header.Ref)
	if err := os.MkdirAll(filepath.Dir(fileDir), 0o700); err != nil {
		return fmt.Errorf("create files dir: %w", err)
	}

	if err := os.Rename(tempDir, fileDir); err != nil {
		return fmt.Errorf("promote temp area: %w", err)
	}

	header.CommittedAt = time.Now().UTC()
	raw, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("marshal file header: %w", err)
	}

	if err := os.WriteFile(filepath.Join(fileDir, headerFileName), raw, 0o600); err != nil {
		return fmt.Errorf("write file header: %w", err)
	}

	return nil
}

// UpdateFileHeader implements [Storage].
func (s *fsStorage) UpdateFileHeader(ctx context.Context, header models.FileHeader) error {
	fileDir := s.fileDir(header.Ref)
	if _, err := os.Stat(filepath.Join(fileDir, headerFileName)); err != nil {
		return ErrFileNotFound
	}

	raw, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("marshal file header: %w", err)
	}

	if err := os.WriteFile(filepath.Join(fileDir, headerFileName), raw, 0o600); err != nil {
		return fmt.Errorf("write file header: %w", err)
	}

	return nil
}

// GetFileHeader implements [Storage].
func (s *fsStorage) GetFileHeader(ctx context.Context, ref models.FileRef) (models.FileHeader, error) {
	raw, err := os.ReadFile(filepath.Join(s.fileDir(ref), headerFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.FileHeader{}, ErrFileNotFound
		}
		return models.FileHeader{}, fmt.Errorf("read file header: %w", err)
	}

	var header models.FileHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return models.FileHeader{}, fmt.Errorf("unmarshal file header: %w", err)
	}

	return header, nil
}

// GetHeaderByGlobalTransitID implements [Storage]. Committed headers on the
// drive are scanned; drives are per-tenant and modest in size, an index can
// come later if profiles say otherwise.
func (s *fsStorage) GetHeaderByGlobalTransitID(ctx context.Context, driveID string, gtid uuid.UUID) (models.FileHeader, error) {
	if !ValidDriveID(driveID) {
		return models.FileHeader{}, ErrUnknownDrive
	}

	filesDir := filepath.Join(s.root, driveID, filesDirName)
	entries, err := os.ReadDir(filesDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.FileHeader{}, ErrFileNotFound
		}
		return models.FileHeader{}, fmt.Errorf("read files dir: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		fileID, err := uuid.Parse(entry.Name())
		if err != nil {
			continue
		}

		header, err := s.GetFileHeader(ctx, models.FileRef{DriveID: driveID, FileID: fileID})
		if err != nil {
			continue
		}

		if header.GlobalTransitID != nil && *header.GlobalTransitID == gtid {
			return header, nil
		}
	}

	return models.FileHeader{}, ErrFileNotFound
}

// ReadPart implements [Storage].
func (s *fsStorage) ReadPart(ctx context.Context, ref models.FileRef, kind models.PartKind) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.fileDir(ref), string(kind)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("open committed part: %w", err)
	}

	return f, nil
}

// DeleteFile implements [Storage].
func (s *fsStorage) DeleteFile(ctx context.Context, ref models.FileRef) error {
	if err := os.RemoveAll(s.fileDir(ref)); err != nil {
		return fmt.Errorf("delete committed file: %w", err)
	}

	return nil
}

func (s *fsStorage) tempDir(ref models.FileRef) string {
	return filepath.Join(s.root, ref.DriveID, tmpDirName, ref.FileID.String())
}

func (s *fsStorage) fileDir(ref models.FileRef) string {
	return filepath.Join(s.root, ref.DriveID, filesDirName, ref.FileID.String())
}
