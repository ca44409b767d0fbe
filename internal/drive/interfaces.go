package drive

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/dotfed/idhost/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/drive_mock.go -package=mock

// Storage is the local drive capability consumed by the transit and
// perimeter services. Temp areas hold in-flight inbound parts; committing
// promotes a temp area to a permanent file with a server-side header.
type Storage interface {
	// CreateTempFile allocates a fresh temp area on driveID and returns its
	// server-generated reference.
	CreateTempFile(ctx context.Context, driveID string) (models.FileRef, error)

	// WriteTempStream streams one part's content into the temp area.
	// Writing the same part kind twice overwrites the previous content.
	WriteTempStream(ctx context.Context, ref models.FileRef, kind models.PartKind, r io.Reader) (int64, error)

	// QuarantineTempStream writes a part flagged as quarantined. The bytes
	// are retained for later inspection but a quarantined part can never be
	// committed.
	QuarantineTempStream(ctx context.Context, ref models.FileRef, kind models.PartKind, r io.Reader) (int64, error)

	// ReadTempPart returns the bytes of an accepted temp part, or
	// ErrFileNotFound. The finalize path re-reads the admitted metadata
	// part through it.
	ReadTempPart(ctx context.Context, ref models.FileRef, kind models.PartKind) ([]byte, error)

	// ReadQuarantinedPart returns the retained bytes of a quarantined part
	// for manual review.
	ReadQuarantinedPart(ctx context.Context, ref models.FileRef, kind models.PartKind) ([]byte, error)

	// DeleteTempFiles removes the whole temp area, accepted and quarantined
	// parts alike. Idempotent.
	DeleteTempFiles(ctx context.Context, ref models.FileRef) error

	// PurgeQuarantine removes only the quarantined parts of a temp area,
	// after manual review.
	PurgeQuarantine(ctx context.Context, ref models.FileRef) error

	// CommitFile atomically promotes the temp area to a permanent file
	// described by header. The temp area ceases to exist on success.
	CommitFile(ctx context.Context, header models.FileHeader) error

	// GetFileHeader reads the committed header for ref, or ErrFileNotFound.
	GetFileHeader(ctx context.Context, ref models.FileRef) (models.FileHeader, error)

	// UpdateFileHeader rewrites the header of an already committed file,
	// e.g. when a global transit id is minted after commit. The file's
	// parts are untouched. Returns ErrFileNotFound for uncommitted refs.
	UpdateFileHeader(ctx context.Context, header models.FileHeader) error

	// GetHeaderByGlobalTransitID resolves a committed file on driveID by the
	// transfer-wide id the sender minted, or ErrFileNotFound.
	GetHeaderByGlobalTransitID(ctx context.Context, driveID string, gtid uuid.UUID) (models.FileHeader, error)

	// ReadPart streams a committed part's content for outbound transit.
	ReadPart(ctx context.Context, ref models.FileRef, kind models.PartKind) (io.ReadCloser, error)

	// DeleteFile removes a committed file and its header. Idempotent.
	DeleteFile(ctx context.Context, ref models.FileRef) error
}
