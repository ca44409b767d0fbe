package models

import (
	"time"

	"github.com/google/uuid"
)

// FileRef addresses one file inside one drive on the local host. The file id
// is server-generated and never trusted from a remote sender.
type FileRef struct {
	DriveID string    `json:"driveId"`
	FileID  uuid.UUID `json:"fileId"`
}

// IsZero reports whether the reference is empty.
func (f FileRef) IsZero() bool {
	return f.DriveID == "" && f.FileID == uuid.Nil
}

// FileHeader is the committed, server-side descriptor of a stored file: the
// sealed content key, the sender-supplied metadata, and the ACL that gates
// every subsequent read.
type FileHeader struct {
	Ref                FileRef            `json:"ref"`
	EncryptedKeyHeader EncryptedKeyHeader `json:"encryptedKeyHeader"`
	Metadata           FileMetadata       `json:"metadata"`
	Acl                *AccessControlList `json:"acl,omitempty"`
	Sender             Identity           `json:"sender,omitempty"`
	GlobalTransitID    *uuid.UUID         `json:"globalTransitId,omitempty"`
	CommittedAt        time.Time          `json:"committedAt"`
}
