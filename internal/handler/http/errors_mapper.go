package http

import (
	"errors"
	"net/http"

	"github.com/dotfed/idhost/internal/acl"
	"github.com/dotfed/idhost/internal/drive"
	"github.com/dotfed/idhost/internal/perimeter"
	"github.com/dotfed/idhost/internal/store"
	"github.com/dotfed/idhost/internal/transit"
)

var errorStatusMap = map[error]int{
	perimeter.ErrInvalidInstructionSet: http.StatusBadRequest,
	perimeter.ErrUnknownPartKind:       http.StatusBadRequest,
	perimeter.ErrTransferIncomplete:    http.StatusBadRequest,
	perimeter.ErrUnknownTransfer:       http.StatusNotFound,
	perimeter.ErrTransferRejected:      http.StatusForbidden,

	acl.ErrPermissionDenied: http.StatusForbidden,

	drive.ErrUnknownDrive:       http.StatusBadRequest,
	drive.ErrFileNotFound:       http.StatusNotFound,
	drive.ErrQuarantinedContent: http.StatusConflict,

	transit.ErrNoRecipients:           http.StatusBadRequest,
	transit.ErrSelfRecipient:          http.StatusBadRequest,
	transit.ErrMissingKeyHeader:       http.StatusConflict,
	transit.ErrMissingGlobalTransitID: http.StatusConflict,

	store.ErrConnectionNotFound: http.StatusNotFound,
	store.ErrStaleMarker:        http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
