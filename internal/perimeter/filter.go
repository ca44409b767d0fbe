package perimeter

import (
	"context"

	"github.com/dotfed/idhost/models"
)

//go:generate mockgen -source=filter.go -destination=../mock/filter_mock.go -package=mock

// FilterContext gives a filter what it may inspect beyond the raw bytes.
type FilterContext struct {
	Sender      models.Identity
	TargetDrive string
	PartKind    models.PartKind
}

// Filter classifies one transfer part. Implementations may inspect size,
// declared type, or content signatures. Filters are pluggable; the host
// ships only conservative structural checks.
type Filter interface {
	Classify(ctx context.Context, fctx FilterContext, data []byte) (models.FilterAction, error)
}

// Pipeline runs parts through an ordered filter chain. The most severe
// verdict wins; a Reject short-circuits the rest of the chain.
type Pipeline struct {
	filters []Filter
}

// NewPipeline builds a pipeline over the given filters. An empty pipeline
// accepts everything.
func NewPipeline(filters ...Filter) Pipeline {
	return Pipeline{filters: filters}
}

// Classify implements the filter contract over the whole chain.
func (p Pipeline) Classify(ctx context.Context, fctx FilterContext, data []byte) (models.FilterAction, error) {
	verdict := models.FilterAccept

	for _, f := range p.filters {
		action, err := f.Classify(ctx, fctx, data)
		if err != nil {
			// A broken filter must not wave content through.
			return models.FilterReject, err
		}

		switch action {
		case models.FilterReject:
			return models.FilterReject, nil
		case models.FilterQuarantine:
			verdict = models.FilterQuarantine
		}
	}

	return verdict, nil
}

// PartSizeFilter rejects parts above a byte limit. Zero means no limit.
type PartSizeFilter struct {
	MaxBytes int64
}

// Classify implements [Filter].
func (f PartSizeFilter) Classify(_ context.Context, _ FilterContext, data []byte) (models.FilterAction, error) {
	if f.MaxBytes > 0 && int64(len(data)) > f.MaxBytes {
		return models.FilterReject, nil
	}

	return models.FilterAccept, nil
}

// EmptyPartFilter rejects zero-length payload parts; an empty metadata or
// thumbnail part is tolerated.
type EmptyPartFilter struct{}

// Classify implements [Filter].
func (EmptyPartFilter) Classify(_ context.Context, fctx FilterContext, data []byte) (models.FilterAction, error) {
	if fctx.PartKind == models.PartPayload && len(data) == 0 {
		return models.FilterReject, nil
	}

	return models.FilterAccept, nil
}
