package relay

import "errors"

// MediaKind distinguishes the two kinds of media the resolver can return.
type MediaKind string

const (
	MediaPhoto MediaKind = "photo"
	MediaVideo MediaKind = "video"
)

// MediaItem is one resolved media reference. Items are immutable once
// resolved and their order is preserved end to end.
type MediaItem struct {
	Kind      MediaKind
	SourceURL string
}

// BatchItem is a MediaItem plus its caption. Only the first item of the
// first batch of a delivery carries a caption.
type BatchItem struct {
	MediaItem
	Caption string
}

// Batch is an ordered, non-empty group of items sent in one transport call.
type Batch []BatchItem

// ErrNoMedia means the resolver returned a non-nil but empty item list. It
// is anomalous and distinct from the resolver returning nothing at all.
var ErrNoMedia = errors.New("resolved post has no media items")

// PlanBatches partitions items into consecutive batches of at most maxBatch,
// preserving order, with caption attached only to the first item of the
// first batch.
func PlanBatches(items []MediaItem, caption string, maxBatch int) ([]Batch, error) {
	if len(items) == 0 {
		return nil, ErrNoMedia
	}
	if maxBatch <= 0 {
		maxBatch = MaxGroupSize
	}
	batches := make([]Batch, 0, (len(items)+maxBatch-1)/maxBatch)
	for start := 0; start < len(items); start += maxBatch {
		end := min(start+maxBatch, len(items))
		batch := make(Batch, 0, end-start)
		for i := start; i < end; i++ {
			item := BatchItem{MediaItem: items[i]}
			if i == 0 {
				item.Caption = caption
			}
			batch = append(batch, item)
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

// Single reports whether the plan is exactly one batch of one item, in which
// case the delivery uses the single-item send primitive.
func Single(batches []Batch) (BatchItem, bool) {
	if len(batches) == 1 && len(batches[0]) == 1 {
		return batches[0][0], true
	}
	return BatchItem{}, false
}
