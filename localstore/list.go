package localstore

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// ErrCorrupt is returned by List.Load when the stored value is not a JSON
// array of the expected element type.
var ErrCorrupt = errors.New("stored list is malformed")

type ListOptions struct {
	// MaxLen bounds the list; longer stored lists are truncated on load.
	// Zero means unbounded.
	MaxLen int
	// DiscardCorrupt deletes the slot when its contents fail to decode.
	DiscardCorrupt bool
}

// List reads and writes a []T as one JSON array under a single slot key.
// Every Save replaces the whole array.
type List[T any] struct {
	slots Slots
	key   string
	opts  ListOptions
}

func NewList[T any](slots Slots, key string, opts ListOptions) *List[T] {
	return &List[T]{slots: slots, key: key, opts: opts}
}

func (l *List[T]) Key() string { return l.key }

// Load returns the stored list. A missing slot yields an empty list and no
// error. On ErrCorrupt the returned list is empty and, with DiscardCorrupt,
// the slot has been deleted. Any other error means the slot could not be
// read and its contents are unknown.
func (l *List[T]) Load(ctx context.Context) ([]T, error) {
	raw, ok, err := l.slots.Get(ctx, l.key)
	if err != nil {
		return []T{}, errors.Wrapf(err, "read slot %s", l.key)
	}
	if !ok {
		return []T{}, nil
	}

	items, decodeErr := decodeArray[T](raw)
	if decodeErr != nil {
		if l.opts.DiscardCorrupt {
			if err := l.slots.Delete(ctx, l.key); err != nil {
				return []T{}, errors.Wrapf(err, "discard corrupt slot %s", l.key)
			}
		}
		return []T{}, errors.Wrapf(decodeErr, "slot %s", l.key)
	}
	if l.opts.MaxLen > 0 && len(items) > l.opts.MaxLen {
		items = items[:l.opts.MaxLen]
	}
	return items, nil
}

// Save serializes items and replaces the slot contents.
func (l *List[T]) Save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return errors.Wrapf(err, "encode slot %s", l.key)
	}
	return l.slots.Set(ctx, l.key, raw)
}

func decodeArray[T any](raw []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrCorrupt
	}
	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, errors.Wrap(ErrCorrupt, err.Error())
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
