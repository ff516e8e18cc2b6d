package database

import (
	"context"
	"iter"

	"salesdash/server/internal/models"
)

// DefaultPageSize bounds a single round trip when scanning the whole table.
const DefaultPageSize = 1000

// PageFunc fetches rows [offset, offset+limit).
type PageFunc func(ctx context.Context, offset, limit int) ([]models.Property, error)

// Paginate yields every record fetch returns, one page at a time, stopping
// at the first short page. The sequence is lazy and can be ranged over more
// than once; each range starts again from offset zero. A fetch error is
// yielded once and ends the sequence.
func Paginate(ctx context.Context, pageSize int, fetch PageFunc) iter.Seq2[models.Property, error] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return func(yield func(models.Property, error) bool) {
		for offset := 0; ; offset += pageSize {
			if err := ctx.Err(); err != nil {
				yield(models.Property{}, err)
				return
			}

			page, err := fetch(ctx, offset, pageSize)
			if err != nil {
				yield(models.Property{}, err)
				return
			}
			for _, p := range page {
				if !yield(p, nil) {
					return
				}
			}
			if len(page) < pageSize {
				return
			}
		}
	}
}

// ScanProperties pages through every record matching q in id order.
// q.Offset, q.Limit and q.Order are ignored.
func ScanProperties(ctx context.Context, reader PropertyReader, q PropertyQuery, pageSize int) iter.Seq2[models.Property, error] {
	return Paginate(ctx, pageSize, func(ctx context.Context, offset, limit int) ([]models.Property, error) {
		page := q
		page.Order = OrderIDAsc
		page.Offset = offset
		page.Limit = limit
		return reader.ListProperties(ctx, page)
	})
}

// Collect drains seq into a slice, returning the first error.
func Collect(seq iter.Seq2[models.Property, error]) ([]models.Property, error) {
	var properties []models.Property
	for p, err := range seq {
		if err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	return properties, nil
}
