package geostore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Murmeldyret/DUNK/internal/geo"
)

// Names under which the coordinate chain looks up transforms.
const (
	DatasetTransformName   = "dataset"
	ElevationTransformName = "elevation"
)

// NamedTransform is a geotransform together with the name it is stored under.
type NamedTransform struct {
	Name      string
	Transform geo.Geotransform
}

// CreateGeotransform appends a transform under name. Existing rows with the
// same name are kept; ReadGeotransform keeps returning the oldest one.
func (s *Store) CreateGeotransform(ctx context.Context, name string, gt geo.Geotransform) error {
	return s.createGeotransform(ctx, s.db, name, gt)
}

func (s *Store) createGeotransform(ctx context.Context, db execer, name string, gt geo.Geotransform) error {
	p := s.dialect.placeholder
	query := fmt.Sprintf(
		`INSERT INTO geotransform (dataset_name, c0, c1, c2, c3, c4, c5) VALUES (%s, %s, %s, %s, %s, %s, %s)`,
		p(1), p(2), p(3), p(4), p(5), p(6), p(7),
	)
	args := []any{name}
	for _, c := range gt {
		args = append(args, c)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert geotransform %q: %w", name, err)
	}
	return nil
}

// ReadGeotransform returns the oldest transform stored under name.
//
// # Errors
//
//   - ErrNotFound if no row has the name.
//   - ErrIncompleteTransform if the row has a NULL coefficient.
func (s *Store) ReadGeotransform(ctx context.Context, name string) (geo.Geotransform, error) {
	query := fmt.Sprintf(
		`SELECT c0, c1, c2, c3, c4, c5 FROM geotransform WHERE dataset_name = %s ORDER BY id LIMIT 1`,
		s.dialect.placeholder(1),
	)

	var cols [6]sql.NullFloat64
	err := s.db.QueryRowContext(ctx, query, name).Scan(&cols[0], &cols[1], &cols[2], &cols[3], &cols[4], &cols[5])
	if errors.Is(err, sql.ErrNoRows) {
		return geo.Geotransform{}, fmt.Errorf("geotransform %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return geo.Geotransform{}, fmt.Errorf("failed to read geotransform %q: %w", name, err)
	}

	var gt geo.Geotransform
	for i, c := range cols {
		if !c.Valid {
			return geo.Geotransform{}, fmt.Errorf("geotransform %q coefficient %d: %w", name, i, ErrIncompleteTransform)
		}
		gt[i] = c.Float64
	}
	return gt, nil
}
