package geostore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Murmeldyret/DUNK/internal/metrics"
	"github.com/Murmeldyret/DUNK/internal/raster"
)

// MaxBindParameters is the largest number of bind parameters sent in one
// statement, the PostgreSQL protocol limit. Each elevation row uses one.
const MaxBindParameters = 65535

// ElevationGrid is a row-major grid of elevation samples.
type ElevationGrid struct {
	XSize   int
	YSize   int
	Heights []float64
}

// ElevationProperties describes the ingested elevation raster.
type ElevationProperties struct {
	XSize int `json:"x_size"`
	YSize int `json:"y_size"`
}

// IngestResult summarizes one elevation ingestion.
type IngestResult struct {
	Rows       int `json:"rows"`
	Statements int `json:"statements"`
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// GridFromDataset reads band 1 of ds at full resolution.
func GridFromDataset(ds raster.Dataset) (ElevationGrid, error) {
	band, err := ds.Band(1)
	if err != nil {
		return ElevationGrid{}, fmt.Errorf("failed to open elevation band: %w", err)
	}
	w, h := ds.Size()
	heights, err := band.ReadFloat64(raster.Window{Width: w, Height: h})
	if err != nil {
		return ElevationGrid{}, fmt.Errorf("failed to read elevation band: %w", err)
	}
	return ElevationGrid{XSize: w, YSize: h, Heights: heights}, nil
}

// AddElevationData stores every sample of grid followed by its properties.
//
// Samples go out in ceil(N/chunk) multi-row INSERT statements, where chunk
// is MaxBindParameters or the driver's lower limit. No transaction is used;
// on failure the first error is returned and earlier statements stay
// committed.
//
// Returns:
//   - IngestResult: Rows inserted and sample statements issued.
//   - error: Non-nil if the grid is inconsistent or a statement fails.
func (s *Store) AddElevationData(ctx context.Context, grid ElevationGrid) (IngestResult, error) {
	return s.ingest(ctx, s.db, grid)
}

// AddElevationDataset reads band 1 of ds and stores it with
// AddElevationData.
func (s *Store) AddElevationDataset(ctx context.Context, ds raster.Dataset) (IngestResult, error) {
	grid, err := GridFromDataset(ds)
	if err != nil {
		return IngestResult{}, err
	}
	return s.AddElevationData(ctx, grid)
}

// IngestInTransaction is AddElevationData inside a single transaction: either
// every row is stored or none is. The transforms, if any, are appended in the
// same transaction before the samples.
func (s *Store) IngestInTransaction(ctx context.Context, grid ElevationGrid, transforms ...NamedTransform) (res IngestResult, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return IngestResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, nt := range transforms {
		if err = s.createGeotransform(ctx, tx, nt.Name, nt.Transform); err != nil {
			return IngestResult{}, err
		}
	}
	res, err = s.ingest(ctx, tx, grid)
	if err != nil {
		return IngestResult{}, err
	}
	if err = tx.Commit(); err != nil {
		return IngestResult{}, fmt.Errorf("failed to commit elevation data: %w", err)
	}
	return res, nil
}

func (s *Store) ingest(ctx context.Context, db execer, grid ElevationGrid) (IngestResult, error) {
	if grid.XSize <= 0 || grid.YSize <= 0 || len(grid.Heights) != grid.XSize*grid.YSize {
		return IngestResult{}, fmt.Errorf("elevation grid %dx%d holds %d samples", grid.XSize, grid.YSize, len(grid.Heights))
	}

	var res IngestResult
	for _, chunk := range chunkHeights(grid.Heights, s.chunkRows) {
		if _, err := db.ExecContext(ctx, s.insertHeightsQuery(len(chunk)), chunk...); err != nil {
			return res, fmt.Errorf("failed to insert elevation rows %d-%d: %w", res.Rows, res.Rows+len(chunk), err)
		}
		res.Rows += len(chunk)
		res.Statements++
		metrics.IngestStatements.Inc()
	}

	p := s.dialect.placeholder
	query := fmt.Sprintf(`INSERT INTO elevation_properties (x_size, y_size) VALUES (%s, %s)`, p(1), p(2))
	if _, err := db.ExecContext(ctx, query, grid.XSize, grid.YSize); err != nil {
		return res, fmt.Errorf("failed to insert elevation properties: %w", err)
	}
	return res, nil
}

// chunkHeights splits heights into groups of at most size, with no empty
// trailing group.
func chunkHeights(heights []float64, size int) [][]any {
	var chunks [][]any
	for start := 0; start < len(heights); start += size {
		end := min(start+size, len(heights))
		chunk := make([]any, 0, end-start)
		for _, h := range heights[start:end] {
			chunk = append(chunk, h)
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

func (s *Store) insertHeightsQuery(rows int) string {
	var b strings.Builder
	b.WriteString(`INSERT INTO elevation (height) VALUES `)
	for i := 1; i <= rows; i++ {
		if i > 1 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		b.WriteString(s.dialect.placeholder(i))
		b.WriteString(")")
	}
	return b.String()
}

// ElevationProperties returns the size of the ingested elevation raster.
//
// # Errors
//
//   - ErrMissingProperties if nothing has been ingested.
func (s *Store) ElevationProperties(ctx context.Context) (ElevationProperties, error) {
	var props ElevationProperties
	err := s.db.QueryRowContext(ctx, `SELECT x_size, y_size FROM elevation_properties ORDER BY id LIMIT 1`).
		Scan(&props.XSize, &props.YSize)
	if errors.Is(err, sql.ErrNoRows) {
		return ElevationProperties{}, ErrMissingProperties
	}
	if err != nil {
		return ElevationProperties{}, fmt.Errorf("failed to read elevation properties: %w", err)
	}
	return props, nil
}

// GetElevation returns the sample at elevation pixel (x, y), rounding both
// coordinates to the nearest pixel.
//
// # Errors
//
//   - ErrMissingProperties if nothing has been ingested.
//   - ErrNotFound if the pixel has no stored row.
func (s *Store) GetElevation(ctx context.Context, x, y float64) (float64, error) {
	props, err := s.ElevationProperties(ctx)
	if err != nil {
		return 0, err
	}

	id := int64(math.Round(y))*int64(props.XSize) + int64(math.Round(x)) + 1
	query := fmt.Sprintf(`SELECT height FROM elevation WHERE id = %s`, s.dialect.placeholder(1))

	var height float64
	err = s.db.QueryRowContext(ctx, query, id).Scan(&height)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("elevation row %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read elevation row %d: %w", id, err)
	}
	return height, nil
}
