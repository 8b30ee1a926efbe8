package sqlite

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/fwojciec/animgen"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ animgen.GenerationService = (*GenerationService)(nil)

// GenerationService implements animgen.GenerationService using SQLite.
type GenerationService struct {
	db *DB
}

// NewGenerationService creates a new GenerationService.
func NewGenerationService(db *DB) *GenerationService {
	return &GenerationService{db: db}
}

const generationColumns = `id, query, model, file_path, class_name, elaborated, fallback,
	rendered, render_error, output_files, duration_ns, created_at`

// CreateGeneration records a new generation.
func (s *GenerationService) CreateGeneration(ctx context.Context, g *animgen.Generation) error {
	if err := g.Validate(); err != nil {
		return err
	}

	g.ID = uuid.New().String()
	g.CreatedAt = time.Now().UTC().Truncate(time.Second)

	files, err := json.Marshal(nonNil(g.OutputFiles))
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO generations (`+generationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, g.ID, g.Query, g.Model, g.FilePath, g.ClassName, g.Elaborated, g.Fallback,
		g.Rendered, g.RenderError, string(files), int64(g.Duration), g.CreatedAt.Format(time.RFC3339))

	return err
}

// FindGenerationByID retrieves a generation by ID.
func (s *GenerationService) FindGenerationByID(ctx context.Context, id string) (*animgen.Generation, error) {
	g, err := scanGeneration(s.db.QueryRowContext(ctx,
		"SELECT "+generationColumns+" FROM generations WHERE id = ?", id))
	if isNoRows(err) {
		return nil, animgen.Errorf(animgen.ENOTFOUND, "generation not found")
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// FindGenerations retrieves generations matching the filter, newest first.
func (s *GenerationService) FindGenerations(ctx context.Context, filter animgen.GenerationFilter) ([]*animgen.Generation, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + generationColumns + " FROM generations WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Query != nil {
		query.WriteString(" AND instr(lower(query), lower(?)) > 0")
		args = append(args, *filter.Query)
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")

	// SQLite requires LIMIT when OFFSET is used.
	if filter.Offset > 0 && filter.Limit <= 0 {
		query.WriteString(" LIMIT -1")
	}
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*animgen.Generation
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// UpdateGeneration records the outcome of a render.
func (s *GenerationService) UpdateGeneration(ctx context.Context, id string, upd animgen.GenerationUpdate) (*animgen.Generation, error) {
	g, err := s.FindGenerationByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Rendered != nil {
		g.Rendered = *upd.Rendered
	}
	if upd.RenderError != nil {
		g.RenderError = *upd.RenderError
	}
	if upd.OutputFiles != nil {
		g.OutputFiles = upd.OutputFiles
	}

	files, err := json.Marshal(nonNil(g.OutputFiles))
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE generations
		SET rendered = ?, render_error = ?, output_files = ?
		WHERE id = ?
	`, g.Rendered, g.RenderError, string(files), id)
	if err != nil {
		return nil, err
	}

	return g, nil
}

// Stats summarizes all recorded generations.
func (s *GenerationService) Stats(ctx context.Context, popular int) (*animgen.GenerationStats, error) {
	var stats animgen.GenerationStats
	var avg float64

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN fallback = 0 AND render_error = '' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(fallback), 0),
			COALESCE(SUM(rendered), 0),
			COALESCE(AVG(duration_ns), 0)
		FROM generations
	`).Scan(&stats.Total, &stats.Succeeded, &stats.Fallbacks, &stats.Rendered, &avg)
	if err != nil {
		return nil, err
	}

	stats.AverageDuration = time.Duration(avg)
	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Succeeded) / float64(stats.Total)
	}

	stats.PopularQueries = []string{}
	if popular <= 0 {
		return &stats, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT lower(trim(query)) AS q
		FROM generations
		GROUP BY q
		ORDER BY COUNT(*) DESC, MAX(created_at) DESC, q ASC
		LIMIT ?
	`, popular)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, err
		}
		stats.PopularQueries = append(stats.PopularQueries, q)
	}
	return &stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGeneration(row rowScanner) (*animgen.Generation, error) {
	var g animgen.Generation
	var files, createdAt string
	var duration int64

	if err := row.Scan(&g.ID, &g.Query, &g.Model, &g.FilePath, &g.ClassName, &g.Elaborated, &g.Fallback,
		&g.Rendered, &g.RenderError, &files, &duration, &createdAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(files), &g.OutputFiles); err != nil {
		return nil, err
	}
	if len(g.OutputFiles) == 0 {
		g.OutputFiles = nil
	}
	g.Duration = time.Duration(duration)

	var err error
	g.CreatedAt, err = parseRFC3339(createdAt, "created_at")
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
