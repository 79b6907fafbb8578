package specialty

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hms/hms/internal/federation"
)

type repoPG struct{}

func NewRepoPG() Repository { return &repoPG{} }

const cols = `id, nombre, descripcion, created_at, updated_at`

func scanRow(row pgx.Row) (Specialty, error) {
	var s Specialty
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *repoPG) Insert(ctx context.Context, shard *federation.Shard, s *Specialty) error {
	return shard.Pool.QueryRow(ctx, `
		INSERT INTO especialidades (nombre, descripcion)
		VALUES ($1,$2)
		RETURNING id, created_at, updated_at`,
		s.Name, s.Description,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, shard *federation.Shard, id int64) (Specialty, bool, error) {
	s, err := scanRow(shard.Pool.QueryRow(ctx,
		`SELECT `+cols+` FROM especialidades WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Specialty{}, false, nil
	}
	if err != nil {
		return Specialty{}, false, err
	}
	return s, true, nil
}

func (r *repoPG) Update(ctx context.Context, shard *federation.Shard, s *Specialty) error {
	_, err := shard.Pool.Exec(ctx, `
		UPDATE especialidades SET nombre=$2, descripcion=$3, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.Name, s.Description)
	return err
}

func (r *repoPG) Delete(ctx context.Context, shard *federation.Shard, id int64) error {
	_, err := shard.Pool.Exec(ctx, `DELETE FROM especialidades WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, shard *federation.Shard, term string) ([]Specialty, error) {
	query := `SELECT ` + cols + ` FROM especialidades ORDER BY nombre`
	args := []interface{}{}
	if term != "" {
		query = `SELECT ` + cols + ` FROM especialidades
			WHERE nombre ILIKE '%' || $1 || '%'
			ORDER BY nombre`
		args = append(args, term)
	}
	rows, err := shard.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Specialty
	for rows.Next() {
		s, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *repoPG) CountDependents(ctx context.Context, shard *federation.Shard, dep federation.Dependent, id int64) (int64, error) {
	var n int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, dep.Table, dep.Column)
	err := shard.Pool.QueryRow(ctx, query, id).Scan(&n)
	return n, err
}
