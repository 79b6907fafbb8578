package employee

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hms/hms/internal/federation"
)

type repoPG struct{}

func NewRepoPG() Repository { return &repoPG{} }

const cols = `id, nombre, apellido, cedula, cargo, telefono, created_at, updated_at`

func scanRow(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Cedula, &e.Position,
		&e.Phone, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *repoPG) Insert(ctx context.Context, shard *federation.Shard, e *Employee) error {
	return shard.Pool.QueryRow(ctx, `
		INSERT INTO empleados (nombre, apellido, cedula, cargo, telefono)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at, updated_at`,
		e.FirstName, e.LastName, e.Cedula, e.Position, e.Phone,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, shard *federation.Shard, id int64) (Employee, bool, error) {
	e, err := scanRow(shard.Pool.QueryRow(ctx,
		`SELECT `+cols+` FROM empleados WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, false, nil
	}
	if err != nil {
		return Employee{}, false, err
	}
	return e, true, nil
}

func (r *repoPG) Update(ctx context.Context, shard *federation.Shard, e *Employee) error {
	_, err := shard.Pool.Exec(ctx, `
		UPDATE empleados SET nombre=$2, apellido=$3, cedula=$4, cargo=$5,
			telefono=$6, updated_at=NOW()
		WHERE id = $1`,
		e.ID, e.FirstName, e.LastName, e.Cedula, e.Position, e.Phone)
	return err
}

func (r *repoPG) Delete(ctx context.Context, shard *federation.Shard, id int64) error {
	_, err := shard.Pool.Exec(ctx, `DELETE FROM empleados WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, shard *federation.Shard, term string) ([]Employee, error) {
	query := `SELECT ` + cols + ` FROM empleados ORDER BY apellido, nombre`
	args := []interface{}{}
	if term != "" {
		query = `SELECT ` + cols + ` FROM empleados
			WHERE nombre ILIKE '%' || $1 || '%' OR apellido ILIKE '%' || $1 || '%' OR cedula ILIKE '%' || $1 || '%'
			ORDER BY apellido, nombre`
		args = append(args, term)
	}
	rows, err := shard.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Employee
	for rows.Next() {
		e, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r *repoPG) ExistsByCedula(ctx context.Context, shard *federation.Shard, cedula string, excludeID int64) (bool, error) {
	var n int64
	err := shard.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM empleados WHERE cedula = $1 AND id <> $2`,
		cedula, excludeID).Scan(&n)
	return n > 0, err
}

func (r *repoPG) CountDependents(ctx context.Context, shard *federation.Shard, dep federation.Dependent, id int64) (int64, error) {
	var n int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, dep.Table, dep.Column)
	err := shard.Pool.QueryRow(ctx, query, id).Scan(&n)
	return n, err
}
