package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hms/hms/internal/federation"
)

type repoPG struct{}

func NewRepoPG() Repository { return &repoPG{} }

const cols = `id, nombre, apellido, correo, telefono, id_especialidad, created_at, updated_at`

func scanRow(row pgx.Row) (Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.FirstName, &d.LastName, &d.Email, &d.Phone,
		&d.SpecialtyID, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (r *repoPG) Insert(ctx context.Context, shard *federation.Shard, d *Doctor) error {
	return shard.Pool.QueryRow(ctx, `
		INSERT INTO medicos (nombre, apellido, correo, telefono, id_especialidad)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at, updated_at`,
		d.FirstName, d.LastName, d.Email, d.Phone, d.SpecialtyID,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, shard *federation.Shard, id int64) (Doctor, bool, error) {
	d, err := scanRow(shard.Pool.QueryRow(ctx,
		`SELECT `+cols+` FROM medicos WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Doctor{}, false, nil
	}
	if err != nil {
		return Doctor{}, false, err
	}
	return d, true, nil
}

func (r *repoPG) Update(ctx context.Context, shard *federation.Shard, d *Doctor) error {
	_, err := shard.Pool.Exec(ctx, `
		UPDATE medicos SET nombre=$2, apellido=$3, correo=$4, telefono=$5,
			id_especialidad=$6, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.FirstName, d.LastName, d.Email, d.Phone, d.SpecialtyID)
	return err
}

func (r *repoPG) Delete(ctx context.Context, shard *federation.Shard, id int64) error {
	_, err := shard.Pool.Exec(ctx, `DELETE FROM medicos WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, shard *federation.Shard, term string) ([]Doctor, error) {
	query := `SELECT ` + cols + ` FROM medicos ORDER BY apellido, nombre`
	args := []interface{}{}
	if term != "" {
		query = `SELECT ` + cols + ` FROM medicos
			WHERE nombre ILIKE '%' || $1 || '%' OR apellido ILIKE '%' || $1 || '%' OR correo ILIKE '%' || $1 || '%'
			ORDER BY apellido, nombre`
		args = append(args, term)
	}
	rows, err := shard.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Doctor
	for rows.Next() {
		d, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *repoPG) ExistsByEmail(ctx context.Context, shard *federation.Shard, email string, excludeID int64) (bool, error) {
	var n int64
	err := shard.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM medicos WHERE correo = $1 AND id <> $2`,
		email, excludeID).Scan(&n)
	return n > 0, err
}

func (r *repoPG) SpecialtyExists(ctx context.Context, shard *federation.Shard, specialtyID int64) (bool, error) {
	var n int64
	err := shard.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM especialidades WHERE id = $1`, specialtyID).Scan(&n)
	return n > 0, err
}

func (r *repoPG) CountDependents(ctx context.Context, shard *federation.Shard, dep federation.Dependent, id int64) (int64, error) {
	var n int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, dep.Table, dep.Column)
	err := shard.Pool.QueryRow(ctx, query, id).Scan(&n)
	return n, err
}
