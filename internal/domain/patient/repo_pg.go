package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hms/hms/internal/federation"
)

type repoPG struct{}

func NewRepoPG() Repository { return &repoPG{} }

const cols = `id, nombre, apellido, correo, telefono, direccion, fecha_nacimiento, created_at, updated_at`

func scanRow(row pgx.Row) (Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone,
		&p.Address, &p.BirthDate, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repoPG) Insert(ctx context.Context, shard *federation.Shard, p *Patient) error {
	return shard.Pool.QueryRow(ctx, `
		INSERT INTO pacientes (nombre, apellido, correo, telefono, direccion, fecha_nacimiento)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at, updated_at`,
		p.FirstName, p.LastName, p.Email, p.Phone, p.Address, p.BirthDate,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, shard *federation.Shard, id int64) (Patient, bool, error) {
	p, err := scanRow(shard.Pool.QueryRow(ctx,
		`SELECT `+cols+` FROM pacientes WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Patient{}, false, nil
	}
	if err != nil {
		return Patient{}, false, err
	}
	return p, true, nil
}

func (r *repoPG) Update(ctx context.Context, shard *federation.Shard, p *Patient) error {
	_, err := shard.Pool.Exec(ctx, `
		UPDATE pacientes SET nombre=$2, apellido=$3, correo=$4, telefono=$5,
			direccion=$6, fecha_nacimiento=$7, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.Email, p.Phone, p.Address, p.BirthDate)
	return err
}

func (r *repoPG) Delete(ctx context.Context, shard *federation.Shard, id int64) error {
	_, err := shard.Pool.Exec(ctx, `DELETE FROM pacientes WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, shard *federation.Shard, term string) ([]Patient, error) {
	query := `SELECT ` + cols + ` FROM pacientes ORDER BY apellido, nombre`
	args := []interface{}{}
	if term != "" {
		query = `SELECT ` + cols + ` FROM pacientes
			WHERE nombre ILIKE '%' || $1 || '%' OR apellido ILIKE '%' || $1 || '%' OR correo ILIKE '%' || $1 || '%'
			ORDER BY apellido, nombre`
		args = append(args, term)
	}
	rows, err := shard.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Patient
	for rows.Next() {
		p, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *repoPG) ExistsByEmail(ctx context.Context, shard *federation.Shard, email string, excludeID int64) (bool, error) {
	var n int64
	err := shard.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM pacientes WHERE correo = $1 AND id <> $2`,
		email, excludeID).Scan(&n)
	return n > 0, err
}

func (r *repoPG) CountDependents(ctx context.Context, shard *federation.Shard, dep federation.Dependent, id int64) (int64, error) {
	var n int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, dep.Table, dep.Column)
	err := shard.Pool.QueryRow(ctx, query, id).Scan(&n)
	return n, err
}
