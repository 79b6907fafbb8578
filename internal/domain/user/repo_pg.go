package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/hms/hms/internal/federation"
)

type repoPG struct{}

func NewRepoPG() Repository { return &repoPG{} }

const cols = `id, nombre_usuario, rol, id_medico, id_empleado, activo, created_at, updated_at`

func scanRow(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Role, &u.DoctorID, &u.EmployeeID,
		&u.Active, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *repoPG) Insert(ctx context.Context, shard *federation.Shard, u *User) error {
	return shard.Pool.QueryRow(ctx, `
		INSERT INTO usuarios (nombre_usuario, rol, id_medico, id_empleado, activo)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at, updated_at`,
		u.Username, u.Role, u.DoctorID, u.EmployeeID, u.Active,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, shard *federation.Shard, id int64) (User, bool, error) {
	u, err := scanRow(shard.Pool.QueryRow(ctx,
		`SELECT `+cols+` FROM usuarios WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, err
	}
	return u, true, nil
}

func (r *repoPG) Update(ctx context.Context, shard *federation.Shard, u *User) error {
	_, err := shard.Pool.Exec(ctx, `
		UPDATE usuarios SET nombre_usuario=$2, rol=$3, id_medico=$4,
			id_empleado=$5, activo=$6, updated_at=NOW()
		WHERE id = $1`,
		u.ID, u.Username, u.Role, u.DoctorID, u.EmployeeID, u.Active)
	return err
}

func (r *repoPG) Delete(ctx context.Context, shard *federation.Shard, id int64) error {
	_, err := shard.Pool.Exec(ctx, `DELETE FROM usuarios WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, shard *federation.Shard, term string) ([]User, error) {
	query := `SELECT ` + cols + ` FROM usuarios ORDER BY nombre_usuario`
	args := []interface{}{}
	if term != "" {
		query = `SELECT ` + cols + ` FROM usuarios
			WHERE nombre_usuario ILIKE '%' || $1 || '%' OR rol ILIKE '%' || $1 || '%'
			ORDER BY nombre_usuario`
		args = append(args, term)
	}
	rows, err := shard.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []User
	for rows.Next() {
		u, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

func (r *repoPG) ExistsByUsername(ctx context.Context, shard *federation.Shard, username string, excludeID int64) (bool, error) {
	var n int64
	err := shard.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM usuarios WHERE nombre_usuario = $1 AND id <> $2`,
		username, excludeID).Scan(&n)
	return n > 0, err
}

func (r *repoPG) DoctorExists(ctx context.Context, shard *federation.Shard, doctorID int64) (bool, error) {
	var n int64
	err := shard.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM medicos WHERE id = $1`, doctorID).Scan(&n)
	return n > 0, err
}

func (r *repoPG) EmployeeExists(ctx context.Context, shard *federation.Shard, employeeID int64) (bool, error) {
	var n int64
	err := shard.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM empleados WHERE id = $1`, employeeID).Scan(&n)
	return n > 0, err
}
