package consultation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hms/hms/internal/federation"
)

type repoPG struct{}

func NewRepoPG() Repository { return &repoPG{} }

const cols = `id, id_paciente, id_medico, fecha, motivo, diagnostico, duracion_minutos, created_at, updated_at`

// statsTables are the per-region row counts served by the dashboard.
var statsTables = []string{"pacientes", "medicos", "empleados", "especialidades", "usuarios", "consultas"}

func scanRow(row pgx.Row) (Consultation, error) {
	var c Consultation
	err := row.Scan(&c.ID, &c.PatientID, &c.DoctorID, &c.Date, &c.Reason,
		&c.Diagnosis, &c.Duration, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *repoPG) Insert(ctx context.Context, shard *federation.Shard, c *Consultation) error {
	return shard.Pool.QueryRow(ctx, `
		INSERT INTO consultas (id_paciente, id_medico, fecha, motivo, diagnostico, duracion_minutos)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at, updated_at`,
		c.PatientID, c.DoctorID, c.Date, c.Reason, c.Diagnosis, c.Duration,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, shard *federation.Shard, id int64) (Consultation, bool, error) {
	c, err := scanRow(shard.Pool.QueryRow(ctx,
		`SELECT `+cols+` FROM consultas WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Consultation{}, false, nil
	}
	if err != nil {
		return Consultation{}, false, err
	}
	return c, true, nil
}

func (r *repoPG) Update(ctx context.Context, shard *federation.Shard, c *Consultation) error {
	_, err := shard.Pool.Exec(ctx, `
		UPDATE consultas SET id_paciente=$2, id_medico=$3, fecha=$4, motivo=$5,
			diagnostico=$6, duracion_minutos=$7, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.PatientID, c.DoctorID, c.Date, c.Reason, c.Diagnosis, c.Duration)
	return err
}

func (r *repoPG) Delete(ctx context.Context, shard *federation.Shard, id int64) error {
	_, err := shard.Pool.Exec(ctx, `DELETE FROM consultas WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, shard *federation.Shard, f Filter) ([]Consultation, error) {
	query := `SELECT ` + cols + ` FROM consultas WHERE ($1 = 0 OR id_paciente = $1) AND ($2 = 0 OR id_medico = $2) ORDER BY fecha DESC`
	rows, err := shard.Pool.Query(ctx, query, f.PatientID, f.DoctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Consultation
	for rows.Next() {
		c, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *repoPG) PatientExists(ctx context.Context, shard *federation.Shard, patientID int64) (bool, error) {
	var n int64
	err := shard.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM pacientes WHERE id = $1`, patientID).Scan(&n)
	return n > 0, err
}

func (r *repoPG) DoctorExists(ctx context.Context, shard *federation.Shard, doctorID int64) (bool, error) {
	var n int64
	err := shard.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM medicos WHERE id = $1`, doctorID).Scan(&n)
	return n > 0, err
}

func (r *repoPG) AggregateDuration(ctx context.Context, shard *federation.Shard) (int64, float64, error) {
	var count int64
	var sum float64
	err := shard.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(duracion_minutos), 0) FROM consultas`).Scan(&count, &sum)
	return count, sum, err
}

func (r *repoPG) CountByPatient(ctx context.Context, shard *federation.Shard) ([]PatientCount, error) {
	rows, err := shard.Pool.Query(ctx, `
		SELECT id_paciente, COUNT(*) AS consultas
		FROM consultas
		GROUP BY id_paciente
		ORDER BY consultas DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []PatientCount
	for rows.Next() {
		var pc PatientCount
		if err := rows.Scan(&pc.PatientID, &pc.Consultas); err != nil {
			return nil, err
		}
		items = append(items, pc)
	}
	return items, rows.Err()
}

func (r *repoPG) TableCounts(ctx context.Context, shard *federation.Shard) (map[string]int64, error) {
	counts := make(map[string]int64, len(statsTables))
	for _, table := range statsTables {
		var n int64
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)
		if err := shard.Pool.QueryRow(ctx, query).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
