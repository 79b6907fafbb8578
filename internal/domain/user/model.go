package user

import "time"

// User is an application account in a regional usuarios table. A user
// may be linked to a doctor or an employee on the same regional
// database; the links never cross regions.
type User struct {
	ID         int64     `db:"id" json:"id"`
	Username   string    `db:"nombre_usuario" json:"nombre_usuario"`
	Role       string    `db:"rol" json:"rol"`
	DoctorID   *int64    `db:"id_medico" json:"id_medico,omitempty"`
	EmployeeID *int64    `db:"id_empleado" json:"id_empleado,omitempty"`
	Active     bool      `db:"activo" json:"activo"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

func (u User) LocalID() int64 { return u.ID }
