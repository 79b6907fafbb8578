package doctor

import "time"

// Doctor is a row in a regional medicos table. SpecialtyID references
// the especialidades table on the same regional database.
type Doctor struct {
	ID          int64     `db:"id" json:"id"`
	FirstName   string    `db:"nombre" json:"nombre"`
	LastName    string    `db:"apellido" json:"apellido"`
	Email       string    `db:"correo" json:"correo"`
	Phone       *string   `db:"telefono" json:"telefono,omitempty"`
	SpecialtyID int64     `db:"id_especialidad" json:"id_especialidad"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

func (d Doctor) LocalID() int64 { return d.ID }
