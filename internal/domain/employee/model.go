package employee

import "time"

// Employee is a row in a regional empleados table. Cedula is the
// national id card number and must be unique across every region.
type Employee struct {
	ID        int64     `db:"id" json:"id"`
	FirstName string    `db:"nombre" json:"nombre"`
	LastName  string    `db:"apellido" json:"apellido"`
	Cedula    string    `db:"cedula" json:"cedula"`
	Position  string    `db:"cargo" json:"cargo"`
	Phone     *string   `db:"telefono" json:"telefono,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (e Employee) LocalID() int64 { return e.ID }
