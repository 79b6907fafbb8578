package patient

import "time"

// Patient maps to the pacientes table present in every regional schema.
// Its id is unique only within the owning region; callers address a
// patient globally by the composite id the service tags rows with.
type Patient struct {
	ID        int64      `db:"id" json:"id"`
	FirstName string     `db:"nombre" json:"nombre"`
	LastName  string     `db:"apellido" json:"apellido"`
	Email     string     `db:"correo" json:"correo"`
	Phone     *string    `db:"telefono" json:"telefono,omitempty"`
	Address   *string    `db:"direccion" json:"direccion,omitempty"`
	BirthDate *time.Time `db:"fecha_nacimiento" json:"fecha_nacimiento,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

func (p Patient) LocalID() int64 { return p.ID }
