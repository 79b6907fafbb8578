package specialty

import "time"

// Specialty is a medical specialty as stored in a regional especialidades table.
type Specialty struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"nombre" json:"nombre"`
	Description *string   `db:"descripcion" json:"descripcion,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

func (s Specialty) LocalID() int64 { return s.ID }
