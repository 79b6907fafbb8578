package consultation

import "time"

// Consultation is a row in a regional consultas table. The patient and
// doctor references point at rows on the same regional database.
type Consultation struct {
	ID        int64     `db:"id" json:"id"`
	PatientID int64     `db:"id_paciente" json:"id_paciente"`
	DoctorID  int64     `db:"id_medico" json:"id_medico"`
	Date      time.Time `db:"fecha" json:"fecha"`
	Reason    string    `db:"motivo" json:"motivo"`
	Diagnosis *string   `db:"diagnostico" json:"diagnostico,omitempty"`
	Duration  int       `db:"duracion_minutos" json:"duracion_minutos"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (c Consultation) LocalID() int64 { return c.ID }

// PatientCount is a per-shard grouping of consultations by patient,
// used by the top-patients ranking. Its local id is the patient's.
type PatientCount struct {
	PatientID int64 `db:"id_paciente" json:"id_paciente"`
	Consultas int64 `db:"consultas" json:"consultas"`
}

func (p PatientCount) LocalID() int64 { return p.PatientID }
