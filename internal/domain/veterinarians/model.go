package veterinarians

import "time"

// Veterinarian vincula un usuario autenticado con el id que espera el backend de consultas.
type Veterinarian struct {
	ID     string
	UserID string

	Name          string
	LicenseNumber string

	CreatedAt time.Time
}

// Source indica de dónde salió la identidad.
// @Enum token, debug, default
type Source string

const (
	SourceToken   Source = "token"
	SourceDebug   Source = "debug"
	SourceDefault Source = "default"
)

// Identity es lo que el dispatcher usa como veterinarian_id. Solo lectura.
type Identity struct {
	VeterinarianID string
	UserID         string
	Source         Source
}
