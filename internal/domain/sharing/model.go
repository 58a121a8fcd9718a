package sharing

import "time"

type PermissionLevel string

const (
	PermissionFullAccess PermissionLevel = "FULL_ACCESS"
	PermissionLimited    PermissionLevel = "LIMITED"
)

// AccessToken es un permiso de lectura temporal sobre una mascota. El
// secreto (Token) es lo único que necesita quien recibe el link; no hay
// cuenta del lado del veterinario.
type AccessToken struct {
	ID     string
	UserID string // dueño que compartió
	PetID  string

	Token           string // secreto opaco de la URL
	PermissionLevel PermissionLevel

	// ValidUntil se fija en la creación a partir de la duración elegida.
	// La expiración se evalúa en lectura; nunca se persiste un estado
	// "expirado".
	ValidUntil *time.Time
	IsActive   bool

	CreatedAt time.Time
}

func ValidPermission(p PermissionLevel) bool {
	switch p {
	case PermissionFullAccess, PermissionLimited:
		return true
	}
	return false
}
