package auth

// Claims es la identidad extraída del bearer token (o del header de debug).
type Claims struct {
	UserID   string
	Email    string
	ClinicID string
}
