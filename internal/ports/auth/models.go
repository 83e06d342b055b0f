package auth

// Claims es lo que el core necesita del token: quién es el usuario.
type Claims struct {
	UserID string
	Email  string
}
