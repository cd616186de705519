package domain

// UserField désigne un champ projetable d'un utilisateur externe.
type UserField string

const (
	UserFieldFullName UserField = "fullName"
	UserFieldUsername UserField = "username"
	UserFieldEmail    UserField = "email"
)

var AllUserFields = []UserField{UserFieldFullName, UserFieldUsername, UserFieldEmail}

// UserProjection : sous-ensemble des champs d'affichage d'un User (référencé, pas possédé).
type UserProjection struct {
	ID       string
	FullName string
	Username string
	Email    string
}

// Only remet à zéro les champs non demandés.
func (u UserProjection) Only(fields ...UserField) UserProjection {
	out := UserProjection{ID: u.ID}
	for _, f := range fields {
		switch f {
		case UserFieldFullName:
			out.FullName = u.FullName
		case UserFieldUsername:
			out.Username = u.Username
		case UserFieldEmail:
			out.Email = u.Email
		}
	}
	return out
}
