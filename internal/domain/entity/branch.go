package entity

// Branch filial que mantiene inventario; la administra una cuenta de usuario BRANCH.
type Branch struct {
	ID           int64
	UserID       int64
	Name         string // nombre del usuario responsable
	Document     string
	Street       string
	Number       string
	Complement   string
	Neighborhood string
	City         string
	State        string
	ZipCode      string
}
