package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleColaborador UserRole = "colaborador"
	RoleGestor      UserRole = "gestor"
	RoleAdm         UserRole = "adm"
)

type Department string

const (
	DepartmentComercial      Department = "comercial"
	DepartmentTecnico        Department = "tecnico"
	DepartmentAtendimento    Department = "atendimento"
	DepartmentAdministrativo Department = "administrativo"
	DepartmentQualidade      Department = "qualidade"
)

type User struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	Email      string     `json:"email" gorm:"uniqueIndex;not null"`
	Password   string     `json:"-" gorm:"not null"`
	Name       string     `json:"name" gorm:"not null"`
	Role       UserRole   `json:"role" gorm:"default:'colaborador';index"`
	Department Department `json:"department" gorm:"index"` // empty for adms

	// Cached balance. Only the ledger service writes this column, always in
	// the same transaction that appends the matching ledger entry.
	LabPoints int `json:"lab_points" gorm:"not null;default:0"`

	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	LedgerEntries []LedgerEntry `json:"ledger_entries,omitempty"`
}
