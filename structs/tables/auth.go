package tables

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleCustomer UserRole = "CUSTOMER"
	RoleVendor   UserRole = "VENDOR"
	RoleAdmin    UserRole = "ADMIN"
)

// Credential is the identity record: it owns the email/password pair and
// nothing else. The profile lives in users; signup creates both and
// deletes the credential again if the profile insert fails.
type Credential struct {
	tableName    struct{}  `bun:"table:credentials,alias:c"`
	Id           uuid.UUID `json:"id" bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Email        string    `json:"email" bun:"email,unique,notnull"`
	PasswordHash string    `json:"-" bun:"password_hash,notnull"`
	CreatedAt    time.Time `json:"created_at" bun:"created_at,notnull,default:now()"`
}

// AuthResponse bundles a profile with freshly minted tokens
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`
}

type User struct {
	tableName    struct{}  `bun:"table:users,alias:u"`
	Id           uuid.UUID `json:"id" bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	CredentialId uuid.UUID `json:"-" bun:"credential_id,notnull,type:uuid,unique"`
	Email        string    `json:"email" bun:"email,unique,notnull"`
	Name         string    `json:"name" bun:"name,notnull"`
	Role         UserRole  `json:"role" bun:"role,notnull,default:'CUSTOMER'"`
	CompanyName  string    `json:"company_name,omitempty" bun:"company_name"`
	GSTIN        string    `json:"gstin,omitempty" bun:"gstin"`
	Mobile       string    `json:"mobile,omitempty" bun:"mobile"`
	AvatarURL    string    `json:"avatar_url,omitempty" bun:"avatar_url"`
	LastLogin    time.Time `json:"last_login" bun:"last_login,default:now()"`
	CreatedAt    time.Time `json:"created_at" bun:"created_at,notnull,default:now()"`
	UpdatedAt    time.Time `json:"updated_at" bun:"updated_at,notnull,default:now()"`
}
