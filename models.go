package auth

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account record
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	FullName       string     `bun:"full_name,notnull" json:"fullName"`
	Email          string     `bun:"email,notnull,unique" json:"email"`
	PhoneNumber    string     `bun:"phone_number" json:"phoneNumber"`
	PasswordHash   string     `bun:"password_hash,notnull" json:"-"`
	IsVerified     bool       `bun:"is_verified,notnull" json:"isVerified"`
	IsAdmin        bool       `bun:"is_admin,notnull" json:"isAdmin"`
	IsSuperAdmin   bool       `bun:"is_super_admin,notnull" json:"isSuperAdmin"`
	TokenBlacklist []string   `bun:"token_blacklist" json:"-"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt,omitempty"`
}

// IsBlacklisted reports whether token was invalidated by logout.
func (u *User) IsBlacklisted(token string) bool {
	if u == nil || token == "" {
		return false
	}
	return slices.Contains(u.TokenBlacklist, token)
}

// View returns the sanitized representation.
func (u *User) View() *UserView {
	if u == nil {
		return nil
	}
	return &UserView{
		ID:           u.ID.String(),
		FullName:     u.FullName,
		Email:        u.Email,
		PhoneNumber:  u.PhoneNumber,
		IsVerified:   u.IsVerified,
		IsAdmin:      u.IsAdmin,
		IsSuperAdmin: u.IsSuperAdmin,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// UserView is what leaves the service. It never carries the password hash
// or the token blacklist.
type UserView struct {
	ID           string     `json:"id"`
	FullName     string     `json:"fullName"`
	Email        string     `json:"email"`
	PhoneNumber  string     `json:"phoneNumber,omitempty"`
	IsVerified   bool       `json:"isVerified"`
	IsAdmin      bool       `json:"isAdmin"`
	IsSuperAdmin bool       `json:"isSuperAdmin"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// NormalizeEmail lowercases and trims an address. Uniqueness is defined
// over the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	record.Email = NormalizeEmail(record.Email)

	if record.TokenBlacklist == nil {
		record.TokenBlacklist = []string{}
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	now := time.Now().UTC()
	if record.CreatedAt == nil {
		record.CreatedAt = &now
	}
	record.UpdatedAt = &now
}
