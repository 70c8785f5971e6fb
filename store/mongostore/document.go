package mongostore

import (
	"time"

	"github.com/google/uuid"

	auth "github.com/groceria/groceria-auth"
)

// userDocument is the stored shape of auth.User. The id is kept as the
// canonical uuid string.
type userDocument struct {
	ID             string    `bson:"_id"`
	FullName       string    `bson:"fullName"`
	Email          string    `bson:"email"`
	PhoneNumber    string    `bson:"phoneNumber"`
	PasswordHash   string    `bson:"passwordHash"`
	IsVerified     bool      `bson:"isVerified"`
	IsAdmin        bool      `bson:"isAdmin"`
	IsSuperAdmin   bool      `bson:"isSuperAdmin"`
	TokenBlacklist []string  `bson:"tokenBlacklist"`
	CreatedAt      time.Time `bson:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt"`
}

func toDocument(u *auth.User) userDocument {
	doc := userDocument{
		ID:             u.ID.String(),
		FullName:       u.FullName,
		Email:          auth.NormalizeEmail(u.Email),
		PhoneNumber:    u.PhoneNumber,
		PasswordHash:   u.PasswordHash,
		IsVerified:     u.IsVerified,
		IsAdmin:        u.IsAdmin,
		IsSuperAdmin:   u.IsSuperAdmin,
		TokenBlacklist: u.TokenBlacklist,
	}
	if doc.TokenBlacklist == nil {
		doc.TokenBlacklist = []string{}
	}
	if u.CreatedAt != nil {
		doc.CreatedAt = u.CreatedAt.UTC()
	}
	if u.UpdatedAt != nil {
		doc.UpdatedAt = u.UpdatedAt.UTC()
	}
	return doc
}

func (d userDocument) toUser() (*auth.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}

	createdAt, updatedAt := d.CreatedAt, d.UpdatedAt
	blacklist := d.TokenBlacklist
	if blacklist == nil {
		blacklist = []string{}
	}

	return &auth.User{
		ID:             id,
		FullName:       d.FullName,
		Email:          d.Email,
		PhoneNumber:    d.PhoneNumber,
		PasswordHash:   d.PasswordHash,
		IsVerified:     d.IsVerified,
		IsAdmin:        d.IsAdmin,
		IsSuperAdmin:   d.IsSuperAdmin,
		TokenBlacklist: blacklist,
		CreatedAt:      &createdAt,
		UpdatedAt:      &updatedAt,
	}, nil
}
