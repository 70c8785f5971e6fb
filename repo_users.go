package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"
)

const (
	pgUniqueViolation       = "23505"
	blacklistAppendAttempts = 16
)

var (
	sqliteUniqueRe = regexp.MustCompile(`UNIQUE constraint failed: \w+\.(\w+)`)
	pgKeyDetailRe  = regexp.MustCompile(`Key \(([\w, ]+)\)=`)
)

// Users is the bun backed CredentialStore
type Users interface {
	CredentialStore
	ListTx(ctx context.Context, tx bun.IDB) ([]*User, error)
}

type users struct {
	repo repository.Repository[*User]
	db   *bun.DB
}

var _ Users = (*users)(nil)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		repo: repo,
		db:   db,
	}
}

func (a *users) FindByEmail(ctx context.Context, email string) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if isNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return record, nil
}

func (a *users) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	record, err := a.repo.GetByID(ctx, id.String())
	if err != nil {
		if isNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return record, nil
}

func (a *users) Create(ctx context.Context, record *User) (*User, error) {
	prepareUserDefaults(record)

	created, err := a.repo.CreateTx(ctx, a.db, record)
	if err != nil {
		if field, ok := duplicateKeyField(err); ok {
			return nil, &DuplicateKeyError{Field: field, Err: err}
		}
		return nil, err
	}

	return created, nil
}

// Save writes every column of record except the token blacklist, which
// only AppendBlacklist changes. Zero values are persisted too.
func (a *users) Save(ctx context.Context, record *User) (*User, error) {
	if record == nil || record.ID == uuid.Nil {
		return nil, ErrUserNotFound
	}

	record.Email = NormalizeEmail(record.Email)
	now := time.Now().UTC()
	record.UpdatedAt = &now

	res, err := a.db.NewUpdate().
		Model(record).
		ExcludeColumn("token_blacklist").
		WherePK().
		Exec(ctx)
	if err != nil {
		if field, ok := duplicateKeyField(err); ok {
			return nil, &DuplicateKeyError{Field: field, Err: err}
		}
		return nil, err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, ErrUserNotFound
	}

	return record, nil
}

// AppendBlacklist adds token to the stored blacklist. The write only lands
// if the column still holds the value it was read from; a lost race is
// retried against the fresh value.
func (a *users) AppendBlacklist(ctx context.Context, id uuid.UUID, token string) (bool, error) {
	for attempt := 0; attempt < blacklistAppendAttempts; attempt++ {
		var raw string
		err := a.db.NewSelect().
			Table("users").
			Column("token_blacklist").
			Where("id = ?", id.String()).
			Limit(1).
			Scan(ctx, &raw)
		if err != nil {
			if isNoRows(err) {
				return false, ErrUserNotFound
			}
			return false, err
		}

		blacklist := []string{}
		if raw != "" {
			if err := json.Unmarshal([]byte(raw), &blacklist); err != nil {
				return false, fmt.Errorf("decode token blacklist: %w", err)
			}
		}
		if slices.Contains(blacklist, token) {
			return false, nil
		}

		next, err := json.Marshal(append(blacklist, token))
		if err != nil {
			return false, err
		}

		res, err := a.db.NewUpdate().
			Table("users").
			Set("token_blacklist = ?", string(next)).
			Set("updated_at = ?", time.Now().UTC()).
			Where("id = ?", id.String()).
			Where("token_blacklist = ?", raw).
			Exec(ctx)
		if err != nil {
			return false, err
		}
		if rows, err := res.RowsAffected(); err == nil && rows > 0 {
			return true, nil
		}
	}

	return false, fmt.Errorf("token blacklist update for %s kept conflicting", id)
}

func (a *users) List(ctx context.Context) ([]*User, error) {
	return a.ListTx(ctx, a.db)
}

func (a *users) ListTx(ctx context.Context, tx bun.IDB) ([]*User, error) {
	records := make([]*User, 0)
	err := tx.NewSelect().
		Model(&records).
		OrderExpr("?TableAlias.created_at ASC").
		Scan(ctx)
	if err != nil && !isNoRows(err) {
		return nil, err
	}
	return records, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || repository.IsRecordNotFound(err)
}

// duplicateKeyField extracts the column behind a unique index violation
// from sqlite and postgres errors.
func duplicateKeyField(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		if m := pgKeyDetailRe.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			return strings.TrimSpace(m[1]), true
		}
		return fieldFromConstraint(pgErr.ConstraintName), true
	}

	if m := sqliteUniqueRe.FindStringSubmatch(err.Error()); len(m) == 2 {
		return m[1], true
	}

	return "", false
}

// fieldFromConstraint maps "users_email_key" to "email".
func fieldFromConstraint(name string) string {
	name = strings.TrimPrefix(name, "users_")
	name = strings.TrimSuffix(name, "_key")
	if name == "" {
		return "email"
	}
	return name
}
