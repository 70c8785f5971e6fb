package mongostore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	auth "github.com/groceria/groceria-auth"
)

const (
	DefaultCollection = "users"
	emailIndexName    = "email_unique_ci"
)

var dupKeyIndexRe = regexp.MustCompile(`index: (\S+) dup key: \{ (\w+):`)

// emailCollation compares strings ignoring case and diacritics.
var emailCollation = &options.Collation{Locale: "en", Strength: 1}

// Store is a CredentialStore over a mongo collection.
type Store struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ auth.CredentialStore = (*Store)(nil)

func New(db *mongo.Database, collection string) *Store {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Store{
		coll: db.Collection(collection),
		now:  time.Now,
	}
}

// EnsureIndexes creates the case-insensitive unique email index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName(emailIndexName).
			SetUnique(true).
			SetCollation(emailCollation),
	})
	return err
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	var doc userDocument
	err := s.coll.FindOne(ctx,
		bson.D{{Key: "email", Value: auth.NormalizeEmail(email)}},
		options.FindOne().SetCollation(emailCollation),
	).Decode(&doc)
	if err != nil {
		return nil, mapFindError(err)
	}
	return doc.toUser()
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	var doc userDocument
	if err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&doc); err != nil {
		return nil, mapFindError(err)
	}
	return doc.toUser()
}

func (s *Store) Create(ctx context.Context, user *auth.User) (*auth.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := s.now().UTC()
	if user.CreatedAt == nil {
		user.CreatedAt = &now
	}
	user.UpdatedAt = &now

	doc := toDocument(user)
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return nil, mapWriteError(err)
	}
	return doc.toUser()
}

func (s *Store) Save(ctx context.Context, user *auth.User) (*auth.User, error) {
	if user == nil || user.ID == uuid.Nil {
		return nil, auth.ErrUserNotFound
	}

	now := s.now().UTC()
	user.UpdatedAt = &now

	doc := toDocument(user)
	res, err := s.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: doc.ID}}, saveUpdate(doc))
	if err != nil {
		return nil, mapWriteError(err)
	}
	if res.MatchedCount == 0 {
		return nil, auth.ErrUserNotFound
	}
	return doc.toUser()
}

// AppendBlacklist pushes token only when it is not already listed. A miss
// on the filter means either the token is present or the user is gone.
func (s *Store) AppendBlacklist(ctx context.Context, id uuid.UUID, token string) (bool, error) {
	filter, update := blacklistAppend(id, token, s.now().UTC())
	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	if res.ModifiedCount > 0 {
		return true, nil
	}

	n, err := s.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: id.String()}})
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, auth.ErrUserNotFound
	}
	return false, nil
}

func (s *Store) List(ctx context.Context) ([]*auth.User, error) {
	cursor, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	users := make([]*auth.User, 0, len(docs))
	for _, doc := range docs {
		user, err := doc.toUser()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// saveUpdate sets every stored field except the blacklist.
func saveUpdate(doc userDocument) bson.D {
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: "fullName", Value: doc.FullName},
		{Key: "email", Value: doc.Email},
		{Key: "phoneNumber", Value: doc.PhoneNumber},
		{Key: "passwordHash", Value: doc.PasswordHash},
		{Key: "isVerified", Value: doc.IsVerified},
		{Key: "isAdmin", Value: doc.IsAdmin},
		{Key: "isSuperAdmin", Value: doc.IsSuperAdmin},
		{Key: "createdAt", Value: doc.CreatedAt},
		{Key: "updatedAt", Value: doc.UpdatedAt},
	}}}
}

func blacklistAppend(id uuid.UUID, token string, now time.Time) (filter, update bson.D) {
	filter = bson.D{
		{Key: "_id", Value: id.String()},
		{Key: "tokenBlacklist", Value: bson.D{{Key: "$ne", Value: token}}},
	}
	update = bson.D{
		{Key: "$push", Value: bson.D{{Key: "tokenBlacklist", Value: token}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now}}},
	}
	return filter, update
}

func mapFindError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return auth.ErrUserNotFound
	}
	return err
}

func mapWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return &auth.DuplicateKeyError{Field: duplicateField(err.Error()), Err: err}
	}
	return err
}

// duplicateField reads the offending key from an E11000 message.
func duplicateField(msg string) string {
	m := dupKeyIndexRe.FindStringSubmatch(msg)
	if len(m) != 3 {
		return "email"
	}
	if m[2] == "_id" {
		return "id"
	}
	return m[2]
}
