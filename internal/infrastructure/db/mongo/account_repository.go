package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/superapp/auth-service/internal/core/domain"
)

const (
	usersCollection    = "users"
	countersCollection = "counters"
	emailIndex         = "email_unique"
	usernameIndex      = "username_unique"
)

// accountDoc keeps numeric ids so accounts look the same on every backend.
// Absent optional fields are omitted rather than stored as null.
type accountDoc struct {
	ID               int64      `bson:"_id"`
	Username         string     `bson:"username"`
	Email            string     `bson:"email"`
	PasswordHash     string     `bson:"password_hash"`
	Role             string     `bson:"role"`
	Active           bool       `bson:"is_active"`
	VerificationCode *string    `bson:"verification_code,omitempty"`
	ResetCode        *string    `bson:"reset_code,omitempty"`
	ResetExpires     *time.Time `bson:"reset_expires,omitempty"`
	FullName         *string    `bson:"full_name,omitempty"`
	CreatedAt        time.Time  `bson:"created_at"`
	LastLogin        *time.Time `bson:"last_login,omitempty"`
}

func toDoc(a *domain.Account) accountDoc {
	return accountDoc{
		ID:               a.ID,
		Username:         a.Username,
		Email:            a.Email,
		PasswordHash:     a.PasswordHash,
		Role:             a.Role,
		Active:           a.Active,
		VerificationCode: a.VerificationCode,
		ResetCode:        a.ResetCode,
		ResetExpires:     utcPtr(a.ResetExpires),
		FullName:         a.FullName,
		CreatedAt:        a.CreatedAt.UTC(),
		LastLogin:        utcPtr(a.LastLogin),
	}
}

func (d accountDoc) toDomain() *domain.Account {
	return &domain.Account{
		ID:               d.ID,
		Username:         d.Username,
		Email:            d.Email,
		PasswordHash:     d.PasswordHash,
		Role:             d.Role,
		Active:           d.Active,
		VerificationCode: d.VerificationCode,
		ResetCode:        d.ResetCode,
		ResetExpires:     utcPtr(d.ResetExpires),
		FullName:         d.FullName,
		CreatedAt:        d.CreatedAt.UTC(),
		LastLogin:        utcPtr(d.LastLogin),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func mapDuplicateKey(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}
	if strings.Contains(err.Error(), usernameIndex) {
		return domain.ErrDuplicateUsername
	}
	return domain.ErrDuplicateEmail
}

// nextID draws the next account id from the counters collection.
func (s *Store) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": usersCollection},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next id: %w", err)
	}
	return counter.Seq, nil
}

func (s *Store) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	id, err := s.nextID(ctx)
	if err != nil {
		return nil, err
	}

	doc := toDoc(a)
	doc.ID = id
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mapped := mapDuplicateKey(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var doc accountDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, bson.M{"email": email})
}

func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, bson.M{"username": username})
}

func (s *Store) exists(ctx context.Context, filter bson.M) (bool, error) {
	n, err := s.users.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count accounts: %w", err)
	}
	return n > 0, nil
}

func (s *Store) Activate(ctx context.Context, id int64, code string) error {
	return s.updateOne(ctx, domain.ErrCodeMismatch,
		bson.M{"_id": id, "verification_code": code},
		bson.M{"$set": bson.M{"is_active": true}, "$unset": bson.M{"verification_code": ""}},
	)
}

func (s *Store) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return s.updateOne(ctx, domain.ErrAccountNotFound,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_login": at.UTC()}},
	)
}

func (s *Store) SetResetCode(ctx context.Context, id int64, code string, expires time.Time) error {
	return s.updateOne(ctx, domain.ErrAccountNotFound,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"reset_code": code, "reset_expires": expires.UTC()}},
	)
}

func (s *Store) ClearResetCode(ctx context.Context, id int64, code string) error {
	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": id, "reset_code": code},
		bson.M{"$unset": bson.M{"reset_code": "", "reset_expires": ""}},
	)
	if err != nil {
		return fmt.Errorf("clear reset code: %w", err)
	}
	return nil
}

func (s *Store) ResetPassword(ctx context.Context, id int64, code, passwordHash string, now time.Time) error {
	return s.updateOne(ctx, domain.ErrCodeMismatch,
		bson.M{"_id": id, "reset_code": code, "reset_expires": bson.M{"$gte": now.UTC()}},
		bson.M{
			"$set":   bson.M{"password_hash": passwordHash},
			"$unset": bson.M{"reset_code": "", "reset_expires": ""},
		},
	)
}

func (s *Store) updateOne(ctx context.Context, notMatched error, filter, update bson.M) error {
	res, err := s.users.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return notMatched
	}
	return nil
}

func (s *Store) CountAll(ctx context.Context) (int64, error) {
	return s.count(ctx, bson.M{})
}

func (s *Store) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	return s.count(ctx, bson.M{"created_at": bson.M{"$gte": since.UTC()}})
}

func (s *Store) CountLoggedInSince(ctx context.Context, since time.Time) (int64, error) {
	return s.count(ctx, bson.M{"last_login": bson.M{"$gt": since.UTC()}})
}

func (s *Store) count(ctx context.Context, filter bson.M) (int64, error) {
	n, err := s.users.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}

func (s *Store) ListNewest(ctx context.Context, limit int) ([]*domain.Account, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := s.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer cur.Close(ctx)

	var docs []accountDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	accounts := make([]*domain.Account, 0, len(docs))
	for _, d := range docs {
		accounts = append(accounts, d.toDomain())
	}
	return accounts, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (s *Store) UpsertAdmin(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	existing, err := s.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"email": a.Email},
		bson.M{"username": a.Username},
	}})
	if errors.Is(err, domain.ErrAccountNotFound) {
		admin := *a
		admin.Role = domain.RoleAdmin
		admin.Active = true
		admin.VerificationCode = nil
		return s.Create(ctx, &admin)
	}
	if err != nil {
		return nil, err
	}

	err = s.updateOne(ctx, domain.ErrAccountNotFound,
		bson.M{"_id": existing.ID},
		bson.M{
			"$set":   bson.M{"password_hash": a.PasswordHash, "role": domain.RoleAdmin, "is_active": true},
			"$unset": bson.M{"verification_code": ""},
		},
	)
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, bson.M{"_id": existing.ID})
}
