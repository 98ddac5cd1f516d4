//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	stderrors "errors"
	"fmt"
	"time"
	"whatsapp-clone/domain/user"
	"whatsapp-clone/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const userPrefix = "user:"

type IUserRepository interface {
	CreateUser(newUser NewUser) (string, error)
	GetUserByEmail(email string) (User, error)
	TouchLastSeen(email string, at time.Time) error
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// NewUser carries what registration knows about a user.
type NewUser struct {
	Email        string
	PasswordHash string
	Username     string
	PhotoURL     string
}

// User is the repository representation of an account, password hash included.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Username     string
	PhotoURL     string
	Roles        []string
	CreatedAt    time.Time
	LastSeen     time.Time
}

func (u User) Profile() user.Profile {
	return user.Profile{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.Username,
		PhotoURL: u.PhotoURL,
		LastSeen: u.LastSeen,
	}
}

// CreateUser persists a new account keyed by email and returns its generated ID.
// Registration counts as activity, so LastSeen starts at the creation time.
func (u UserRepository) CreateUser(newUser NewUser) (string, error) {
	now := time.Now().UTC()
	stored := User{
		ID:           uuid.New().String(),
		Email:        newUser.Email,
		PasswordHash: newUser.PasswordHash,
		Username:     newUser.Username,
		PhotoURL:     newUser.PhotoURL,
		Roles:        []string{"user"},
		CreatedAt:    now,
		LastSeen:     now,
	}

	err := u.db.Update(func(txn *badger.Txn) error {
		key := userKey(newUser.Email)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrUserAlreadyExists
		}
		return txn.Set(key, marshalUser(stored))
	})
	if err != nil {
		return "", err
	}
	return stored.ID, nil
}

func (u UserRepository) GetUserByEmail(email string) (User, error) {
	var stored User
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		stored, err = getUser(txn, email)
		return err
	})
	return stored, err
}

// TouchLastSeen records activity of the user.
// An older timestamp never overwrites a newer one.
func (u UserRepository) TouchLastSeen(email string, at time.Time) error {
	return u.db.Update(func(txn *badger.Txn) error {
		stored, err := getUser(txn, email)
		if err != nil {
			return err
		}
		if !at.After(stored.LastSeen) {
			return nil
		}
		stored.LastSeen = at.UTC()
		return txn.Set(userKey(email), marshalUser(stored))
	})
}

func getUser(txn *badger.Txn, email string) (User, error) {
	item, err := txn.Get(userKey(email))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	var stored User
	err = item.Value(func(val []byte) error {
		stored, err = unmarshalUser(val)
		return err
	})
	return stored, err
}

func userKey(email string) []byte {
	return []byte(userPrefix + email)
}

func marshalUser(u User) []byte {
	var e encoder
	e.putString(userFieldID, u.ID)
	e.putString(userFieldEmail, u.Email)
	e.putString(userFieldPasswordHash, u.PasswordHash)
	e.putStrings(userFieldRoles, u.Roles)
	e.putInt64(userFieldCreatedAt, unixNano(u.CreatedAt))
	e.putString(userFieldUsername, u.Username)
	e.putString(userFieldPhotoURL, u.PhotoURL)
	e.putInt64(userFieldLastSeen, unixNano(u.LastSeen))
	return e.buf
}

func unmarshalUser(data []byte) (User, error) {
	var u User
	err := decode(data, func(f field) error {
		var err error
		switch f.num {
		case userFieldID:
			u.ID, err = f.asString()
		case userFieldEmail:
			u.Email, err = f.asString()
		case userFieldPasswordHash:
			u.PasswordHash, err = f.asString()
		case userFieldRoles:
			var role string
			role, err = f.asString()
			u.Roles = append(u.Roles, role)
		case userFieldCreatedAt:
			u.CreatedAt, err = fromUnixNano(f.asInt64())
		case userFieldUsername:
			u.Username, err = f.asString()
		case userFieldPhotoURL:
			u.PhotoURL, err = f.asString()
		case userFieldLastSeen:
			u.LastSeen, err = fromUnixNano(f.asInt64())
		}
		return err
	})
	if err != nil {
		return User{}, fmt.Errorf("unmarshal user: %w", err)
	}
	return u, nil
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(v int64, err error) (time.Time, error) {
	if err != nil || v == 0 {
		return time.Time{}, err
	}
	return time.Unix(0, v).UTC(), nil
}
