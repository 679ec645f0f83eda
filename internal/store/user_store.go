package store

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/carecircle/carecircle-api/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserStore holds the family roster. It is seeded at startup and
// read-only through the API surface.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Seed inserts the roster, leaving already-present ids untouched so a
// restart against a persistent DSN does not clobber anything.
func (s *UserStore) Seed(users []models.User) error {
	if len(users) == 0 {
		return nil
	}
	return s.db.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&users).Error
}

func (s *UserStore) List() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("created_at").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserStore) Find(id string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
