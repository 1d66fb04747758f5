package repository

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"flightplan-service/internal/domain/entity"
	"flightplan-service/internal/domain/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// StaticUserRepository accepts a single configured credential pair
type StaticUserRepository struct {
	username string
	password string
	userID   string
}

var _ repository.UserService = (*StaticUserRepository)(nil)

func NewStaticUserRepository(username, password string) *StaticUserRepository {
	return &StaticUserRepository{
		username: username,
		password: password,
		userID:   uuid.NewSHA1(uuid.NameSpaceOID, []byte("flightplan-user:"+username)).String(),
	}
}

// Authenticate compares both fields in constant time
func (r *StaticUserRepository) Authenticate(_ context.Context, username, password string) (*entity.User, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(r.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(r.password)) == 1
	if !userOK || !passOK || r.password == "" {
		return nil, nil
	}
	return &entity.User{ID: r.userID, Username: r.username}, nil
}

// GormUserRepository checks credentials against the users table
type GormUserRepository struct {
	db *gorm.DB
}

var _ repository.UserService = (*GormUserRepository)(nil)

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Users GORM model for database mapping
type Users struct {
	ID           string `gorm:"column:id;primaryKey"`
	Username     string `gorm:"column:username;uniqueIndex"`
	PasswordHash string `gorm:"column:password_hash"`
	Active       bool   `gorm:"column:active;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName overrides the default table name
func (Users) TableName() string {
	return "users"
}

// Authenticate looks up an active user and verifies the bcrypt hash
func (r *GormUserRepository) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	var user Users
	result := r.db.WithContext(ctx).
		Where("username = ? AND active = ?", username, true).
		First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up user: %w", result.Error)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil
	}

	// Convert GORM model to domain entity
	return &entity.User{ID: user.ID, Username: user.Username}, nil
}

// CreateUser stores a new active user with a bcrypt hash of password
func (r *GormUserRepository) CreateUser(ctx context.Context, username, password string) (*entity.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	model := Users{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Active:       true,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &entity.User{ID: model.ID, Username: model.Username}, nil
}

// Migrate creates the users table if needed
func (r *GormUserRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&Users{})
}
