package repository

import (
	"context"

	"gorm.io/gorm"

	"listky/internal/model"
)

// AccountRepository defines account persistence operations.
type AccountRepository interface {
	// Create inserts a new account. The username primary key makes the claim
	// atomic: concurrent claims of the same name yield gorm.ErrDuplicatedKey
	// for all but one caller.
	Create(ctx context.Context, account *model.Account) error
	Update(ctx context.Context, account *model.Account) error
	FindByUsername(ctx context.Context, username string) (*model.Account, error)
	UpdateTrendingOptIn(ctx context.Context, username string, optIn bool) error
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create creates a new account.
func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// Update updates an existing account.
func (r *accountRepository) Update(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

// FindByUsername finds an account by username.
func (r *accountRepository) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateTrendingOptIn sets the trending inclusion toggle for an account.
// MySQL reports zero affected rows when the value is unchanged, so existence
// is verified with a lookup rather than RowsAffected.
func (r *accountRepository) UpdateTrendingOptIn(ctx context.Context, username string, optIn bool) error {
	if err := r.db.WithContext(ctx).Select("username").
		Where("username = ?", username).
		First(&model.Account{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&model.Account{}).
		Where("username = ?", username).
		Update("trending_opt_in", optIn).Error
}
