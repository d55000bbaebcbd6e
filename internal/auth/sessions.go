package auth

import (
	"context"

	"github.com/adityaraut/dairydrop-backend/pkg/db/models"
	"gorm.io/gorm"
)

// SessionRepository persists refresh token sessions. A session row exists
// exactly as long as its refresh token is redeemable.
type SessionRepository interface {
	WithTx(tx *gorm.DB) SessionRepository
	Create(ctx context.Context, session *models.UserSession) error
	FindByTokenHash(ctx context.Context, hash string) (*models.UserSession, error)
	DeleteByTokenHash(ctx context.Context, hash string) error
	DeleteForUser(ctx context.Context, userID int64, tokenHash *string) error
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository constructs a session repo bound to the provided GORM DB.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) WithTx(tx *gorm.DB) SessionRepository {
	if tx == nil {
		return r
	}
	return &sessionRepository{db: tx}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.UserSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) FindByTokenHash(ctx context.Context, hash string) (*models.UserSession, error) {
	var session models.UserSession
	if err := r.db.WithContext(ctx).Where("refresh_token_hash = ?", hash).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) DeleteByTokenHash(ctx context.Context, hash string) error {
	return r.db.WithContext(ctx).
		Where("refresh_token_hash = ?", hash).
		Delete(&models.UserSession{}).Error
}

func (r *sessionRepository) DeleteForUser(ctx context.Context, userID int64, tokenHash *string) error {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if tokenHash != nil {
		query = query.Where("refresh_token_hash = ?", *tokenHash)
	}
	return query.Delete(&models.UserSession{}).Error
}
