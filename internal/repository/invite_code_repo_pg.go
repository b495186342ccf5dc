package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"telemart/storecore/internal/model"
)

type pgInviteCodeRepository struct {
	db *gorm.DB
}

func NewPGInviteCodeRepository(db *gorm.DB) InviteCodeRepository {
	return &pgInviteCodeRepository{db: db}
}

func (r *pgInviteCodeRepository) Create(ctx context.Context, code *model.InviteCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *pgInviteCodeRepository) GetByCode(ctx context.Context, code string) (*model.InviteCode, error) {
	var inviteCode model.InviteCode
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&inviteCode).Error; err != nil {
		return nil, err
	}
	return &inviteCode, nil
}

func (r *pgInviteCodeRepository) MarkUsed(ctx context.Context, id uuid.UUID, redeemerID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&model.InviteCode{}).
		Where("id = ? AND is_used = false", id).
		Updates(map[string]interface{}{
			"is_used":         true,
			"used_by_user_id": redeemerID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoRowsUpdated
	}
	return nil
}

func (r *pgInviteCodeRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.InviteCode, error) {
	var codes []model.InviteCode
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}
