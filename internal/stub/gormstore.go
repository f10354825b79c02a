package stub

import (
	"context"
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"procurepay/internal/model"
)

// GormStore persists the stub's data in PostgreSQL so request history
// survives restarts during development.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the connection and auto-migrates the stub schema.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&User{}, &Request{}, &Approval{}, &ReceiptValidation{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func mapGormErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormStore) CreateUser(ctx context.Context, u *User) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&User{}).Where("lower(email) = lower(?)", u.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errUserExists
	}
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *GormStore) UserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).First(&u, "lower(email) = lower(?)", email).Error; err != nil {
		return nil, mapGormErr(err)
	}
	return &u, nil
}

func (s *GormStore) CreateRequest(ctx context.Context, r *Request) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *GormStore) RequestByID(ctx context.Context, id int64) (*Request, error) {
	var r Request
	err := s.db.WithContext(ctx).
		Preload("Approvals", func(db *gorm.DB) *gorm.DB { return db.Order("level ASC") }).
		Preload("Validation").
		First(&r, "id = ?", id).Error
	if err != nil {
		return nil, mapGormErr(err)
	}
	return &r, nil
}

func (s *GormStore) UpdateRequest(ctx context.Context, r *Request) error {
	return s.db.WithContext(ctx).
		Omit("Approvals", "Validation", "CreatedAt").
		Save(r).Error
}

func (s *GormStore) DeleteRequest(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&Request{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) listRequests(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]Request, error) {
	var out []Request
	query := s.db.WithContext(ctx).
		Preload("Approvals", func(db *gorm.DB) *gorm.DB { return db.Order("level ASC") }).
		Preload("Validation").
		Order("created_at DESC")
	if err := scope(query).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormStore) RequestsByCreator(ctx context.Context, userID int64) ([]Request, error) {
	return s.listRequests(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("created_by = ?", userID)
	})
}

func (s *GormStore) RequestsByStatus(ctx context.Context, statuses ...model.Status) ([]Request, error) {
	values := make([]string, 0, len(statuses))
	for _, st := range statuses {
		values = append(values, string(st))
	}
	return s.listRequests(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("status IN ?", values)
	})
}

func (s *GormStore) RequestsReviewedBy(ctx context.Context, approverID int64) ([]Request, error) {
	return s.listRequests(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("id IN (?)",
			s.db.Model(&Approval{}).Select("request_id").Where("approver = ?", approverID))
	})
}

func (s *GormStore) RequestsWithPurchaseOrder(ctx context.Context) ([]Request, error) {
	return s.listRequests(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("purchase_order_file <> ''")
	})
}

func (s *GormStore) CreateApproval(ctx context.Context, a *Approval) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Approval{}).
			Where("request_id = ? AND level = ?", a.RequestID, a.Level).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errLevelDecided
		}
		return tx.Create(a).Error
	})
}

func (s *GormStore) CreateReceiptValidation(ctx context.Context, v *ReceiptValidation) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&ReceiptValidation{}).
			Where("request_id = ?", v.RequestID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errAlreadyValidated
		}
		return tx.Create(v).Error
	})
}
