package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domain "advisorhub/advisor-api/internal/domain/advisor"
	"advisorhub/advisor-api/internal/infrastructure/database/entities"
	"advisorhub/advisor-api/internal/utils/platformerrors"
)

const uniqueViolationCode = "23505"

// PostgresRepository persists advisors via PostgreSQL using GORM.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a repository backed by the provided DB.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new advisor row.
func (r *PostgresRepository) Create(ctx context.Context, adv *domain.Advisor) error {
	record, err := toEntity(adv)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		if isUniqueViolation(err) {
			// A concurrent creation won the (owner, handle) slot between the
			// uniqueness check and this insert.
			return fmt.Errorf("handle %q already taken for owner %s: %w", adv.Handle, adv.OwnerID, err)
		}
		return err
	}
	return nil
}

// CreateLink inserts the ownership link for an advisor.
func (r *PostgresRepository) CreateLink(ctx context.Context, link *domain.Link) error {
	record := &entities.AdvisorLink{
		ID:        link.ID,
		UserID:    link.UserID,
		AdvisorID: link.AdvisorID,
		Source:    link.Source,
		CreatedAt: link.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(record).Error
}

// FindByID returns one advisor by id.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*domain.Advisor, error) {
	var record entities.Advisor
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("advisor %s not found", id), err)
		}
		return nil, err
	}
	return toDomain(&record)
}

// FindByOwner returns all advisors owned by ownerID, oldest first.
func (r *PostgresRepository) FindByOwner(ctx context.Context, ownerID string) ([]*domain.Advisor, error) {
	var records []entities.Advisor
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	advisors := make([]*domain.Advisor, 0, len(records))
	for i := range records {
		adv, err := toDomain(&records[i])
		if err != nil {
			return nil, err
		}
		advisors = append(advisors, adv)
	}
	return advisors, nil
}

// HandleExists reports whether the owner already has an advisor with handle.
func (r *PostgresRepository) HandleExists(ctx context.Context, ownerID, handle string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Advisor{}).
		Where("owner_id = ? AND handle = ?", ownerID, handle).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func toEntity(adv *domain.Advisor) (*entities.Advisor, error) {
	tags, err := json.Marshal(adv.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	metadata, err := json.Marshal(adv.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return &entities.Advisor{
		ID:          adv.ID,
		OwnerID:     adv.OwnerID,
		Handle:      adv.Handle,
		Name:        adv.Name,
		OneLiner:    adv.OneLiner,
		Mission:     adv.Mission,
		AvatarURL:   adv.AvatarURL,
		WebsiteURL:  adv.WebsiteURL,
		Tags:        tags,
		AdviceStyle: adv.AdviceStyle,
		Metadata:    metadata,
		CreatedAt:   adv.CreatedAt,
	}, nil
}

func toDomain(record *entities.Advisor) (*domain.Advisor, error) {
	adv := &domain.Advisor{
		ID:          record.ID,
		OwnerID:     record.OwnerID,
		Handle:      record.Handle,
		Name:        record.Name,
		OneLiner:    record.OneLiner,
		Mission:     record.Mission,
		AvatarURL:   record.AvatarURL,
		WebsiteURL:  record.WebsiteURL,
		AdviceStyle: record.AdviceStyle,
		CreatedAt:   record.CreatedAt,
	}
	if len(record.Tags) > 0 {
		if err := json.Unmarshal(record.Tags, &adv.Tags); err != nil {
			return nil, fmt.Errorf("decode tags for advisor %s: %w", record.ID, err)
		}
	}
	if len(record.Metadata) > 0 {
		if err := json.Unmarshal(record.Metadata, &adv.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for advisor %s: %w", record.ID, err)
		}
	}
	return adv, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	return false
}
