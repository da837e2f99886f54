package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"electra/contexts/finance-core/wallet-ledger/domain/entities"
	"electra/contexts/finance-core/wallet-ledger/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const stepRowID = int64(1)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

var (
	_ ports.AccountStore = (*Repository)(nil)
	_ ports.StepStore    = (*Repository)(nil)
)

type accountModel struct {
	AccountID string    `gorm:"column:account_id;primaryKey"`
	Balance   int64     `gorm:"column:balance;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (accountModel) TableName() string {
	return "wallet_accounts"
}

func (m accountModel) toEntity() entities.Account {
	return entities.Account{
		AccountID: m.AccountID,
		Balance:   m.Balance,
		UpdatedAt: m.UpdatedAt,
	}
}

type stepModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	Step      int64     `gorm:"column:step;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (stepModel) TableName() string {
	return "wallet_step_counter"
}

func (r *Repository) GetAccount(ctx context.Context, accountID string) (entities.Account, bool, error) {
	var row accountModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Account{}, false, nil
		}
		return entities.Account{}, false, r.logError("wallet_repo_get_account_failed", err, "account_id", accountID)
	}
	return row.toEntity(), true, nil
}

// SaveAccounts upserts all rows inside one transaction so paired
// debit/credit writes commit together.
func (r *Repository) SaveAccounts(ctx context.Context, accounts ...entities.Account) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, account := range accounts {
			row := accountModel{
				AccountID: account.AccountID,
				Balance:   account.Balance,
				UpdatedAt: account.UpdatedAt,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "account_id"}},
				DoUpdates: clause.Assignments(map[string]any{
					"balance":    row.Balance,
					"updated_at": row.UpdatedAt,
				}),
			}).Create(&row).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return r.logError("wallet_repo_save_accounts_failed", err)
	}
	return nil
}

func (r *Repository) ListAccounts(ctx context.Context) ([]entities.Account, error) {
	var rows []accountModel
	err := r.db.WithContext(ctx).
		Order("account_id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("wallet_repo_list_accounts_failed", err)
	}
	accounts := make([]entities.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, row.toEntity())
	}
	return accounts, nil
}

func (r *Repository) CurrentStep(ctx context.Context) (int64, error) {
	var row stepModel
	err := r.db.WithContext(ctx).
		Where("id = ?", stepRowID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, r.logError("wallet_repo_current_step_failed", err)
	}
	return row.Step, nil
}

func (r *Repository) SaveStep(ctx context.Context, step int64) error {
	row := stepModel{
		ID:        stepRowID,
		Step:      step,
		UpdatedAt: time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"step":       row.Step,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row).Error
	if err != nil {
		return r.logError("wallet_repo_save_step_failed", err)
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	attrs := append([]any{
		slog.String("event", event),
		slog.String("module", "wallet-ledger"),
		slog.String("layer", "postgres"),
		slog.String("error", err.Error()),
	}, args...)
	r.logger.Error("wallet repository operation failed", attrs...)
	return err
}
