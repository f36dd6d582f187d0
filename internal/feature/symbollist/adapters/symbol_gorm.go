// Package adapters はsymbollistフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"

	"stock_backtest/internal/feature/symbollist/domain/entity"
	"stock_backtest/internal/feature/symbollist/usecase"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// symbolGorm はSymbolRepositoryインターフェースのGORM実装です。
type symbolGorm struct {
	db *gorm.DB
}

var _ usecase.SymbolRepository = (*symbolGorm)(nil)

// NewSymbolRepository は指定されたDB接続でsymbolGormリポジトリの新しいインスタンスを生成します。
func NewSymbolRepository(db *gorm.DB) *symbolGorm {
	return &symbolGorm{db: db}
}

func (r *symbolGorm) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&entity.Symbol{}).
		Where(clause.Eq{Column: clause.Column{Name: "is_active"}, Value: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "sort_key"}})
}

// ListActive はsort_key順にすべてのアクティブな銘柄を返します。
func (r *symbolGorm) ListActive(ctx context.Context) ([]entity.Symbol, error) {
	var symbols []entity.Symbol
	if err := r.active(ctx).Find(&symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

// ListActiveCodes はsort_key順にアクティブな銘柄のコードのみを返します。
func (r *symbolGorm) ListActiveCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.active(ctx).Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// Upsert はcodeをキーに銘柄を挿入し、既存の場合は有効化して並び順を更新します。
// 既存の名称と市場は上書きしません。
func (r *symbolGorm) Upsert(ctx context.Context, symbols []entity.Symbol) error {
	if len(symbols) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_active", "sort_key", "updated_at"}),
	}).Create(&symbols).Error
}
