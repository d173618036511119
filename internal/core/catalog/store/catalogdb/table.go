package catalogdb

import (
	"context"

	"github.com/ixugo/goddd/pkg/orm"
	"gorm.io/gorm"
)

// Table 单表通用读写
type Table[T any] struct {
	db *gorm.DB
}

func (t Table[T]) scope(ctx context.Context, opts ...orm.QueryOption) *gorm.DB {
	db := t.db.WithContext(ctx).Model(new(T))
	for _, fn := range opts {
		db = fn(db)
	}
	return db
}

// Find 分页查询，pager 为空时返回全部
func (t Table[T]) Find(ctx context.Context, bs *[]*T, pager orm.Pager, opts ...orm.QueryOption) (int64, error) {
	db := t.scope(ctx, opts...).Session(&gorm.Session{})
	var total int64
	if err := db.Count(&total).Error; err != nil || total <= 0 {
		return total, err
	}
	if pager != nil {
		db = db.Offset(pager.Offset()).Limit(pager.Limit())
	}
	return total, db.Find(bs).Error
}

// Get 查询单条记录
func (t Table[T]) Get(ctx context.Context, model *T, opts ...orm.QueryOption) error {
	db := t.db.WithContext(ctx)
	for _, fn := range opts {
		db = fn(db)
	}
	return db.First(model).Error
}

// Add 新增
func (t Table[T]) Add(ctx context.Context, model *T) error {
	return t.db.WithContext(ctx).Create(model).Error
}

// Edit 查询后修改并保存，记录不存在时返回 gorm.ErrRecordNotFound
func (t Table[T]) Edit(ctx context.Context, model *T, changeFn func(*T), opts ...orm.QueryOption) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		db := tx
		for _, fn := range opts {
			db = fn(db)
		}
		if err := db.First(model).Error; err != nil {
			return err
		}
		changeFn(model)
		return tx.Save(model).Error
	})
}

// Del 删除
func (t Table[T]) Del(ctx context.Context, model *T, opts ...orm.QueryOption) error {
	db := t.db.WithContext(ctx)
	for _, fn := range opts {
		db = fn(db)
	}
	return db.Delete(model).Error
}

// Session 在同一事务中执行
func (t Table[T]) Session(ctx context.Context, fns ...func(*gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, fn := range fns {
			if err := fn(tx); err != nil {
				return err
			}
		}
		return nil
	})
}
