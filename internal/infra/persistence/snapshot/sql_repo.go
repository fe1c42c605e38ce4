// internal/infra/persistence/snapshot/sql_repo.go
package snapshot

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/binary-blogs/binary-blogs/pkg/domain/repository"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
)

const (
	tableSnapshots = "snapshots"
	colKey         = "snapshot_key"
	colData        = "data"
	colUpdatedAt   = "updated_at"
)

type sqlRepository struct {
	db      *stdsql.DB
	dialect string
}

// NewSQLRepository 基于关系数据库创建快照仓库，启动时自动建表。
// dialectName 取 entgo.io/ent/dialect 中的常量。
func NewSQLRepository(ctx context.Context, db *stdsql.DB, dialectName string) (repository.SnapshotRepository, error) {
	r := &sqlRepository{db: db, dialect: dialectName}
	if err := r.migrate(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *sqlRepository) migrate(ctx context.Context) error {
	keyType, dataType := "varchar(191)", "text"
	if r.dialect == dialect.MySQL {
		dataType = "longtext"
	}

	query, args := sql.Dialect(r.dialect).
		CreateTable(tableSnapshots).
		IfNotExists().
		Columns(
			sql.Column(colKey).Type(keyType).Attr("NOT NULL"),
			sql.Column(colData).Type(dataType).Attr("NOT NULL"),
			sql.Column(colUpdatedAt).Type("bigint").Attr("NOT NULL"),
		).
		PrimaryKey(colKey).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("创建快照表失败: %w", err)
	}
	log.Println("✅ 快照表结构已就绪")
	return nil
}

func (r *sqlRepository) Load(ctx context.Context, key string) ([]byte, error) {
	query, args := sql.Dialect(r.dialect).
		Select(colData).
		From(sql.Table(tableSnapshots)).
		Where(sql.EQ(colKey, key)).
		Query()

	var data string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, stdsql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取快照 %s 失败: %w", key, err)
	}
	return []byte(data), nil
}

func (r *sqlRepository) Save(ctx context.Context, key string, data []byte) error {
	query, args := sql.Dialect(r.dialect).
		Insert(tableSnapshots).
		Columns(colKey, colData, colUpdatedAt).
		Values(key, string(data), time.Now().UnixMilli()).
		OnConflict(
			sql.ConflictColumns(colKey),
			sql.ResolveWithNewValues(),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("写入快照 %s 失败: %w", key, err)
	}
	return nil
}

func (r *sqlRepository) Delete(ctx context.Context, key string) error {
	query, args := sql.Dialect(r.dialect).
		Delete(tableSnapshots).
		Where(sql.EQ(colKey, key)).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("删除快照 %s 失败: %w", key, err)
	}
	return nil
}

func (r *sqlRepository) Keys(ctx context.Context) ([]string, error) {
	query, args := sql.Dialect(r.dialect).
		Select(colKey).
		From(sql.Table(tableSnapshots)).
		OrderBy(colKey).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("列出快照失败: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
