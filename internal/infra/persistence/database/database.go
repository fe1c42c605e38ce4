/*
 * @Description: 数据库连接管理 (支持 sqlite / mysql / postgres)
 */
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/binary-blogs/binary-blogs/pkg/config"

	"entgo.io/ent/dialect"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DataDir 是 sqlite 数据库文件所在目录
const DataDir = "./data"

// NewSQLDB 根据配置创建 *sql.DB 连接池，同时返回 ent 方言名称供 SQL 构建器使用。
func NewSQLDB(ctx context.Context, cfg *config.Config) (*sql.DB, string, error) {
	driver := cfg.GetString(config.KeyDBType)
	if driver == "" {
		log.Println("提示: 配置文件中未指定 'Database.Type'，将默认使用 'sqlite'")
		driver = "sqlite"
	}

	dbUser := cfg.GetString(config.KeyDBUser)
	dbPass := cfg.GetString(config.KeyDBPassword)
	dbHost := cfg.GetString(config.KeyDBHost)
	dbPort := cfg.GetString(config.KeyDBPort)
	dbName := cfg.GetString(config.KeyDBName)

	var dsn, driverName, dialectName string
	switch driver {
	case "mysql", "mariadb":
		driverName, dialectName = "mysql", dialect.MySQL
		if dbUser == "" || dbHost == "" || dbPort == "" || dbName == "" {
			return nil, "", fmt.Errorf("MySQL 连接参数不完整 (需要 User, Host, Port, Name)")
		}
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			dbUser, dbPass, dbHost, dbPort, dbName)
	case "postgres":
		driverName, dialectName = "postgres", dialect.Postgres
		if dbUser == "" || dbHost == "" || dbPort == "" || dbName == "" {
			return nil, "", fmt.Errorf("PostgreSQL 连接参数不完整 (需要 User, Host, Port, Name)")
		}
		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			dbHost, dbPort, dbUser, dbPass, dbName)
	case "sqlite", "sqlite3":
		driverName, dialectName = "sqlite3", dialect.SQLite
		if err := os.MkdirAll(DataDir, os.ModePerm); err != nil {
			return nil, "", fmt.Errorf("无法创建 data 目录: %w", err)
		}
		if dbName == "" {
			dbName = "binary_blogs.db"
		}
		dsn = SQLiteDSN(filepath.Join(DataDir, dbName))
		log.Printf("【提示】SQLite 数据库路径: %s", filepath.Join(DataDir, dbName))
	default:
		return nil, "", fmt.Errorf("不支持的数据库驱动: %s (支持: mysql/mariadb, postgres, sqlite)", driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("打开 sql.DB 连接失败 (驱动: %s): %w", driverName, err)
	}

	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(100)
	db.SetConnMaxLifetime(time.Hour)
	if dialectName == dialect.SQLite {
		// sqlite 单写者，串行化写入避免 SQLITE_BUSY
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("无法 Ping 通数据库 (驱动: %s): %w", driverName, err)
	}

	log.Printf("✅ %s 数据库连接池创建成功！", driver)
	return db, dialectName, nil
}

// SQLiteDSN 生成 sqlite 文件的 DSN
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
}
