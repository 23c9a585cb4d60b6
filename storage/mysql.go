package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/eddielth/check-sensorprobe/logger"
)

// MySQLStorage 表示MySQL数据库存储后端
type MySQLStorage struct {
	db       *sql.DB
	dsn      string
	database string
}

// NewMySQLStorage 创建一个新的MySQL存储后端
func NewMySQLStorage(dsn string) (*MySQLStorage, error) {
	// 解析DSN获取数据库名
	database, serverDSN, err := parseMySQLDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("解析MySQL DSN失败: %w", err)
	}

	// 先连接到MySQL服务器（不指定数据库）
	serverDB, err := sql.Open("mysql", serverDSN)
	if err != nil {
		return nil, fmt.Errorf("连接MySQL服务器失败: %w", err)
	}
	defer serverDB.Close()

	// 创建数据库（如果不存在）
	_, err = serverDB.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", database))
	if err != nil {
		return nil, fmt.Errorf("创建数据库失败: %w", err)
	}

	// 连接到指定的数据库
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("连接MySQL数据库失败: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("MySQL数据库连接测试失败: %w", err)
	}

	// 设置连接池参数
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Minute)

	storage := &MySQLStorage{
		db:       db,
		dsn:      dsn,
		database: database,
	}

	if err := storage.InitDatabase(); err != nil {
		db.Close()
		return nil, fmt.Errorf("初始化MySQL数据库失败: %w", err)
	}

	logger.Debug("MySQL数据库存储初始化成功: %s", database)
	return storage, nil
}

// parseMySQLDSN 解析MySQL DSN字符串，提取数据库名和不包含数据库的DSN
func parseMySQLDSN(dsn string) (database string, serverDSN string, err error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", "", err
	}
	if cfg.DBName == "" {
		return "", "", fmt.Errorf("DSN格式无效，无法提取数据库名")
	}

	database = cfg.DBName
	if strings.ContainsAny(database, "`") {
		return "", "", fmt.Errorf("数据库名无效: %q", database)
	}
	cfg.DBName = ""
	return database, cfg.FormatDSN(), nil
}

// InitDatabase 初始化数据库和表
func (ms *MySQLStorage) InitDatabase() error {
	checkTableSQL := `
	CREATE TABLE IF NOT EXISTS check_results (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		host VARCHAR(255) NOT NULL,
		port_filter INT NOT NULL,
		severity VARCHAR(16) NOT NULL,
		exit_code INT NOT NULL,
		summary TEXT NOT NULL,
		perfdata TEXT,
		checked_at DATETIME(3) NOT NULL,
		INDEX idx_host (host),
		INDEX idx_checked_at (checked_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`

	readingTableSQL := `
	CREATE TABLE IF NOT EXISTS sensor_readings (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		check_id BIGINT NOT NULL,
		port INT NOT NULL,
		slot INT NOT NULL,
		name VARCHAR(255) NOT NULL,
		category VARCHAR(64) NOT NULL,
		health INT NOT NULL,
		severity VARCHAR(16) NOT NULL,
		value DOUBLE,
		unit VARCHAR(16),
		low_critical DOUBLE,
		low_warning DOUBLE,
		high_warning DOUBLE,
		high_critical DOUBLE,
		FOREIGN KEY (check_id) REFERENCES check_results(id) ON DELETE CASCADE,
		INDEX idx_check_id (check_id),
		INDEX idx_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`

	// 执行创建表SQL
	if _, err := ms.db.Exec(checkTableSQL); err != nil {
		return fmt.Errorf("创建检查结果表失败: %w", err)
	}

	if _, err := ms.db.Exec(readingTableSQL); err != nil {
		return fmt.Errorf("创建传感器读数表失败: %w", err)
	}

	return nil
}

// Store 将结果及其传感器数据在一个事务中存储到MySQL数据库
func (ms *MySQLStorage) Store(res Result) error {
	err := storeInTx(ms.db, func(tx *sql.Tx) error {
		return insertResult(tx, res, mysqlInsertCheck, func(int) string { return "?" })
	})
	if err != nil {
		return fmt.Errorf("MySQL: %w", err)
	}

	logger.Debug("已存储 %s 的检查结果到MySQL", res.Host)
	return nil
}

func mysqlInsertCheck(tx *sql.Tx, res Result) (int64, error) {
	r := res.Report
	result, err := tx.Exec(`INSERT INTO check_results (host, port_filter, severity, exit_code, summary, perfdata, checked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		res.Host, res.PortFilter, r.Severity.String(), r.ExitCode(), r.Summary, r.PerfData, res.CheckedAt)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// Close 关闭数据库连接
func (ms *MySQLStorage) Close() error {
	if ms.db != nil {
		if err := ms.db.Close(); err != nil {
			return fmt.Errorf("关闭MySQL连接失败: %w", err)
		}
	}
	return nil
}
