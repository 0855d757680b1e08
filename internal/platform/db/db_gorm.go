// Package db はGORMによるデータベース接続の確立を提供します。
package db

import (
	"fmt"
	"log"
	"os"
	"time"

	gmysql "gorm.io/driver/mysql"
	gpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"voicechat_backend/internal/feature/users/domain/entity"
)

// connectTimeout はデータベース接続リトライの上限時間です。
const connectTimeout = 60 * time.Second

// Config はデータベース接続設定を保持します。
type Config struct {
	// Driver は使用するデータベースドライバーです（"mysql"または"postgres"）。
	// 空の場合はmysqlが使用されます。
	Driver   string
	User     string
	Password string
	Name     string
	Host     string
	Port     string
	// InstanceName はCloud SQL Unixソケット接続用のインスタンス名です。
	// 設定されている場合、Host/Portより優先されます（MySQLのみ）。
	InstanceName string
}

// LoadConfigFromEnv は環境変数からデータベース設定を読み込みます。
func LoadConfigFromEnv() Config {
	return Config{
		Driver:       os.Getenv("DB_DRIVER"),
		User:         os.Getenv("DB_USER"),
		Password:     os.Getenv("DB_PASSWORD"),
		Name:         os.Getenv("DB_NAME"),
		Host:         os.Getenv("DB_HOST"),
		Port:         os.Getenv("DB_PORT"),
		InstanceName: os.Getenv("INSTANCE_CONNECTION_NAME"),
	}
}

// BuildDSN は設定からドライバーに応じたDSN文字列を生成します。
func BuildDSN(cfg Config) string {
	if cfg.Driver == "postgres" {
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Local",
			cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port)
	}
	if cfg.InstanceName != "" {
		return fmt.Sprintf("%s:%s@unix(/cloudsql/%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			cfg.User, cfg.Password, cfg.InstanceName, cfg.Name)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
}

// OpenFunc はDSNからgorm.DBを開く関数です。テスト時に差し替えます。
type OpenFunc func(dsn string) (*gorm.DB, error)

// openerFor はドライバー名に対応するOpenFuncを返します。
func openerFor(driver string) OpenFunc {
	if driver == "postgres" {
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(gpostgres.Open(dsn), &gorm.Config{})
		}
	}
	return func(dsn string) (*gorm.DB, error) {
		return gorm.Open(gmysql.Open(dsn), &gorm.Config{})
	}
}

// ConnectWithRetry はタイムアウトまで3秒間隔で接続を試行します。
func ConnectWithRetry(dsn string, timeout time.Duration, open OpenFunc) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(3 * time.Second)
	}
}

// OpenDB は環境変数の設定でデータベース接続を確立します。
// RUN_MIGRATIONS=trueの場合、usersテーブルのスキーマを自動生成します。
func OpenDB() *gorm.DB {
	cfg := LoadConfigFromEnv()

	db, err := ConnectWithRetry(BuildDSN(cfg), connectTimeout, openerFor(cfg.Driver))
	if err != nil {
		log.Fatalf("%v", err)
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		if err := db.AutoMigrate(&entity.User{}); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return db
}
