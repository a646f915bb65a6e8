package mysql

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookhub/internal/infrastructure/config"
	applog "github.com/xiebiao/bookhub/pkg/logger"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. auto_migrate打开时自动迁移表结构
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true, // 唯一索引冲突翻译为gorm.ErrDuplicatedKey
		// 关联关系只用于Preload，不建外键；删除时由仓储清理映射表
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 学习要点：合理的连接池配置对性能至关重要
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log := applog.Named("mysql")
	log.Info().Str("host", cfg.Database.Host).Str("db", cfg.Database.DBName).Msg("数据库连接成功")

	// 注意：生产环境应使用版本化的迁移脚本，不要依赖AutoMigrate
	if cfg.Database.AutoMigrate {
		if err := autoMigrate(db); err != nil {
			return nil, fmt.Errorf("数据库迁移失败: %w", err)
		}
		log.Info().Msg("表结构迁移完成")
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// 多对多映射表（book_author_mapping等）随BookModel/CommentModel一起创建
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&AccountModel{},
		&AuthorModel{},
		&IssuerModel{},
		&TagModel{},
		&ImageModel{},
		&BookModel{},
		&CommentModel{},
		&VoteModel{},
		&FavouriteModel{},
	)
}
