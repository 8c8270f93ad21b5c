package db

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mythoughts/internal/auth"
	"mythoughts/internal/profile"
	"mythoughts/internal/thought"
)

func Connect(dsn string, log *zap.Logger) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	log.Info("database connected")
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&auth.Account{},
		&thought.Thought{},
		&profile.Profile{},
	); err != nil {
		return err
	}

	stmts := []string{
		// Create idempotency: unique per author + key where a key was sent.
		`create unique index if not exists uq_thoughts_author_idem
on thoughts(created_by_uid, idempotency_key)
where idempotency_key is not null;`,
		`create index if not exists idx_thoughts_created on thoughts(created_at desc, id desc);`,
		`create index if not exists idx_thoughts_author_created on thoughts(created_by_uid, created_at desc);`,
		// Prefix search compares bytes, so index the C collation.
		`create index if not exists idx_profiles_email_c on profiles(email collate "C");`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
