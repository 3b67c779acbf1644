package app

import (
	"gorm.io/gorm"

	"github.com/brunolnetto/sql-adventure-sub001/internal/data/repos"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/logger"
)

func wireRepos(db *gorm.DB, log *logger.Logger) repos.Set {
	log.Info("Wiring repos...")
	return repos.NewSet(db, log)
}
