package services

import (
	"context"

	"github.com/amulsh/nurture-gateway/pkg/pg"
)

type HealthService struct {
	db *pg.DB
}

func NewHealthService(db *pg.DB) *HealthService {
	return &HealthService{
		db: db,
	}
}

func (s *HealthService) Get() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.Write(context.Background()).DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
