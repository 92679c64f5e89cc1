package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"incubapp/internal/models"
)

// CacheService fronts Redis for the hot lookups of the routing path:
// programme-by-code (hit on every routed request) and schema stats (admin
// dashboards poll them).
type CacheService interface {
	GetProgramme(ctx context.Context, code string) (*models.Programme, error)
	SetProgramme(ctx context.Context, programme *models.Programme, ttl time.Duration) error
	DeleteProgramme(ctx context.Context, code string) error

	GetSchemaStats(ctx context.Context, code string) (map[string]int64, error)
	SetSchemaStats(ctx context.Context, code string, stats map[string]int64, ttl time.Duration) error
	DeleteSchemaStats(ctx context.Context, code string) error

	Ping(ctx context.Context) error
	Close() error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Warn().Err(err).Str("addr", addr).Msg("Redis ping failed on initialization")
	}

	return &redisCacheService{client: client}
}

func programmeKey(code string) string {
	return fmt.Sprintf("programme:%s", code)
}

func statsKey(code string) string {
	return fmt.Sprintf("schema_stats:%s", code)
}

func (s *redisCacheService) GetProgramme(ctx context.Context, code string) (*models.Programme, error) {
	data, err := s.client.Get(ctx, programmeKey(code)).Result()
	if err != nil {
		return nil, err
	}
	programme := &models.Programme{}
	if err := json.Unmarshal([]byte(data), programme); err != nil {
		return nil, err
	}
	return programme, nil
}

func (s *redisCacheService) SetProgramme(ctx context.Context, programme *models.Programme, ttl time.Duration) error {
	data, err := json.Marshal(programme)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, programmeKey(programme.Code), data, ttl).Err()
}

func (s *redisCacheService) DeleteProgramme(ctx context.Context, code string) error {
	return s.client.Del(ctx, programmeKey(code)).Err()
}

func (s *redisCacheService) GetSchemaStats(ctx context.Context, code string) (map[string]int64, error) {
	data, err := s.client.Get(ctx, statsKey(code)).Result()
	if err != nil {
		return nil, err
	}
	stats := make(map[string]int64)
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *redisCacheService) SetSchemaStats(ctx context.Context, code string, stats map[string]int64, ttl time.Duration) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, statsKey(code), data, ttl).Err()
}

func (s *redisCacheService) DeleteSchemaStats(ctx context.Context, code string) error {
	return s.client.Del(ctx, statsKey(code)).Err()
}

func (s *redisCacheService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *redisCacheService) Close() error {
	return s.client.Close()
}
