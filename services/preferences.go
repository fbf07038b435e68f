package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"tim_report_app_go/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PreferenceStore persists UI preferences independently of the report
type PreferenceStore interface {
	GetBool(ctx context.Context, key string, defaultValue bool) (bool, error)
	SetBool(ctx context.Context, key string, value bool) error
}

// GormPreferenceStore keeps preferences in the preferences table
type GormPreferenceStore struct {
	db *gorm.DB
}

// NewGormPreferenceStore creates a store on an initialized database
func NewGormPreferenceStore(db *gorm.DB) *GormPreferenceStore {
	return &GormPreferenceStore{db: db}
}

// GetBool returns the stored flag, or defaultValue when it was never set
func (s *GormPreferenceStore) GetBool(ctx context.Context, key string, defaultValue bool) (bool, error) {
	var pref models.Preference
	err := s.db.WithContext(ctx).First(&pref, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return defaultValue, nil
	}
	if err != nil {
		return defaultValue, fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	return parseBoolPreference(pref.Value, defaultValue), nil
}

// SetBool stores the flag
func (s *GormPreferenceStore) SetBool(ctx context.Context, key string, value bool) error {
	pref := models.Preference{Key: key, Value: strconv.FormatBool(value)}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&pref).Error
	if err != nil {
		return fmt.Errorf("failed to save preference %s: %w", key, err)
	}
	return nil
}

// RedisPreferenceStore keeps preferences in Redis under a key prefix
type RedisPreferenceStore struct {
	client *redis.Client
	prefix string
}

// NewRedisPreferenceStore connects to the Redis server at redisURL
func NewRedisPreferenceStore(ctx context.Context, redisURL string) (*RedisPreferenceStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisPreferenceStore{client: client, prefix: "tim:preferences:"}, nil
}

// GetBool returns the stored flag, or defaultValue when it was never set
func (s *RedisPreferenceStore) GetBool(ctx context.Context, key string, defaultValue bool) (bool, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return defaultValue, nil
	}
	if err != nil {
		return defaultValue, fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	return parseBoolPreference(value, defaultValue), nil
}

// SetBool stores the flag without expiration
func (s *RedisPreferenceStore) SetBool(ctx context.Context, key string, value bool) error {
	if err := s.client.Set(ctx, s.prefix+key, strconv.FormatBool(value), 0).Err(); err != nil {
		return fmt.Errorf("failed to save preference %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisPreferenceStore) Close() error {
	return s.client.Close()
}

// MemoryPreferenceStore keeps preferences for the life of the process
type MemoryPreferenceStore struct {
	mu     sync.RWMutex
	values map[string]bool
}

// NewMemoryPreferenceStore creates an empty in-process store
func NewMemoryPreferenceStore() *MemoryPreferenceStore {
	return &MemoryPreferenceStore{values: make(map[string]bool)}
}

func (s *MemoryPreferenceStore) GetBool(_ context.Context, key string, defaultValue bool) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	return defaultValue, nil
}

func (s *MemoryPreferenceStore) SetBool(_ context.Context, key string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// parseBoolPreference accepts what the browser stored ("true"/"false")
func parseBoolPreference(value string, defaultValue bool) bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
