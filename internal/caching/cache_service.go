package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"billmart/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CacheService is the Redis-backed read-through cache. Every entry carries a
// TTL; nothing lives for the process lifetime.
type CacheService interface {
	GetProduct(ctx context.Context, businessID, productID uuid.UUID) (*models.Product, error)
	SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error
	DeleteProduct(ctx context.Context, businessID, productID uuid.UUID) error

	GetSuggestions(ctx context.Context, businessID uuid.UUID, prefix string) ([]string, error)
	SetSuggestions(ctx context.Context, businessID uuid.UUID, prefix string, names []string, ttl time.Duration) error

	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func productKey(businessID, productID uuid.UUID) string {
	return fmt.Sprintf("billmart:product:%s:%s", businessID.String(), productID.String())
}

func suggestionKey(businessID uuid.UUID, prefix string) string {
	return fmt.Sprintf("billmart:suggest:%s:%s", businessID.String(), strings.ToLower(prefix))
}

func (r *redisCacheService) GetProduct(ctx context.Context, businessID, productID uuid.UUID) (*models.Product, error) {
	data, err := r.client.Get(ctx, productKey(businessID, productID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *redisCacheService) SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, productKey(product.BusinessID, product.ID), data, ttl).Err()
}

func (r *redisCacheService) DeleteProduct(ctx context.Context, businessID, productID uuid.UUID) error {
	return r.client.Del(ctx, productKey(businessID, productID)).Err()
}

func (r *redisCacheService) GetSuggestions(ctx context.Context, businessID uuid.UUID, prefix string) ([]string, error) {
	data, err := r.client.Get(ctx, suggestionKey(businessID, prefix)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (r *redisCacheService) SetSuggestions(ctx context.Context, businessID uuid.UUID, prefix string, names []string, ttl time.Duration) error {
	data, err := json.Marshal(names)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, suggestionKey(businessID, prefix), data, ttl).Err()
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}
