package health

import (
	"context"
	"errors"

	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type DBChecker struct {
	db *gorm.DB
}

func NewDBChecker(db *gorm.DB) Checker {
	if db == nil {
		return nil
	}
	return &DBChecker{db: db}
}

func (c *DBChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "db", Healthy: true}
	sqlDB, err := c.db.DB()
	if err != nil {
		return failed(res, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return failed(res, err)
	}
	return res
}

type RedisChecker struct {
	client redis.UniversalClient
}

// NewRedisChecker returns nil when Redis is disabled so the runner skips it.
func NewRedisChecker(client redis.UniversalClient) Checker {
	if client == nil {
		return nil
	}
	return &RedisChecker{client: client}
}

func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "redis", Healthy: true}
	if err := c.client.Ping(ctx).Err(); err != nil {
		return failed(res, err)
	}
	return res
}

type ObjectStorageChecker struct {
	client *minio.Client
	bucket string
}

func NewObjectStorageChecker(client *minio.Client, bucket string) Checker {
	if client == nil {
		return nil
	}
	return &ObjectStorageChecker{client: client, bucket: bucket}
}

func (c *ObjectStorageChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "object_storage", Healthy: true}
	ok, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return failed(res, err)
	}
	if !ok {
		return failed(res, errors.New("bucket "+c.bucket+" does not exist"))
	}
	return res
}

func failed(res CheckResult, err error) CheckResult {
	res.Healthy = false
	res.Error = err.Error()
	return res
}
