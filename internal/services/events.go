package services

import "context"

// EventPublisher 事件发布抽象，生产环境由 Kafka 实现
type EventPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}
