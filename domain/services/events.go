package services

import (
	"context"

	"screw-inspection/domain/dto"
)

// InspectionPublisher fans committed inspections out to live consumers.
// Publishing is best-effort and must not block the request for long.
type InspectionPublisher interface {
	PublishInspection(ctx context.Context, event dto.InspectionEvent)
}

type InvalidationTopic string

const (
	TopicEngine InvalidationTopic = "engine"
	TopicConfig InvalidationTopic = "config"
)

// InvalidationPublisher tells other instances to drop derived caches
type InvalidationPublisher interface {
	Publish(ctx context.Context, topic InvalidationTopic) error
}
