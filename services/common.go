package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"jogakzip/database"
	"jogakzip/models"
	"jogakzip/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	// maxPage keeps (page-1)*pageSize far from int overflow.
	maxPage = 1000000
)

// EventPublisher receives change notifications for readable resources.
// Publishing is best effort and never fails the request.
type EventPublisher interface {
	Publish(ctx context.Context, event models.Event)
}

// Publishers fans an event out to every publisher in the slice.
type Publishers []EventPublisher

func (p Publishers) Publish(ctx context.Context, event models.Event) {
	for _, publisher := range p {
		if publisher != nil {
			publisher.Publish(ctx, event)
		}
	}
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, models.Event) {}

func publisherOrNoop(events EventPublisher) EventPublisher {
	if events == nil {
		return noopPublisher{}
	}
	return events
}

// storeError converts store failures into AppErrors. Anything unexpected
// becomes an internal error tagged with the operation name.
func storeError(op, resource string, err error) error {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return utils.NewNotFoundError(resource + " not found")
	case errors.Is(err, database.ErrParentNotFound):
		return utils.NewNotFoundError(parentOf(resource) + " not found")
	case errors.Is(err, database.ErrHasDependents):
		return utils.NewConflictError(resource + " has dependent " + childOf(resource))
	default:
		return utils.NewInternalError(op, err)
	}
}

func parentOf(resource string) string {
	switch resource {
	case "post":
		return "group"
	case "comment":
		return "post"
	}
	return resource
}

func childOf(resource string) string {
	switch resource {
	case "group":
		return "posts"
	case "post":
		return "comments"
	}
	return "records"
}

func validateID(id uint, name string) error {
	if id == 0 {
		return utils.NewValidationError("invalid " + name)
	}
	return nil
}

func requirePassword(password string) error {
	if password == "" {
		return utils.NewValidationError("password is required")
	}
	return nil
}

func requireText(value, field string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", utils.NewValidationError(field + " is required")
	}
	return trimmed, nil
}

// requireOptionalText trims a present field and rejects an empty result.
func requireOptionalText(value *string, field string) (*string, error) {
	if value == nil {
		return nil, nil
	}
	trimmed, err := requireText(*value, field)
	if err != nil {
		return nil, err
	}
	return &trimmed, nil
}

func verifySecret(password, hashed string) error {
	if !utils.CheckPassword(password, hashed) {
		return utils.NewAuthorizationError("password does not match")
	}
	return nil
}

func pageWindow(page, pageSize int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize, (page - 1) * pageSize
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func utcNow() time.Time {
	return time.Now().UTC()
}
