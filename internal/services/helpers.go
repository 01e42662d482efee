package services

import (
	"context"
	"log"

	"devhub/internal/apperror"
	"devhub/internal/models"
	"devhub/internal/observability"
	"devhub/internal/repositories"
)

// publishDomainEvent is fire-and-forget; a broker outage never fails the operation.
func publishDomainEvent(ctx context.Context, name string, payload map[string]interface{}) {
	if err := observability.PublishDomainEvent(ctx, name, payload); err != nil {
		log.Printf("domain event publish failed: event=%s err=%v", name, err)
	}
}

// lookupUsers loads the public profiles of ids, deduplicated, keyed by id.
func lookupUsers(ctx context.Context, users repositories.UserRepository, ids []int) (map[int]*models.PublicUser, error) {
	byID := make(map[int]*models.PublicUser, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	seen := make(map[int]struct{}, len(ids))
	unique := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	found, err := users.GetPublicUsers(ctx, unique)
	if err != nil {
		return nil, apperror.Internal("load users", err)
	}
	for i := range found {
		u := found[i]
		byID[u.ID] = &u
	}
	return byID, nil
}
