package resource

import (
	"context"

	"github.com/trezcool/mwalimu/core"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("resource not found")
)

type (
	Repository interface {
		// QueryResources returns the resources matching filter, most downloaded first.
		QueryResources(ctx context.Context, filter QueryFilter) ([]Resource, error)
		GetResource(ctx context.Context, id int) (Resource, error)
		// IncrementDownloads atomically adds one download to the resource and returns it.
		IncrementDownloads(ctx context.Context, id int) (Resource, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Resource, error) {
	filter.Clean()
	return svc.repo.QueryResources(ctx, filter)
}

func (svc *Service) Get(ctx context.Context, id int) (Resource, error) {
	return svc.repo.GetResource(ctx, id)
}

func (svc *Service) Download(ctx context.Context, id int) (Resource, error) {
	return svc.repo.IncrementDownloads(ctx, id)
}
