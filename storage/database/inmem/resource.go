package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/mwalimu/core/resource"
)

type resourceRepository struct {
	db *resourceTable
}

func NewResourceRepository(db *DB) resource.Repository {
	return &resourceRepository{db: db.resource}
}

func (repo *resourceRepository) QueryResources(_ context.Context, filter resource.QueryFilter) ([]resource.Resource, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	resources := make([]resource.Resource, 0)
	for _, r := range repo.db.table {
		if filter.Match(r) {
			resources = append(resources, r)
		}
	}
	sort.Slice(resources, func(i, j int) bool {
		if resources[i].DownloadCount != resources[j].DownloadCount {
			return resources[i].DownloadCount > resources[j].DownloadCount
		}
		return resources[i].ID < resources[j].ID
	})
	return resources, nil
}

func (repo *resourceRepository) GetResource(_ context.Context, id int) (resource.Resource, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if r, ok := repo.db.table[id]; ok {
		return r, nil
	}
	return resource.Resource{}, resource.ErrNotFound
}

func (repo *resourceRepository) IncrementDownloads(_ context.Context, id int) (resource.Resource, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	r, ok := repo.db.table[id]
	if !ok {
		return resource.Resource{}, resource.ErrNotFound
	}
	r.DownloadCount++
	repo.db.table[id] = r
	return r, nil
}
