package resource_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/resource"
	inmemdb "github.com/trezcool/mwalimu/storage/database/inmem"
)

func titles(rs []resource.Resource) []string {
	res := make([]string, 0, len(rs))
	for _, r := range rs {
		res = append(res, r.Title)
	}
	return res
}

func TestService_Query(t *testing.T) {
	svc := resource.NewService(inmemdb.NewResourceRepository(inmemdb.NewDB()))

	tests := []struct {
		name   string
		filter resource.QueryFilter
		want   []string
	}{
		{
			name: "all, most downloaded first",
			want: []string{"English Comprehension Worksheets", "Primary Mathematics Grade 4", "Simple Science Experiments"},
		},
		{name: "subject", filter: resource.QueryFilter{Subject: " Science"}, want: []string{"Simple Science Experiments"}},
		{name: "grade in range", filter: resource.QueryFilter{Grade: 4}, want: []string{"Primary Mathematics Grade 4", "Simple Science Experiments"}},
		{name: "type", filter: resource.QueryFilter{Type: "WORKSHEET"}, want: []string{"English Comprehension Worksheets"}},
		{name: "no match", filter: resource.QueryFilter{Subject: "english", Grade: 6}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := svc.Query(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(rs))
		})
	}
}

func TestService_Download(t *testing.T) {
	ctx := context.Background()
	svc := resource.NewService(inmemdb.NewResourceRepository(inmemdb.NewDB()))

	_, err := svc.Download(ctx, 42)
	assert.True(t, core.IsNotFound(err))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Download(ctx, 3)
		}()
	}
	wg.Wait()

	r, err := svc.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 213, r.DownloadCount)
}
