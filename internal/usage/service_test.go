package usage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/styleai/styleai/internal/apiclient"
	"github.com/styleai/styleai/internal/serviceerr"
	"github.com/styleai/styleai/internal/usage"
)

type countingSource struct {
	calls int
	info  apiclient.UsageInfo
	err   error
}

func (s *countingSource) UsageInfo(context.Context) (apiclient.UsageInfo, error) {
	s.calls++
	if s.err != nil {
		return apiclient.UsageInfo{}, s.err
	}

	return s.info, nil
}

func TestService_Info_CacheHit(t *testing.T) {
	source := &countingSource{info: apiclient.UsageInfo{Tier: "premium", Remaining: 42}}
	svc := usage.NewService(source, time.Minute)

	first, err := svc.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, first.Remaining)

	second, err := svc.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, 1, source.calls)
}

func TestService_Info_Invalidate(t *testing.T) {
	source := &countingSource{info: apiclient.UsageInfo{Tier: "free", Remaining: 1}}
	svc := usage.NewService(source, time.Minute)

	_, err := svc.Info(context.Background())
	require.NoError(t, err)

	svc.Invalidate()

	source.info.Remaining = 0

	info, err := svc.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, info.Remaining)
	assert.Equal(t, 2, source.calls)
}

func TestService_Info_FetchErrorNotCached(t *testing.T) {
	source := &countingSource{err: serviceerr.ErrNetwork}
	svc := usage.NewService(source, time.Minute)

	_, err := svc.Info(context.Background())
	assert.ErrorIs(t, err, serviceerr.ErrNetwork)

	source.err = nil
	source.info = apiclient.UsageInfo{Tier: "free"}

	info, err := svc.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "free", info.Tier)
	assert.Equal(t, 2, source.calls)
}
