package navigation

import (
	"context"
	"testing"

	e "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileEndpoint(t *testing.T) {
	ep := NewFileEndpoint("testdata/hierarchy.yaml")
	ctx := context.Background()
	accounts, err := ep.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, Entity{ID: "2", Name: "Zeta Media", Type: AccountType}, accounts[0])
	campaigns, err := ep.ListCampaigns(ctx, "1")
	require.NoError(t, err)
	require.Len(t, campaigns, 2)
	assert.True(t, campaigns[0].Archived)
	adGroups, err := ep.ListAdGroups(ctx, "11")
	require.NoError(t, err)
	assert.Equal(t, []Entity{
		{ID: "111", Name: "Video", Type: AdGroupType},
		{ID: "112", Name: "Native", Type: AdGroupType, Archived: true},
	}, adGroups)
	_, err = ep.ListCampaigns(ctx, "404")
	assert.True(t, e.Is(err, ErrAccountNotFound))
	_, err = ep.ListAdGroups(ctx, "404")
	assert.True(t, e.Is(err, ErrCampaignNotFound))
}

func TestFileEndpointErrors(t *testing.T) {
	_, err := NewFileEndpoint("testdata/missing.yaml").ListAccounts(context.Background())
	assert.Error(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewFileEndpoint("testdata/hierarchy.yaml").ListAccounts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
