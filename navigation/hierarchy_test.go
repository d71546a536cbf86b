package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree() []Entity {
	return []Entity{
		{ID: "1", Name: "Acme", Type: AccountType, Children: []Entity{
			{ID: "11", Name: "Brand Awareness", Type: CampaignType, Children: []Entity{
				{ID: "111", Name: "Video", Type: AdGroupType},
				{ID: "112", Name: "Native", Type: AdGroupType, Archived: true},
			}},
			{ID: "12", Name: "Spring Launch", Type: CampaignType, Archived: true, Children: []Entity{
				{ID: "121", Name: "Retargeting", Type: AdGroupType},
			}},
		}},
		{ID: "2", Name: "Zeta Media", Type: AccountType, Children: []Entity{
			{ID: "21", Name: "Winter Sale", Type: CampaignType, Children: []Entity{
				{ID: "211", Name: "Desktop", Type: AdGroupType},
			}},
		}},
	}
}

func names(items []Item) []string {
	var out []string
	for _, i := range items {
		out = append(out, i.Name)
	}
	return out
}

func TestFilterEmptyTermDropsArchived(t *testing.T) {
	got := names(Flatten(Filter(testTree(), "", false)))
	assert.Equal(t, []string{"Acme", "Brand Awareness", "Video", "Zeta Media", "Winter Sale", "Desktop"}, got)
}

func TestFilterIncludeArchived(t *testing.T) {
	got := Flatten(Filter(testTree(), "  ", true))
	assert.Len(t, got, 9)
}

func TestFilterKeepsAncestors(t *testing.T) {
	got := Flatten(Filter(testTree(), "VIDEO", false))
	require.Len(t, got, 3)
	assert.Equal(t, []string{"Acme", "Brand Awareness", "Video"}, names(got))
	assert.Equal(t, 2, got[2].Depth)
	assert.Equal(t, "Acme / Brand Awareness / Video", got[2].Path)
}

func TestFilterMatchKeepsSubtree(t *testing.T) {
	got := names(Flatten(Filter(testTree(), "winter", false)))
	assert.Equal(t, []string{"Zeta Media", "Winter Sale", "Desktop"}, got)
}

func TestFilterMatchesID(t *testing.T) {
	got := names(Flatten(Filter(testTree(), "121", true)))
	assert.Equal(t, []string{"Acme", "Spring Launch", "Retargeting"}, got)
	assert.Empty(t, Filter(testTree(), "121", false))
}

func TestFilterDoesNotModifyInput(t *testing.T) {
	tree := testTree()
	_ = Filter(tree, "video", false)
	assert.Equal(t, testTree(), tree)
}

func TestFind(t *testing.T) {
	e, ok := Find(testTree(), CampaignType, "21")
	require.True(t, ok)
	assert.Equal(t, "Winter Sale", e.Name)
	_, ok = Find(testTree(), AccountType, "21")
	assert.False(t, ok)
}
