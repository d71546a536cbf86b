package navigation

import (
	"context"
	"io/ioutil"
	"sort"

	bg "github.com/SSSOCPaulCote/blunderguard"
	e "github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

const (
	ErrAccountNotFound  = bg.Error("account not found")
	ErrCampaignNotFound = bg.Error("campaign not found")
)

// Endpoint lists the entities of each level of the hierarchy. Returned entities
// carry no children.
type Endpoint interface {
	ListAccounts(ctx context.Context) ([]Entity, error)
	ListCampaigns(ctx context.Context, accountID string) ([]Entity, error)
	ListAdGroups(ctx context.Context, campaignID string) ([]Entity, error)
}

type (
	fileAdGroup struct {
		ID       string `yaml:"id"`
		Name     string `yaml:"name"`
		Archived bool   `yaml:"archived"`
	}
	fileCampaign struct {
		ID       string        `yaml:"id"`
		Name     string        `yaml:"name"`
		Archived bool          `yaml:"archived"`
		AdGroups []fileAdGroup `yaml:"adgroups"`
	}
	fileAccount struct {
		ID        string         `yaml:"id"`
		Name      string         `yaml:"name"`
		Archived  bool           `yaml:"archived"`
		Campaigns []fileCampaign `yaml:"campaigns"`
	}
	fileHierarchy struct {
		Accounts []fileAccount `yaml:"accounts"`
	}
)

// FileEndpoint serves the hierarchy from a yaml file. The file is read on every
// call so edits are picked up between loads.
type FileEndpoint struct {
	path string
}

// Compile time check to make sure FileEndpoint implements Endpoint
var _ Endpoint = (*FileEndpoint)(nil)

// NewFileEndpoint creates a FileEndpoint reading path
func NewFileEndpoint(path string) *FileEndpoint {
	return &FileEndpoint{path: path}
}

func (f *FileEndpoint) read(ctx context.Context) (*fileHierarchy, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := ioutil.ReadFile(f.path)
	if err != nil {
		return nil, e.Wrapf(err, "could not read hierarchy file %s", f.path)
	}
	var h fileHierarchy
	if err := yaml.Unmarshal(raw, &h); err != nil {
		return nil, e.Wrapf(err, "could not parse hierarchy file %s", f.path)
	}
	return &h, nil
}

// ListAccounts satisfies the Endpoint interface
func (f *FileEndpoint) ListAccounts(ctx context.Context) ([]Entity, error) {
	h, err := f.read(ctx)
	if err != nil {
		return nil, err
	}
	accounts := make([]Entity, 0, len(h.Accounts))
	for _, a := range h.Accounts {
		accounts = append(accounts, Entity{ID: a.ID, Name: a.Name, Type: AccountType, Archived: a.Archived})
	}
	return accounts, nil
}

// ListCampaigns satisfies the Endpoint interface
func (f *FileEndpoint) ListCampaigns(ctx context.Context, accountID string) ([]Entity, error) {
	h, err := f.read(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range h.Accounts {
		if a.ID != accountID {
			continue
		}
		campaigns := make([]Entity, 0, len(a.Campaigns))
		for _, c := range a.Campaigns {
			campaigns = append(campaigns, Entity{ID: c.ID, Name: c.Name, Type: CampaignType, Archived: c.Archived})
		}
		return campaigns, nil
	}
	return nil, e.Wrapf(ErrAccountNotFound, "account %s", accountID)
}

// ListAdGroups satisfies the Endpoint interface
func (f *FileEndpoint) ListAdGroups(ctx context.Context, campaignID string) ([]Entity, error) {
	h, err := f.read(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range h.Accounts {
		for _, c := range a.Campaigns {
			if c.ID != campaignID {
				continue
			}
			adGroups := make([]Entity, 0, len(c.AdGroups))
			for _, g := range c.AdGroups {
				adGroups = append(adGroups, Entity{ID: g.ID, Name: g.Name, Type: AdGroupType, Archived: g.Archived})
			}
			return adGroups, nil
		}
	}
	return nil, e.Wrapf(ErrCampaignNotFound, "campaign %s", campaignID)
}

// sortByName orders entities by name, then ID
func sortByName(entities []Entity) {
	sort.SliceStable(entities, func(i, j int) bool {
		if entities[i].Name == entities[j].Name {
			return entities[i].ID < entities[j].ID
		}
		return entities[i].Name < entities[j].Name
	})
}
