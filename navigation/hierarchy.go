package navigation

import (
	"strings"
)

// EntityType is the level of an entity in the hierarchy
type EntityType string

const (
	AccountType  EntityType = "account"
	CampaignType EntityType = "campaign"
	AdGroupType  EntityType = "adgroup"
	pathSep                 = " / "
)

// Entity is a node of the account, campaign and ad group hierarchy
type Entity struct {
	ID       string
	Name     string
	Type     EntityType
	Archived bool
	Children []Entity
}

// Item is one row of a flattened hierarchy
type Item struct {
	ID       string
	Name     string
	Type     EntityType
	Archived bool
	Depth    int
	Path     string
}

// matches reports whether the entity's name or ID contains term, ignoring case
func (e Entity) matches(term string) bool {
	return strings.Contains(strings.ToLower(e.Name), term) || strings.Contains(strings.ToLower(e.ID), term)
}

// Filter returns the entities matching term together with their ancestors. A
// matching entity keeps its whole subtree. Archived entities, and everything
// below them, are dropped unless includeArchived is set. The input is not modified.
func Filter(tree []Entity, term string, includeArchived bool) []Entity {
	term = strings.ToLower(strings.TrimSpace(term))
	var out []Entity
	for _, e := range tree {
		if e.Archived && !includeArchived {
			continue
		}
		if term == "" || e.matches(term) {
			e.Children = Filter(e.Children, "", includeArchived)
			out = append(out, e)
			continue
		}
		children := Filter(e.Children, term, includeArchived)
		if len(children) > 0 {
			e.Children = children
			out = append(out, e)
		}
	}
	return out
}

// Flatten walks the tree depth first and returns one Item per entity
func Flatten(tree []Entity) []Item {
	var items []Item
	var walk func([]Entity, int, string)
	walk = func(entities []Entity, depth int, parent string) {
		for _, e := range entities {
			path := e.Name
			if parent != "" {
				path = parent + pathSep + e.Name
			}
			items = append(items, Item{
				ID:       e.ID,
				Name:     e.Name,
				Type:     e.Type,
				Archived: e.Archived,
				Depth:    depth,
				Path:     path,
			})
			walk(e.Children, depth+1, path)
		}
	}
	walk(tree, 0, "")
	return items
}

// Find returns the entity with the given type and ID
func Find(tree []Entity, t EntityType, id string) (Entity, bool) {
	for _, e := range tree {
		if e.Type == t && e.ID == id {
			return e, true
		}
		if found, ok := Find(e.Children, t, id); ok {
			return found, true
		}
	}
	return Entity{}, false
}
