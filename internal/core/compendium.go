package core

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"bioforge/pkg/domain"
)

// AddCompendiumItem appends item, minting an id when it has none, and returns
// the id used.
func (s *Service) AddCompendiumItem(ctx context.Context, item domain.CompendiumItem) string {
	full := item.Clone()
	if full.ID == "" {
		full.ID = s.newID()
	}
	s.mutate(ctx, "add_compendium_item", func(st *domain.State, _ time.Time) bool {
		st.CompendiumItems = append(st.CompendiumItems, full)
		return true
	})
	return full.ID
}

// UpdateCompendiumItem applies patch to the item with the given id.
func (s *Service) UpdateCompendiumItem(ctx context.Context, id string, patch domain.CompendiumPatch) bool {
	return s.mutate(ctx, "update_compendium_item", func(st *domain.State, _ time.Time) bool {
		i := compendiumIndex(st, id)
		if i < 0 {
			return false
		}
		st.CompendiumItems[i] = patch.Apply(st.CompendiumItems[i])
		return true
	})
}

// RemoveCompendiumItem deletes the item and drops it from every saved module.
func (s *Service) RemoveCompendiumItem(ctx context.Context, id string) bool {
	return s.mutate(ctx, "remove_compendium_item", func(st *domain.State, _ time.Time) bool {
		i := compendiumIndex(st, id)
		if i < 0 {
			return false
		}
		st.CompendiumItems = slices.Delete(st.CompendiumItems, i, i+1)
		for m := range st.SavedModules {
			st.SavedModules[m].ItemIDs = slices.DeleteFunc(st.SavedModules[m].ItemIDs, func(iid string) bool {
				return iid == id
			})
		}
		return true
	})
}

// SetCompendiumItems replaces the compendium wholesale.
func (s *Service) SetCompendiumItems(ctx context.Context, items []domain.CompendiumItem) bool {
	return s.mutate(ctx, "set_compendium_items", func(st *domain.State, _ time.Time) bool {
		st.CompendiumItems = make([]domain.CompendiumItem, len(items))
		for i, it := range items {
			st.CompendiumItems[i] = it.Clone()
		}
		return true
	})
}

// SeedCompendium fills an empty compendium from the catalog seed.
func (s *Service) SeedCompendium(ctx context.Context) bool {
	return s.mutate(ctx, "seed_compendium", func(st *domain.State, now time.Time) bool {
		if len(st.CompendiumItems) > 0 {
			return false
		}
		st.CompendiumItems = s.catalog.CompendiumSeed(now)
		return true
	})
}

// CompendiumItems returns a copy of the compendium.
func (s *Service) CompendiumItems() []domain.CompendiumItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CompendiumItem, len(s.state.CompendiumItems))
	for i, it := range s.state.CompendiumItems {
		out[i] = it.Clone()
	}
	return out
}

// SearchCompendium returns items whose name, refId, notes or tags contain
// query, ignoring case. An empty query matches everything.
func (s *Service) SearchCompendium(query string) []domain.CompendiumItem {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []domain.CompendiumItem
	for _, it := range s.CompendiumItems() {
		if q == "" || matchesItem(it, q) {
			out = append(out, it)
		}
	}
	return out
}

func matchesItem(it domain.CompendiumItem, q string) bool {
	for _, field := range []string{it.Name, it.RefID, it.PersonalNotes} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	for _, tag := range it.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// AddCompendiumItemToPlan places item at week 0 of a phase of the current
// plan. The block id is derived from the item id and the current time.
func (s *Service) AddCompendiumItemToPlan(ctx context.Context, phaseIndex int, item domain.CompendiumItem) bool {
	return s.mutate(ctx, "add_compendium_item_to_plan", func(st *domain.State, now time.Time) bool {
		return appendBlocks(st.CurrentPlan, phaseIndex, 0, now, s.itemDraft(item, now))
	})
}

// AddCompendiumItemsToPlan places every compendium item whose id is listed,
// in compendium order.
func (s *Service) AddCompendiumItemsToPlan(ctx context.Context, phaseIndex int, itemIDs []string) bool {
	return s.mutate(ctx, "add_compendium_items_to_plan", func(st *domain.State, now time.Time) bool {
		var drafts []domain.BlockDraft
		for _, it := range st.CompendiumItems {
			if slices.Contains(itemIDs, it.ID) {
				drafts = append(drafts, s.itemDraft(it, now))
			}
		}
		if len(drafts) == 0 {
			return false
		}
		return appendBlocks(st.CurrentPlan, phaseIndex, 0, now, drafts...)
	})
}

func (s *Service) itemDraft(item domain.CompendiumItem, now time.Time) domain.BlockDraft {
	ref := item.RefID
	if ref == "" {
		ref = item.ID
	}
	return domain.BlockDraft{
		ID:    fmt.Sprintf("block-%s-%d", item.ID, now.UnixMilli()),
		Type:  item.Type,
		RefID: ref,
		Label: item.Name,
		Notes: item.PersonalNotes,
	}
}

// AddSavedModule stores a named item subset and returns its id.
func (s *Service) AddSavedModule(ctx context.Context, name string, itemIDs []string) string {
	mod := domain.SavedModule{ID: s.newID(), Name: name, ItemIDs: append([]string{}, itemIDs...)}
	s.mutate(ctx, "add_saved_module", func(st *domain.State, _ time.Time) bool {
		st.SavedModules = append(st.SavedModules, mod)
		return true
	})
	return mod.ID
}

// RemoveSavedModule deletes a saved module.
func (s *Service) RemoveSavedModule(ctx context.Context, id string) bool {
	return s.mutate(ctx, "remove_saved_module", func(st *domain.State, _ time.Time) bool {
		n := len(st.SavedModules)
		st.SavedModules = slices.DeleteFunc(st.SavedModules, func(m domain.SavedModule) bool { return m.ID == id })
		return len(st.SavedModules) != n
	})
}

// SavedModules returns copies of the saved modules.
func (s *Service) SavedModules() []domain.SavedModule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SavedModule, len(s.state.SavedModules))
	for i, m := range s.state.SavedModules {
		out[i] = m.Clone()
	}
	return out
}

// ModuleItemIDs returns the item ids of a saved module, or nil when unknown.
func (s *Service) ModuleItemIDs(moduleID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.state.SavedModules {
		if m.ID == moduleID {
			return append([]string{}, m.ItemIDs...)
		}
	}
	return nil
}

// SetFocusMode selects the view mode. moduleID is only meaningful for the
// compendium-custom mode; empty clears it.
func (s *Service) SetFocusMode(ctx context.Context, mode domain.FocusMode, moduleID string) bool {
	return s.mutate(ctx, "set_focus_mode", func(st *domain.State, _ time.Time) bool {
		st.FocusMode = mode
		st.FocusModuleID = nil
		if moduleID != "" {
			id := moduleID
			st.FocusModuleID = &id
		}
		return true
	})
}

// SetSettings merges patch into the settings.
func (s *Service) SetSettings(ctx context.Context, patch domain.SettingsPatch) bool {
	return s.mutate(ctx, "set_settings", func(st *domain.State, _ time.Time) bool {
		st.Settings = patch.Apply(st.Settings)
		return true
	})
}

// AddRecentCommandSearch remembers query as the most recent search, dropping
// older duplicates and keeping at most domain.MaxRecentSearches entries.
func (s *Service) AddRecentCommandSearch(ctx context.Context, query string) bool {
	q := strings.TrimSpace(query)
	if q == "" {
		return false
	}
	return s.mutate(ctx, "add_recent_search", func(st *domain.State, _ time.Time) bool {
		recent := []string{q}
		for _, r := range st.RecentCommandSearches {
			if r != q {
				recent = append(recent, r)
			}
		}
		if len(recent) > domain.MaxRecentSearches {
			recent = recent[:domain.MaxRecentSearches]
		}
		st.RecentCommandSearches = recent
		return true
	})
}

func compendiumIndex(st *domain.State, id string) int {
	for i, it := range st.CompendiumItems {
		if it.ID == id {
			return i
		}
	}
	return -1
}
