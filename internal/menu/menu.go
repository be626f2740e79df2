package menu

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/hoavien/restaurant-bot/internal/logger"
	"github.com/hoavien/restaurant-bot/internal/models"
)

// Index is the dish lookup table. Every menu item is registered under two
// case-normalized keys, its Vietnamese and its English name.
type Index struct {
	byKey map[string]*models.MenuItem
	// keys holds lookup keys in registration order so the fuzzy scan in Find
	// has a stable tie-break.
	keys []string
}

// menuFile is the "categories → items" shape of menu.json.
type menuFile struct {
	Menu struct {
		Categories []struct {
			NameVN string `json:"name_vn"`
			Items  []struct {
				ID     string `json:"id"`
				NameVN string `json:"name_vn"`
				NameEN string `json:"name_en"`
				Price  int    `json:"price"`
			} `json:"items"`
		} `json:"categories"`
	} `json:"menu"`
}

// Load reads the menu file into an Index. A missing or malformed file is not
// fatal: the bot keeps running with an empty menu and a logged warning.
func Load(path string, log *logger.Logger) *Index {
	ix := &Index{byKey: make(map[string]*models.MenuItem)}

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn("menu file not loaded, dish lookup disabled", "path", path, "error", err)
		return ix
	}

	var file menuFile
	if err := json.Unmarshal(raw, &file); err != nil {
		log.Warn("menu file malformed, dish lookup disabled", "path", path, "error", err)
		return ix
	}

	for _, cat := range file.Menu.Categories {
		for _, it := range cat.Items {
			item := &models.MenuItem{
				ID:       it.ID,
				NameVN:   it.NameVN,
				NameEN:   it.NameEN,
				Price:    it.Price,
				Category: cat.NameVN,
			}
			ix.register(it.NameVN, item)
			ix.register(it.NameEN, item)
		}
	}

	log.Info("menu loaded", "path", path, "items", ix.Len())
	return ix
}

func (ix *Index) register(name string, item *models.MenuItem) {
	key := normalize(name)
	if key == "" {
		return
	}
	if _, exists := ix.byKey[key]; !exists {
		ix.keys = append(ix.keys, key)
	}
	ix.byKey[key] = item
}

// Find resolves a dish phrase to a menu item. Exact case-insensitive match on
// either name wins; otherwise the phrase matches a key when one contains the
// other, first registered key winning.
func (ix *Index) Find(phrase string) *models.MenuItem {
	q := normalize(phrase)
	if q == "" {
		return nil
	}

	if item, ok := ix.byKey[q]; ok {
		return item
	}

	for _, key := range ix.keys {
		if strings.Contains(key, q) || strings.Contains(q, key) {
			return ix.byKey[key]
		}
	}
	return nil
}

// Len reports the number of distinct lookup keys.
func (ix *Index) Len() int { return len(ix.keys) }

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
