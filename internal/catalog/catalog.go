package catalog

import (
	"context"
	"sync"

	"goodfork/internal/domain"
	"goodfork/internal/models"
)

var ErrMenuNotFound = domain.NotFound("menu not found")

// Catalog serves menu definitions carried in config. Menu CRUD is owned by
// the back office; this core only reads prices and ingredient lists.
type Catalog struct {
	mu    sync.RWMutex
	menus map[int64]models.Menu
}

func New(menus []models.Menu) *Catalog {
	c := &Catalog{menus: make(map[int64]models.Menu, len(menus))}
	for _, m := range menus {
		c.menus[m.ID] = m
	}
	return c
}

// SetMenus replaces the catalog contents, e.g. after a config reload.
func (c *Catalog) SetMenus(menus []models.Menu) {
	next := make(map[int64]models.Menu, len(menus))
	for _, m := range menus {
		next[m.ID] = m
	}
	c.mu.Lock()
	c.menus = next
	c.mu.Unlock()
}

func (c *Catalog) GetMenu(ctx context.Context, id int64) (*models.Menu, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	menu, ok := c.menus[id]
	if !ok {
		return nil, ErrMenuNotFound
	}
	return &menu, nil
}

func (c *Catalog) GetMenuIngredients(ctx context.Context, id int64) ([]models.Ingredient, error) {
	menu, err := c.GetMenu(ctx, id)
	if err != nil {
		return nil, err
	}
	return menu.Ingredients, nil
}
