package repositories

import (
	stderrors "errors"

	"github.com/dgraph-io/badger/v4"
)

const themeKey = "pref:theme"

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// PreferenceRepository persists UI preferences. Only the theme exists today.
type PreferenceRepository struct {
	db *badger.DB
}

func NewPreferenceRepository(db *badger.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

func (p PreferenceRepository) SaveTheme(theme string) error {
	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(themeKey), []byte(theme))
	})
}

// LoadTheme returns the persisted theme, defaulting to light.
func (p PreferenceRepository) LoadTheme() (string, error) {
	theme := ThemeLight
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(themeKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			theme = string(val)
			return nil
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return ThemeLight, nil
	}
	if err != nil {
		return "", err
	}
	return theme, nil
}

// ToggleTheme flips light/dark and persists the result.
func (p PreferenceRepository) ToggleTheme() (string, error) {
	current, err := p.LoadTheme()
	if err != nil {
		return "", err
	}
	next := ThemeDark
	if current == ThemeDark {
		next = ThemeLight
	}
	if err := p.SaveTheme(next); err != nil {
		return "", err
	}
	return next, nil
}
