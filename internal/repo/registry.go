package repo

import (
	"reflect"
	"sync"

	"gorm.io/gorm"
)

// Registry holds at most one instance per concrete repository type. It is
// built once at startup and passed to whatever needs repositories, so every
// caller shares the same instance (and therefore the same prefix cache).
type Registry struct {
	db            *gorm.DB
	defaultPrefix string

	mu    sync.Mutex
	items map[reflect.Type]any
}

// NewRegistry returns an empty registry over db. defaultPrefix is the prefix
// new communities start with.
func NewRegistry(db *gorm.DB, defaultPrefix string) *Registry {
	return &Registry{db: db, defaultPrefix: defaultPrefix, items: make(map[reflect.Type]any)}
}

// DB returns the shared database handle.
func (reg *Registry) DB() *gorm.DB { return reg.db }

// DefaultPrefix returns the prefix new communities start with.
func (reg *Registry) DefaultPrefix() string { return reg.defaultPrefix }

// Resolve returns the registered R, building it on first use. If two callers
// race on the first build, both receive the instance that was stored first.
func Resolve[R any](reg *Registry, build func(db *gorm.DB) (R, error)) (R, error) {
	key := reflect.TypeOf((*R)(nil)).Elem()

	reg.mu.Lock()
	if v, ok := reg.items[key]; ok {
		reg.mu.Unlock()
		return v.(R), nil
	}
	reg.mu.Unlock()

	built, err := build(reg.db)
	if err != nil {
		var zero R
		return zero, err
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if v, ok := reg.items[key]; ok {
		return v.(R), nil
	}
	reg.items[key] = built
	return built, nil
}

// Communities returns the shared CommunityRepository.
func Communities(reg *Registry) (*CommunityRepository, error) {
	return Resolve(reg, func(db *gorm.DB) (*CommunityRepository, error) {
		return NewCommunityRepository(db, reg.defaultPrefix)
	})
}

// CustomCommands returns the shared CustomCommandRepository.
func CustomCommands(reg *Registry) (*CustomCommandRepository, error) {
	return Resolve(reg, NewCustomCommandRepository)
}

// RoleLinks returns the shared RoleLinkRepository.
func RoleLinks(reg *Registry) (*RoleLinkRepository, error) {
	return Resolve(reg, NewRoleLinkRepository)
}
