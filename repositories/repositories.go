package repositories

import (
	"context"

	"content-qa-cms/models"

	"gorm.io/gorm"
)

// Repositories bundles the repositories sharing one connection or transaction.
type Repositories struct {
	Users      UserRepository
	Items      ItemRepository
	QaStates   QaStateRepository
	Changesets ChangesetRepository
	Nodes      NodeRepository
	Groups     GroupRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:      NewUserRepository(db),
		Items:      NewItemRepository(db),
		QaStates:   NewQaStateRepository(db),
		Changesets: NewChangesetRepository(db),
		Nodes:      NewNodeRepository(db),
		Groups:     NewGroupRepository(db),
	}
}

type Transactor interface {
	// WithContext returns repositories bound to ctx outside any transaction.
	WithContext(ctx context.Context) Repositories
	// WithinTransaction commits when fn returns nil and rolls back otherwise.
	WithinTransaction(ctx context.Context, fn func(repos Repositories) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) WithContext(ctx context.Context) Repositories {
	return NewRepositories(t.db.WithContext(ctx))
}

func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(repos Repositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// AutoMigrate creates or updates every table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Node{},
		&models.Group{},
		&models.NodeHasGroup{},
		&models.QaState{},
		&models.Item{},
		&models.Changeset{},
	)
}
