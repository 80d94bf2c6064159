package services

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"content-qa-cms/config"
	"content-qa-cms/events"
	"content-qa-cms/i18n"
	"content-qa-cms/models"
	"content-qa-cms/repositories"
	"content-qa-cms/repositories/repotest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testDefinitions = `
source_language: en
languages: [en, de]
item_types:
  - name: Article
    preparable: true
    flow_steps:
      - id: "1"
        fields: [a, b]
      - id: "2"
        fields: [c]
    status_requirements:
      draft: [a]
      reviewable: [a, b]
      publishable: [a, b, c]
    translatable:
      - field: a
  - name: Media
    preparable: false
    flow_steps:
      - id: upload
        fields: [file_name]
`

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ChangesetEvent
}

func (p *recordingPublisher) PublishChangeset(_ context.Context, event events.ChangesetEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

type fixture struct {
	ctx       context.Context
	db        *gorm.DB
	repos     repositories.Repositories
	qa        QaStateService
	items     ItemService
	groups    GroupService
	publisher *recordingPublisher
	logs      *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := repotest.Open(t)
	defs, err := config.ParseDefinitions([]byte(testDefinitions))
	require.NoError(t, err)
	translator, err := i18n.New()
	require.NoError(t, err)

	tx := repositories.NewTransactor(db)
	publisher := &recordingPublisher{}
	logs := &bytes.Buffer{}
	qa := NewQaStateService(tx, defs, translator, "en", publisher, zerolog.New(logs).Level(zerolog.DebugLevel))

	return &fixture{
		ctx:       context.Background(),
		db:        db,
		repos:     repositories.NewRepositories(db),
		qa:        qa,
		items:     NewItemService(qa, tx, defs),
		groups:    NewGroupService(repositories.NewGroupRepository(db), tx),
		publisher: publisher,
		logs:      logs,
	}
}

// article saves a new tracked item with the given fields.
func (f *fixture) article(t *testing.T, fields map[string]any) QaTrackable {
	t.Helper()

	item := &models.Item{Type: "Article", AuthorID: 1, Fields: fields}
	rec, err := f.qa.Bind(item)
	require.NoError(t, err)
	tracked, ok := rec.(QaTrackable)
	require.True(t, ok)

	require.True(t, f.qa.SaveWithChangeSet(f.ctx, tracked, nil), item.Errors)
	return tracked
}

func (f *fixture) reload(t *testing.T, id uint) Record {
	t.Helper()
	rec, err := f.qa.Load(f.ctx, id)
	require.NoError(t, err)
	return rec
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func failOn(t *testing.T, db *gorm.DB, op string, table string) {
	t.Helper()
	fail := func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			tx.AddError(errors.New("disk full"))
		}
	}
	switch op {
	case "create":
		require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_"+table, fail))
	case "update":
		require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:fail_"+table, fail))
	}
}

func ptr[T any](v T) *T { return &v }
