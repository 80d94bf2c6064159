package services

import (
	"context"
	"errors"
	"fmt"

	"content-qa-cms/config"
	"content-qa-cms/events"
	"content-qa-cms/helper"
	"content-qa-cms/i18n"
	"content-qa-cms/models"
	"content-qa-cms/repositories"
	"content-qa-cms/rules"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
)

// Record is an item bound to the definition of its item type.
type Record interface {
	Item() *models.Item
	Definition() rules.Definition
}

// QaTrackable records keep a QA state companion and write a changeset on every save.
type QaTrackable interface {
	Record
	QaState() *models.QaState
}

type record struct {
	item *models.Item
	def  rules.Definition
}

func (r record) Item() *models.Item           { return r.item }
func (r record) Definition() rules.Definition { return r.def }

type trackedRecord struct {
	record
}

func (r trackedRecord) QaState() *models.QaState { return r.item.QaState }

type QaStateService interface {
	Bind(item *models.Item) (Record, error)
	Load(ctx context.Context, itemID uint) (Record, error)

	ChangeStatus(ctx context.Context, itemID uint, status string) error
	SetPermissions(ctx context.Context, itemID uint, allowReview, allowPublish *bool) error
	Publish(ctx context.Context, itemID uint) error
	Unpublish(ctx context.Context, itemID uint) error

	SaveWithChangeSet(ctx context.Context, rec QaTrackable, actorID *uint) bool
	SaveAppropriately(ctx context.Context, rec Record, actorID *uint) bool
	RefreshQaState(ctx context.Context, rec QaTrackable) error

	IsPublishable(ctx context.Context, rec Record) (bool, error)
	IsUnpublishable(ctx context.Context, rec Record) (bool, error)
	IsPublished(ctx context.Context, rec Record) (bool, error)
	IsVisible(ctx context.Context, rec Record) (bool, error)
	BelongsToAtLeastOneGroup(ctx context.Context, rec Record) (bool, error)
	BelongsToGroup(ctx context.Context, rec Record, name string) (bool, error)
	MakeNodeHasGroupVisible(ctx context.Context, rec Record) (int64, error)
	MakeNodeHasGroupHidden(ctx context.Context, rec Record) (int64, error)

	Rules(rec Record) []rules.Rule
	Session(rec Record) *rules.ProgressSession
	ValidationProgress(rec Record, scenario rules.Scenario) int
	InvalidFields(rec Record, scenario rules.Scenario) []string
	ValidationMessages(rec Record, scenario rules.Scenario) models.FieldErrors
	SessionMessages(session *rules.ProgressSession, scenario rules.Scenario) models.FieldErrors
	Changesets(ctx context.Context, rec Record) ([]models.Changeset, error)
}

type qaStateService struct {
	tx          repositories.Transactor
	definitions *config.Definitions
	languages   []string
	validator   *rules.Validator
	translator  *i18n.Translator
	locale      string
	publisher   events.ChangesetPublisher
	log         zerolog.Logger
}

func NewQaStateService(
	tx repositories.Transactor,
	definitions *config.Definitions,
	translator *i18n.Translator,
	locale string,
	publisher events.ChangesetPublisher,
	log zerolog.Logger,
) QaStateService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &qaStateService{
		tx:          tx,
		definitions: definitions,
		languages:   definitions.TranslationLanguages(),
		validator:   rules.NewValidator(),
		translator:  translator,
		locale:      locale,
		publisher:   publisher,
		log:         log.With().Str("component", "qa_state").Logger(),
	}
}

func (s *qaStateService) Bind(item *models.Item) (Record, error) {
	def, ok := s.definitions.Lookup(item.Type)
	if !ok {
		return nil, models.ErrorBadRequest{Message: fmt.Sprintf("unknown item type %q", item.Type)}
	}
	rec := record{item: item, def: def}
	if def.Preparable {
		return trackedRecord{rec}, nil
	}
	return rec, nil
}

func (s *qaStateService) Load(ctx context.Context, itemID uint) (Record, error) {
	return s.load(s.tx.WithContext(ctx), itemID)
}

func (s *qaStateService) load(repos repositories.Repositories, itemID uint) (Record, error) {
	item, err := findItem(repos, itemID)
	if err != nil {
		return nil, err
	}
	return s.Bind(item)
}

// companion returns the stored QA state of a tracked record.
func (s *qaStateService) companion(repos repositories.Repositories, rec Record) (QaTrackable, *models.QaState, error) {
	tracked, ok := rec.(QaTrackable)
	if !ok {
		item := rec.Item()
		return nil, nil, &models.MissingAttribute{Model: item.Type, Attribute: helper.Underscore(item.Type) + "_qa_state_id"}
	}
	item := tracked.Item()
	if item.QaStateID == nil {
		return nil, nil, models.ErrorConflict{Message: fmt.Sprintf("%s has not been saved with a QA state yet", item.Label())}
	}
	state, err := repos.QaStates.GetByID(*item.QaStateID)
	if err != nil {
		return nil, nil, fmt.Errorf("load qa state of %s: %w", item.Label(), err)
	}
	item.QaState = state
	return tracked, state, nil
}

func (s *qaStateService) ChangeStatus(ctx context.Context, itemID uint, status string) error {
	newStatus, err := models.ParseQaStatus(status)
	if err != nil {
		return models.ErrorBadRequest{Message: err.Error()}
	}

	repos := s.tx.WithContext(ctx)
	rec, err := s.load(repos, itemID)
	if err != nil {
		return err
	}
	_, state, err := s.companion(repos, rec)
	if err != nil {
		return err
	}

	if tier, ok := newStatus.Tier(); ok {
		scenario := rules.TransitionScenario(tier)
		failures := s.validator.Check(s.Rules(rec), s.snapshot(rec.Item(), state), scenario)
		if len(failures) > 0 {
			return &models.TransitionDenied{
				From:   state.Status,
				To:     newStatus,
				Reason: s.translator.Failure(s.locale, failures[0], scenario),
			}
		}
	}

	from := state.Status
	state.Status = newStatus
	if err := repos.QaStates.Save(state); err != nil {
		return &models.SaveFailure{Model: fmt.Sprintf("QaState #%d", state.ID), Err: err}
	}

	s.log.Info().Str("item", rec.Item().Label()).Str("from", string(from)).Str("to", string(newStatus)).Msg("status changed")
	return nil
}

func (s *qaStateService) SetPermissions(ctx context.Context, itemID uint, allowReview, allowPublish *bool) error {
	repos := s.tx.WithContext(ctx)
	rec, err := s.load(repos, itemID)
	if err != nil {
		return err
	}
	_, state, err := s.companion(repos, rec)
	if err != nil {
		return err
	}

	if allowReview != nil {
		state.AllowReview = *allowReview
	}
	if allowPublish != nil {
		state.AllowPublish = *allowPublish
	}
	if err := repos.QaStates.Save(state); err != nil {
		return &models.SaveFailure{Model: fmt.Sprintf("QaState #%d", state.ID), Err: err}
	}
	return nil
}

// Publish makes the item visible in all of its groups and marks it published.
func (s *qaStateService) Publish(ctx context.Context, itemID uint) error {
	rec, err := s.Load(ctx, itemID)
	if err != nil {
		return err
	}
	ok, err := s.IsPublishable(ctx, rec)
	if err != nil {
		return err
	}
	if !ok {
		return models.ErrorConflict{Message: fmt.Sprintf("%s is not publishable", rec.Item().Label())}
	}
	return s.setPublished(ctx, rec, models.VisibilityVisible, models.QaStatusPublished)
}

// Unpublish hides the item in all of its groups and returns it to publishable.
func (s *qaStateService) Unpublish(ctx context.Context, itemID uint) error {
	rec, err := s.Load(ctx, itemID)
	if err != nil {
		return err
	}
	ok, err := s.IsUnpublishable(ctx, rec)
	if err != nil {
		return err
	}
	if !ok {
		return models.ErrorConflict{Message: fmt.Sprintf("%s is not published", rec.Item().Label())}
	}
	return s.setPublished(ctx, rec, models.VisibilityHidden, models.QaStatusPublishable)
}

func (s *qaStateService) setPublished(ctx context.Context, rec Record, visibility string, status models.QaStatus) error {
	return s.tx.WithinTransaction(ctx, func(repos repositories.Repositories) error {
		if _, err := s.setVisibility(repos, rec, visibility); err != nil {
			return err
		}
		if _, tracked := rec.(QaTrackable); !tracked {
			return nil
		}
		_, state, err := s.companion(repos, rec)
		if err != nil {
			return err
		}
		state.Status = status
		return repos.QaStates.Save(state)
	})
}

func (s *qaStateService) SaveAppropriately(ctx context.Context, rec Record, actorID *uint) bool {
	if tracked, ok := rec.(QaTrackable); ok {
		return s.SaveWithChangeSet(ctx, tracked, actorID)
	}
	return s.save(ctx, rec)
}

func (s *qaStateService) save(ctx context.Context, rec Record) bool {
	item := rec.Item()
	item.ClearErrors()

	if errs := s.ValidationMessages(rec, item.Scenario); len(errs) > 0 {
		s.attachFailure(item, &models.SaveFailure{Model: item.Label(), Errors: errs})
		return false
	}
	if err := s.persist(s.tx.WithContext(ctx), item); err != nil {
		s.attachFailure(item, &models.SaveFailure{Model: item.Label(), Err: err})
		return false
	}
	return true
}

// SaveWithChangeSet validates and saves the item, refreshes its QA state and
// records the difference as a changeset, all in one transaction. Failures
// roll back and end up in the item's errors under "id".
func (s *qaStateService) SaveWithChangeSet(ctx context.Context, rec QaTrackable, actorID *uint) bool {
	item := rec.Item()
	item.ClearErrors()
	original := *item

	var changeset *models.Changeset
	var diff map[string]any

	err := s.tx.WithinTransaction(ctx, func(repos repositories.Repositories) error {
		state, err := s.ensureQaState(repos, item)
		if err != nil {
			return err
		}
		if err := s.ensureNode(repos, item); err != nil {
			return err
		}

		before := state.Attributes()

		if errs := s.ValidationMessages(rec, item.Scenario); len(errs) > 0 {
			return &models.SaveFailure{Model: item.Label(), Errors: errs}
		}
		if err := s.persist(repos, item); err != nil {
			return &models.SaveFailure{Model: item.Label(), Err: err}
		}

		s.refresh(rec, state)
		if err := repos.QaStates.Save(state); err != nil {
			return &models.SaveFailure{Model: fmt.Sprintf("QaState #%d", state.ID), Err: err}
		}

		after := state.Attributes()
		diff = models.DiffAttributes(before, after)

		changeset, err = models.NewChangeset(models.ChangesetContents{Before: before, After: after, Diff: diff}, actorID, *item.NodeID)
		if err != nil {
			return err
		}
		if err := repos.Changesets.Create(changeset); err != nil {
			return &models.SaveFailure{Model: "Changeset", Err: err}
		}
		return nil
	})
	if err != nil {
		item.ID = original.ID
		item.NodeID = original.NodeID
		item.QaStateID = original.QaStateID
		item.QaState = original.QaState
		item.CreatedAt = original.CreatedAt
		item.UpdatedAt = original.UpdatedAt
		s.log.Warn().Err(err).Str("item", item.Label()).Msg("save with changeset rolled back")
		s.attachFailure(item, err)
		return false
	}

	s.log.Debug().
		Str("item", item.Label()).
		Uint("changeset_id", changeset.ID).
		RawJSON("contents", []byte(changeset.Contents)).
		Msg("changeset saved")

	s.publisher.PublishChangeset(ctx, events.ChangesetEvent{
		ChangesetID: changeset.ID,
		NodeID:      changeset.NodeID,
		UserID:      actorID,
		ItemID:      item.ID,
		ItemType:    item.Type,
		Diff:        diff,
		OccurredAt:  changeset.CreatedAt,
	})
	return true
}

func (s *qaStateService) attachFailure(item *models.Item, err error) {
	var failure *models.SaveFailure
	if errors.As(err, &failure) {
		for field, msgs := range failure.Errors {
			for _, msg := range msgs {
				item.AddError(field, msg)
			}
		}
	}
	item.AddError(rules.IdentityField, err.Error())
}

func (s *qaStateService) ensureQaState(repos repositories.Repositories, item *models.Item) (*models.QaState, error) {
	if item.QaStateID != nil {
		state, err := repos.QaStates.GetByID(*item.QaStateID)
		if err != nil {
			return nil, fmt.Errorf("reload qa state of %s: %w", item.Label(), err)
		}
		item.QaState = state
		return state, nil
	}

	state := models.NewQaState()
	if err := repos.QaStates.Create(state); err != nil {
		return nil, fmt.Errorf("create qa state of %s: %w", item.Label(), err)
	}
	item.QaStateID = &state.ID
	item.QaState = state
	return state, nil
}

func (s *qaStateService) ensureNode(repos repositories.Repositories, item *models.Item) error {
	if item.NodeID != nil {
		return nil
	}
	node := &models.Node{}
	if err := repos.Nodes.Create(node); err != nil {
		return fmt.Errorf("create node of %s: %w", item.Label(), err)
	}
	item.NodeID = &node.ID
	return nil
}

func (s *qaStateService) persist(repos repositories.Repositories, item *models.Item) error {
	if item.ID == 0 {
		return repos.Items.Create(item)
	}
	return repos.Items.Save(item)
}

// refresh recomputes the progress columns from the item's current values.
func (s *qaStateService) refresh(rec Record, state *models.QaState) {
	session := rules.NewProgressSession(s.validator, s.Rules(rec), s.snapshot(rec.Item(), state))

	state.DraftValidationProgress = session.Progress(rules.StatusScenario(rules.StatusDraft))
	state.ReviewableValidationProgress = session.Progress(rules.StatusScenario(rules.StatusReviewable))
	state.PublishableValidationProgress = session.Progress(rules.StatusScenario(rules.StatusPublishable))

	progress := make(datatypes.JSONMap, len(s.languages))
	for _, lang := range s.languages {
		progress[lang] = session.Progress(rules.TranslateScenario(lang))
	}
	state.TranslationProgress = progress
}

func (s *qaStateService) RefreshQaState(ctx context.Context, rec QaTrackable) error {
	repos := s.tx.WithContext(ctx)
	_, state, err := s.companion(repos, rec)
	if err != nil {
		return err
	}
	s.refresh(rec, state)
	if err := repos.QaStates.Save(state); err != nil {
		return &models.SaveFailure{Model: fmt.Sprintf("QaState #%d", state.ID), Err: err}
	}
	return nil
}

func (s *qaStateService) IsPublishable(ctx context.Context, rec Record) (bool, error) {
	// only preparable items go through QA
	if _, tracked := rec.(QaTrackable); !tracked {
		return false, nil
	}
	if len(s.InvalidFields(rec, rules.StatusScenario(rules.StatusPublishable))) > 0 {
		return false, nil
	}
	belongs, err := s.BelongsToAtLeastOneGroup(ctx, rec)
	if err != nil || !belongs {
		return false, err
	}
	published, err := s.IsPublished(ctx, rec)
	if err != nil {
		return false, err
	}
	return !published, nil
}

func (s *qaStateService) IsUnpublishable(ctx context.Context, rec Record) (bool, error) {
	belongs, err := s.BelongsToAtLeastOneGroup(ctx, rec)
	if err != nil || !belongs {
		return false, err
	}
	return s.IsPublished(ctx, rec)
}

func (s *qaStateService) IsPublished(ctx context.Context, rec Record) (bool, error) {
	return s.IsVisible(ctx, rec)
}

func (s *qaStateService) IsVisible(ctx context.Context, rec Record) (bool, error) {
	nodeID := rec.Item().NodeID
	if nodeID == nil {
		return false, nil
	}
	joins, err := s.tx.WithContext(ctx).Groups.JoinsForNode(*nodeID, models.VisibilityVisible)
	if err != nil {
		return false, err
	}
	return len(joins) > 0, nil
}

func (s *qaStateService) BelongsToAtLeastOneGroup(ctx context.Context, rec Record) (bool, error) {
	groups, err := s.groups(ctx, rec)
	return len(groups) > 0, err
}

func (s *qaStateService) BelongsToGroup(ctx context.Context, rec Record, name string) (bool, error) {
	groups, err := s.groups(ctx, rec)
	if err != nil {
		return false, err
	}
	for _, group := range groups {
		if group.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (s *qaStateService) groups(ctx context.Context, rec Record) ([]models.Group, error) {
	nodeID := rec.Item().NodeID
	if nodeID == nil {
		return nil, nil
	}
	return s.tx.WithContext(ctx).Groups.GroupsForNode(*nodeID)
}

func (s *qaStateService) MakeNodeHasGroupVisible(ctx context.Context, rec Record) (int64, error) {
	return s.setVisibility(s.tx.WithContext(ctx), rec, models.VisibilityVisible)
}

func (s *qaStateService) MakeNodeHasGroupHidden(ctx context.Context, rec Record) (int64, error) {
	return s.setVisibility(s.tx.WithContext(ctx), rec, models.VisibilityHidden)
}

func (s *qaStateService) setVisibility(repos repositories.Repositories, rec Record, visibility string) (int64, error) {
	nodeID := rec.Item().NodeID
	if nodeID == nil {
		return 0, nil
	}
	return repos.Groups.SetVisibility(*nodeID, visibility)
}

func (s *qaStateService) Rules(rec Record) []rules.Rule {
	return rules.Derive(rec.Definition(), s.languages, rec.Item().Values())
}

// Session starts a progress session over the record's current values.
func (s *qaStateService) Session(rec Record) *rules.ProgressSession {
	item := rec.Item()
	return rules.NewProgressSession(s.validator, s.Rules(rec), s.snapshot(item, item.QaState))
}

func (s *qaStateService) ValidationProgress(rec Record, scenario rules.Scenario) int {
	return s.Session(rec).Progress(scenario)
}

func (s *qaStateService) InvalidFields(rec Record, scenario rules.Scenario) []string {
	return s.Session(rec).InvalidFields(scenario)
}

func (s *qaStateService) ValidationMessages(rec Record, scenario rules.Scenario) models.FieldErrors {
	return s.SessionMessages(s.Session(rec), scenario)
}

// SessionMessages renders the failures of a session, so callers that already
// hold one do not validate the snapshot again.
func (s *qaStateService) SessionMessages(session *rules.ProgressSession, scenario rules.Scenario) models.FieldErrors {
	failures := session.Failures(scenario)
	if len(failures) == 0 {
		return nil
	}
	errs := make(models.FieldErrors, len(failures))
	for _, f := range failures {
		errs[f.Field] = append(errs[f.Field], s.translator.Failure(s.locale, f, scenario))
	}
	return errs
}

func (s *qaStateService) Changesets(ctx context.Context, rec Record) ([]models.Changeset, error) {
	nodeID := rec.Item().NodeID
	if nodeID == nil {
		return []models.Changeset{}, nil
	}
	return s.tx.WithContext(ctx).Changesets.ListByNode(*nodeID)
}

func (s *qaStateService) snapshot(item *models.Item, state *models.QaState) rules.Snapshot {
	snap := rules.Snapshot{Values: item.Values()}
	if state != nil {
		snap.AllowReview = state.AllowReview
		snap.AllowPublish = state.AllowPublish
	}
	return snap
}
