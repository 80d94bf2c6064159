package services

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"content-qa-cms/config"
	"content-qa-cms/models"
	"content-qa-cms/repositories"
	"content-qa-cms/rules"

	"gorm.io/datatypes"
)

type ItemService interface {
	CreateItem(ctx context.Context, req models.CreateItemRequest, userID uint) (*models.ItemDetail, error)
	GetItem(ctx context.Context, id uint) (*models.ItemDetail, error)
	GetItems(ctx context.Context, params models.ItemListParams) ([]models.Item, int64, error)
	SaveStep(ctx context.Context, id uint, step string, req models.SaveStepRequest, userID uint) (*models.ItemDetail, error)
	SaveTranslationStep(ctx context.Context, id uint, language, step string, req models.SaveStepRequest, userID uint) (*models.ItemDetail, error)
	GetChangesets(ctx context.Context, id uint) ([]models.Changeset, error)
	GetProgress(ctx context.Context, id uint, scenario rules.Scenario) (*models.ProgressReport, error)
}

type itemService struct {
	qa          QaStateService
	tx          repositories.Transactor
	definitions *config.Definitions
}

func NewItemService(qa QaStateService, tx repositories.Transactor, definitions *config.Definitions) ItemService {
	return &itemService{
		qa:          qa,
		tx:          tx,
		definitions: definitions,
	}
}

func (s *itemService) CreateItem(ctx context.Context, req models.CreateItemRequest, userID uint) (*models.ItemDetail, error) {
	def, ok := s.definitions.Lookup(req.Type)
	if !ok {
		return nil, models.ErrorBadRequest{Message: fmt.Sprintf("unknown item type %q", req.Type)}
	}

	item := &models.Item{Type: def.Name, AuthorID: userID, Fields: datatypes.JSONMap{}}
	rec, err := s.qa.Bind(item)
	if err != nil {
		return nil, err
	}

	// New items start at the first step and are never blocked by requirements.
	var scenario rules.Scenario
	if step := rules.FirstFlowStep(def); step != "" {
		scenario = rules.StatusStepScenario(rules.StatusTemporary, step)
	}
	if err := s.assignAndSave(ctx, rec, scenario, req.Fields, userID); err != nil {
		return nil, err
	}
	return s.detail(ctx, rec)
}

func (s *itemService) GetItem(ctx context.Context, id uint) (*models.ItemDetail, error) {
	rec, err := s.qa.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, rec)
}

func (s *itemService) GetItems(ctx context.Context, params models.ItemListParams) ([]models.Item, int64, error) {
	if params.Status != "" {
		status, err := models.ParseQaStatus(params.Status)
		if err != nil {
			return nil, 0, models.ErrorBadRequest{Message: err.Error()}
		}
		params.Status = string(status)
	}
	return s.tx.WithContext(ctx).Items.GetList(params)
}

// SaveStep saves the fields of one flow step. Without a status the save is
// partial: it checks the step's own required fields and leaves other steps alone.
func (s *itemService) SaveStep(ctx context.Context, id uint, step string, req models.SaveStepRequest, userID uint) (*models.ItemDetail, error) {
	rec, err := s.qa.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, ok := rec.Definition().Step(step); !ok {
		return nil, models.ErrorNotFound{Message: fmt.Sprintf("%s has no step %q", rec.Item().Type, step)}
	}

	scenario := rules.StepScenario(step)
	if req.Status != "" {
		scenario = rules.StatusStepScenario(rules.Status(req.Status), step)
	}
	if err := s.assignAndSave(ctx, rec, scenario, req.Fields, userID); err != nil {
		return nil, err
	}
	return s.detail(ctx, rec)
}

func (s *itemService) SaveTranslationStep(ctx context.Context, id uint, language, step string, req models.SaveStepRequest, userID uint) (*models.ItemDetail, error) {
	if !slices.Contains(s.definitions.TranslationLanguages(), language) {
		return nil, models.ErrorBadRequest{Message: fmt.Sprintf("%q is not a translation language", language)}
	}
	rec, err := s.qa.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, ok := rec.Definition().Step(step); !ok {
		return nil, models.ErrorNotFound{Message: fmt.Sprintf("%s has no step %q", rec.Item().Type, step)}
	}

	if err := s.assignAndSave(ctx, rec, rules.TranslateStepScenario(language, step), req.Fields, userID); err != nil {
		return nil, err
	}
	return s.detail(ctx, rec)
}

func (s *itemService) assignAndSave(ctx context.Context, rec Record, scenario rules.Scenario, fields map[string]any, userID uint) error {
	item := rec.Item()
	item.Assign(fields, rules.SafeAttributes(s.qa.Rules(rec), scenario))
	item.Scenario = scenario

	if !s.qa.SaveAppropriately(ctx, rec, &userID) {
		return saveFailure(item)
	}
	return nil
}

// saveFailure turns the errors attached by a failed save back into an error.
func saveFailure(item *models.Item) error {
	errs := maps.Clone(item.Errors)
	if len(errs) > 1 {
		delete(errs, rules.IdentityField)
	}
	return &models.SaveFailure{Model: item.Label(), Errors: errs}
}

func (s *itemService) GetChangesets(ctx context.Context, id uint) ([]models.Changeset, error) {
	rec, err := s.qa.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.qa.Changesets(ctx, rec)
}

func (s *itemService) GetProgress(ctx context.Context, id uint, scenario rules.Scenario) (*models.ProgressReport, error) {
	rec, err := s.qa.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	session := s.qa.Session(rec)
	invalid := session.InvalidFields(scenario)
	if invalid == nil {
		invalid = []string{}
	}
	return &models.ProgressReport{
		Scenario:      scenario.String(),
		Progress:      session.Progress(scenario),
		InvalidFields: invalid,
		Messages:      s.qa.SessionMessages(session, scenario),
	}, nil
}

func (s *itemService) detail(ctx context.Context, rec Record) (*models.ItemDetail, error) {
	item := rec.Item()
	def := rec.Definition()
	values := item.Values()

	detail := &models.ItemDetail{
		Item:           item,
		Label:          item.Label(),
		Progress:       map[string]int{},
		FirstStep:      rules.FirstFlowStep(def),
		FirstTranslate: rules.FirstTranslationFlowStep(def, values),
		Routes:         map[string]map[string]any{},
	}

	session := s.qa.Session(rec)
	for _, step := range def.FlowSteps {
		scenario := rules.TotalProgressScenario(step.ID)
		detail.Progress[scenario.String()] = session.Progress(scenario)
	}
	detail.Routes["edit"] = ActionRoute(item, "edit", detail.FirstStep, "")

	if _, tracked := rec.(QaTrackable); !tracked {
		return detail, nil
	}

	for _, tier := range rules.Tiers {
		scenario := rules.StatusScenario(tier)
		detail.Progress[scenario.String()] = session.Progress(scenario)
	}
	for _, lang := range s.definitions.TranslationLanguages() {
		scenario := rules.TranslateScenario(lang)
		detail.Progress[scenario.String()] = session.Progress(scenario)
		detail.Routes[scenario.String()] = ActionRoute(item, "translate", detail.FirstTranslate, lang)
	}

	var err error
	if detail.IsPublishable, err = s.qa.IsPublishable(ctx, rec); err != nil {
		return nil, err
	}
	if detail.IsUnpublishable, err = s.qa.IsUnpublishable(ctx, rec); err != nil {
		return nil, err
	}
	if detail.IsPublished, err = s.qa.IsPublished(ctx, rec); err != nil {
		return nil, err
	}
	return detail, nil
}

// ActionRoute describes where a client continues editing an item.
func ActionRoute(item *models.Item, action, step, translateInto string) map[string]any {
	route := map[string]any{"action": action, "id": item.ID}
	path := fmt.Sprintf("/api/v1/items/%d", item.ID)
	if translateInto != "" {
		route["translate_into"] = translateInto
		path += "/translations/" + translateInto
	}
	if step != "" {
		route["step"] = step
		path += "/steps/" + step
	}
	route["path"] = path
	return route
}
