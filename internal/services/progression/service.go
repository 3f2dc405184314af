package progression

//go:generate mockgen -destination=mock/mock_service.go -package=mockprogression -source=service.go

import (
	"context"
	"fmt"
	"strings"

	"github.com/greyhelm/charkeep/internal/clients/rules"
	"github.com/greyhelm/charkeep/internal/domain/character"
	"github.com/greyhelm/charkeep/internal/domain/progression"
	apperrors "github.com/greyhelm/charkeep/internal/errors"
	"github.com/greyhelm/charkeep/internal/repositories/characters"
)

// RulesClient provides rules catalog lookups
type RulesClient = rules.Client

// Repository provides character persistence
type Repository = characters.Repository

// Service orchestrates character level-up progression
type Service interface {
	// GetLevelUpSteps resolves the ordered decisions for the character's
	// next level in the given class
	GetLevelUpSteps(ctx context.Context, input *GetLevelUpStepsInput) (*GetLevelUpStepsOutput, error)

	// ConfirmLevelUp validates the submitted choices and commits the
	// level-up in one call
	ConfirmLevelUp(ctx context.Context, input *ConfirmLevelUpInput) (*ConfirmLevelUpOutput, error)

	// ConfirmMulticlassLevelUp enters the character into a new class at
	// level 1, validating prerequisites along the way
	ConfirmMulticlassLevelUp(ctx context.Context, input *ConfirmMulticlassLevelUpInput) (*ConfirmLevelUpOutput, error)

	// GetMulticlassOptions lists every catalog class with the character's
	// eligibility to enter or advance it
	GetMulticlassOptions(ctx context.Context, input *GetMulticlassOptionsInput) (*GetMulticlassOptionsOutput, error)
}

// GetLevelUpStepsInput identifies the character and, optionally, which
// held class to advance. An empty ClassKey means the primary class.
type GetLevelUpStepsInput struct {
	CharacterID string
	ClassKey    string
}

// GetLevelUpStepsOutput carries the resolved step sequence
type GetLevelUpStepsOutput struct {
	CharacterID   string             `json:"character_id"`
	ClassKey      string             `json:"class_key"`
	ClassName     string             `json:"class_name"`
	NewLevel      int                `json:"new_level"`
	NewTotalLevel int                `json:"new_total_level"`
	Steps         []progression.Step `json:"steps"`
}

// ConfirmLevelUpInput carries the submitted choices for one level-up
type ConfirmLevelUpInput struct {
	CharacterID string
	ClassKey    string
	// NewLevel is the class level the client prepared choices for. Zero
	// means "whatever comes next"; any other value must match the
	// derived target or the confirm is rejected.
	NewLevel int
	Choices  []progression.Choice
}

// ConfirmMulticlassLevelUpInput names the class being entered
type ConfirmMulticlassLevelUpInput struct {
	CharacterID string
	NewClassKey string
	Choices     []progression.Choice
}

// ConfirmLevelUpOutput carries the committed character and the applied delta
type ConfirmLevelUpOutput struct {
	Character *character.Character `json:"character"`
	Result    *progression.Result  `json:"result"`
}

// GetMulticlassOptionsInput identifies the character considering a new class
type GetMulticlassOptionsInput struct {
	CharacterID string
}

// MulticlassOption reports one catalog class and whether the character may
// take a level in it
type MulticlassOption struct {
	ClassKey  string `json:"class_key"`
	ClassName string `json:"class_name"`
	HitDie    int    `json:"hit_die"`
	Held      bool   `json:"held"`
	Allowed   bool   `json:"allowed"`
	Reason    string `json:"reason,omitempty"`
}

// GetMulticlassOptionsOutput lists every class with entry eligibility
type GetMulticlassOptionsOutput struct {
	CharacterID string             `json:"character_id"`
	Options     []MulticlassOption `json:"options"`
}

// ValidationError carries every validation failure from a rejected confirm
type ValidationError struct {
	Failures []progression.Failure
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = fmt.Sprintf("%s: %s", f.StepType, f.Message)
	}
	return fmt.Sprintf("level-up validation failed: %s", strings.Join(msgs, "; "))
}

// ServiceConfig holds service dependencies
type ServiceConfig struct {
	RulesClient RulesClient
	Repository  Repository
}

type service struct {
	rules      RulesClient
	repository Repository
	aggregator *Aggregator
	resolver   *Resolver
	validator  *Validator
	committer  *Committer
}

// NewService creates a new progression service
func NewService(cfg *ServiceConfig) Service {
	if cfg == nil {
		panic("service config cannot be nil")
	}
	if cfg.Repository == nil {
		panic("character repository cannot be nil")
	}
	if cfg.RulesClient == nil {
		panic("rules client cannot be nil")
	}

	aggregator := NewAggregator(cfg.Repository, cfg.RulesClient)

	return &service{
		rules:      cfg.RulesClient,
		repository: cfg.Repository,
		aggregator: aggregator,
		resolver:   NewResolver(cfg.RulesClient, aggregator),
		validator:  NewValidator(),
		committer:  NewCommitter(cfg.Repository),
	}
}

func (s *service) GetLevelUpSteps(ctx context.Context, input *GetLevelUpStepsInput) (*GetLevelUpStepsOutput, error) {
	if input == nil || input.CharacterID == "" {
		return nil, apperrors.InvalidArgument("character ID is required")
	}

	char, err := s.repository.Get(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}

	classKey, targetLevel, err := s.resolveTarget(char, input.ClassKey)
	if err != nil {
		return nil, err
	}

	class, err := s.rules.GetClass(ctx, classKey)
	if err != nil {
		return nil, err
	}

	steps, err := s.resolver.ResolveSteps(ctx, char, classKey, targetLevel)
	if err != nil {
		return nil, err
	}

	return &GetLevelUpStepsOutput{
		CharacterID:   char.ID,
		ClassKey:      class.Key,
		ClassName:     class.Name,
		NewLevel:      targetLevel,
		NewTotalLevel: char.TotalLevel() + 1,
		Steps:         steps,
	}, nil
}

func (s *service) ConfirmLevelUp(ctx context.Context, input *ConfirmLevelUpInput) (*ConfirmLevelUpOutput, error) {
	if input == nil || input.CharacterID == "" {
		return nil, apperrors.InvalidArgument("character ID is required")
	}

	char, err := s.repository.Get(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}

	classKey, targetLevel, err := s.resolveTarget(char, input.ClassKey)
	if err != nil {
		return nil, err
	}
	if char.Class(classKey) == nil {
		return nil, apperrors.InvalidArgumentf(
			"character does not hold class '%s'; use the multiclass confirm to enter a new class", classKey)
	}
	if input.NewLevel != 0 && input.NewLevel != targetLevel {
		return nil, apperrors.InvalidLevelTransitionf(
			"confirm targets %s level %d but the next level is %d",
			classKey, input.NewLevel, targetLevel)
	}

	return s.confirm(ctx, char, classKey, targetLevel, input.Choices)
}

func (s *service) ConfirmMulticlassLevelUp(ctx context.Context, input *ConfirmMulticlassLevelUpInput) (*ConfirmLevelUpOutput, error) {
	if input == nil || input.CharacterID == "" {
		return nil, apperrors.InvalidArgument("character ID is required")
	}
	if input.NewClassKey == "" {
		return nil, apperrors.InvalidArgument("new class key is required")
	}

	char, err := s.repository.Get(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}
	if char.Class(input.NewClassKey) != nil {
		return nil, apperrors.InvalidArgumentf(
			"character already holds class '%s'; use the regular confirm to advance it", input.NewClassKey)
	}

	return s.confirm(ctx, char, input.NewClassKey, 1, input.Choices)
}

func (s *service) GetMulticlassOptions(ctx context.Context, input *GetMulticlassOptionsInput) (*GetMulticlassOptionsOutput, error) {
	if input == nil || input.CharacterID == "" {
		return nil, apperrors.InvalidArgument("character ID is required")
	}

	char, err := s.repository.Get(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}

	classes, err := s.rules.ListClasses(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list classes")
	}

	atCap := char.TotalLevel() >= character.MaxLevel

	options := make([]MulticlassOption, 0, len(classes))
	for _, class := range classes {
		option := MulticlassOption{
			ClassKey:  class.Key,
			ClassName: class.Name,
			HitDie:    class.HitDie,
		}

		switch {
		case atCap:
			option.Reason = fmt.Sprintf("character is already at level %d", character.MaxLevel)
		case char.Class(class.Key) != nil:
			// held classes advance through the regular confirm
			option.Held = true
			option.Allowed = true
		default:
			allowed, reason, err := s.aggregator.CheckMulticlassEntry(ctx, char, class)
			if err != nil {
				return nil, err
			}
			option.Allowed, option.Reason = allowed, reason
		}

		options = append(options, option)
	}

	return &GetMulticlassOptionsOutput{
		CharacterID: char.ID,
		Options:     options,
	}, nil
}

// confirm runs resolve, validate, commit against one character snapshot
func (s *service) confirm(ctx context.Context, char *character.Character, classKey string, targetLevel int, choices []progression.Choice) (*ConfirmLevelUpOutput, error) {
	class, err := s.rules.GetClass(ctx, classKey)
	if err != nil {
		return nil, err
	}

	steps, err := s.resolver.ResolveSteps(ctx, char, classKey, targetLevel)
	if err != nil {
		return nil, err
	}

	result, failures := s.validator.Validate(char, class, targetLevel, steps, choices)
	if len(failures) > 0 {
		return nil, &ValidationError{Failures: failures}
	}

	updated, err := s.committer.Commit(ctx, char.ID, result, char.Version)
	if err != nil {
		return nil, err
	}

	return &ConfirmLevelUpOutput{
		Character: updated,
		Result:    result,
	}, nil
}

// resolveTarget picks the class being advanced and the class level it
// advances to. A class the character does not hold targets level 1.
func (s *service) resolveTarget(char *character.Character, classKey string) (string, int, error) {
	if classKey == "" {
		primary := char.PrimaryClass()
		if primary == nil {
			return "", 0, apperrors.InvalidArgumentf("character '%s' has no classes", char.ID)
		}
		return primary.ClassKey, primary.Level + 1, nil
	}

	if held := char.Class(classKey); held != nil {
		return classKey, held.Level + 1, nil
	}
	return classKey, 1, nil
}

var _ Service = (*service)(nil)
