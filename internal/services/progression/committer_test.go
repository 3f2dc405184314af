package progression_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"golang.org/x/sync/errgroup"

	"github.com/greyhelm/charkeep/internal/domain/character"
	"github.com/greyhelm/charkeep/internal/domain/progression"
	"github.com/greyhelm/charkeep/internal/domain/rulebook"
	"github.com/greyhelm/charkeep/internal/domain/shared"
	apperrors "github.com/greyhelm/charkeep/internal/errors"
	"github.com/greyhelm/charkeep/internal/repositories/characters"
	mockcharacters "github.com/greyhelm/charkeep/internal/repositories/characters/mock"
	progressionService "github.com/greyhelm/charkeep/internal/services/progression"
)

type CommitterTestSuite struct {
	suite.Suite
	repo      *characters.InMemoryRepository
	committer *progressionService.Committer
	ctx       context.Context
	char      *character.Character
}

func (s *CommitterTestSuite) SetupTest() {
	s.repo = characters.NewInMemoryRepository()
	s.committer = progressionService.NewCommitter(s.repo)
	s.ctx = context.Background()

	s.char = &character.Character{
		ID:      "char-1",
		OwnerID: "owner-1",
		Name:    "Bruenor",
		Attributes: map[shared.Attribute]*character.AbilityScore{
			shared.AttributeStrength:     {Score: 16},
			shared.AttributeConstitution: {Score: 14},
		},
		Classes: []*character.CharacterClass{
			{ClassKey: "fighter", ClassName: "Fighter", Level: 3, HitDie: 10},
		},
		MaxHitPoints:     28,
		CurrentHitPoints: 25,
	}
	s.Require().NoError(s.repo.Create(s.ctx, s.char))
}

func TestCommitterSuite(t *testing.T) {
	suite.Run(t, new(CommitterTestSuite))
}

func (s *CommitterTestSuite) fighterLevel4() *progression.Result {
	return &progression.Result{
		ClassKey:      "fighter",
		ClassName:     "Fighter",
		NewClassLevel: 4,
		NewTotalLevel: 4,
		HitDie:        10,
		HPIncrease:    8,
		StatIncreases: map[shared.Attribute]int{shared.AttributeStrength: 2},
	}
}

func (s *CommitterTestSuite) TestCommit_IncrementsHeldClass() {
	updated, err := s.committer.Commit(s.ctx, "char-1", s.fighterLevel4(), 1)

	s.Require().NoError(err)
	s.Equal(4, updated.Class("fighter").Level)
	s.Equal(36, updated.MaxHitPoints)
	s.Equal(33, updated.CurrentHitPoints)
	s.Equal(18, updated.Attributes[shared.AttributeStrength].Score)
	s.Require().NotNil(updated.LastLevelUp)
	s.Equal("fighter", updated.LastLevelUp.ClassKey)
	s.Equal(4, updated.LastLevelUp.Level)

	stored, err := s.repo.Get(s.ctx, "char-1")
	s.Require().NoError(err)
	s.Equal(4, stored.Class("fighter").Level)
	s.Equal(int64(2), stored.Version)
}

func (s *CommitterTestSuite) TestCommit_MulticlassAppendsNewClass() {
	result := &progression.Result{
		ClassKey:      "wizard",
		ClassName:     "Wizard",
		NewClass:      true,
		NewClassLevel: 1,
		NewTotalLevel: 4,
		HitDie:        6,
		HPIncrease:    6,
		NewSpellKeys:  []string{"shield", "magic-missile"},
		GrantedProficiencies: []*rulebook.Proficiency{
			{Key: "daggers", Name: "Daggers", Type: rulebook.ProficiencyTypeWeapon},
		},
	}

	updated, err := s.committer.Commit(s.ctx, "char-1", result, 1)

	s.Require().NoError(err)
	s.Require().Len(updated.Classes, 2)
	s.Equal(3, updated.Class("fighter").Level)

	wizard := updated.Class("wizard")
	s.Require().NotNil(wizard)
	s.Equal(1, wizard.Level)
	s.Equal(6, wizard.HitDie)

	s.Equal([]string{"shield", "magic-missile"}, updated.KnownSpells["wizard"])
	s.True(updated.HasProficiency("daggers"))
}

func (s *CommitterTestSuite) TestCommit_RecordsSubclassFeatAndFeatures() {
	result := &progression.Result{
		ClassKey:      "fighter",
		ClassName:     "Fighter",
		NewClassLevel: 4,
		NewTotalLevel: 4,
		HPIncrease:    8,
		SubclassKey:   "champion",
		SubclassName:  "Champion",
		FeatKey:       "sentinel",
		FeatureKeys:   []string{"improved-critical"},
		OptionalSelections: map[string][]string{
			"fighting-style": {"defense"},
		},
	}

	updated, err := s.committer.Commit(s.ctx, "char-1", result, 1)

	s.Require().NoError(err)
	s.Equal("champion", updated.Class("fighter").SubclassKey)
	s.True(updated.HasFeat("sentinel"))
	s.True(updated.HasFeature("improved-critical"))
	s.True(updated.HasFeature("fighting-style:defense"))
}

func (s *CommitterTestSuite) TestCommit_RetryIsAlreadyApplied() {
	result := s.fighterLevel4()

	_, err := s.committer.Commit(s.ctx, "char-1", result, 1)
	s.Require().NoError(err)

	_, err = s.committer.Commit(s.ctx, "char-1", result, 1)
	s.Require().Error(err)
	s.True(apperrors.IsAlreadyApplied(err))

	stored, err := s.repo.Get(s.ctx, "char-1")
	s.Require().NoError(err)
	s.Equal(4, stored.Class("fighter").Level)
	s.Equal(36, stored.MaxHitPoints)
}

func (s *CommitterTestSuite) TestCommit_StaleSnapshotRejected() {
	result := s.fighterLevel4()

	// Another writer edits the character after the result was prepared
	// against version 1
	edited, err := s.repo.Get(s.ctx, "char-1")
	s.Require().NoError(err)
	edited.Attributes[shared.AttributeStrength].Score = 20
	s.Require().NoError(s.repo.UpdateWithVersion(s.ctx, edited, 1))

	_, err = s.committer.Commit(s.ctx, "char-1", result, 1)

	s.Require().Error(err)
	s.True(apperrors.IsConcurrencyConflict(err))

	stored, err := s.repo.Get(s.ctx, "char-1")
	s.Require().NoError(err)
	s.Equal(3, stored.Class("fighter").Level)
	s.Equal(20, stored.Attributes[shared.AttributeStrength].Score)
	s.Equal(int64(2), stored.Version)
}

func (s *CommitterTestSuite) TestCommit_ConcurrentDuplicatesApplyOnce() {
	result := s.fighterLevel4()

	var successes atomic.Int64
	group, ctx := errgroup.WithContext(s.ctx)

	for i := 0; i < 8; i++ {
		group.Go(func() error {
			_, err := s.committer.Commit(ctx, "char-1", result, 1)
			if err == nil {
				successes.Add(1)
				return nil
			}
			if apperrors.IsAlreadyApplied(err) || apperrors.IsConcurrencyConflict(err) {
				return nil
			}
			return err
		})
	}

	s.Require().NoError(group.Wait())
	s.Equal(int64(1), successes.Load())

	stored, err := s.repo.Get(s.ctx, "char-1")
	s.Require().NoError(err)
	s.Equal(4, stored.Class("fighter").Level)
	s.Equal(36, stored.MaxHitPoints)
	s.Equal(18, stored.Attributes[shared.AttributeStrength].Score)
}

func (s *CommitterTestSuite) TestCommit_ConflictWithoutMatchingRecordPropagates() {
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	mockRepo := mockcharacters.NewMockRepository(ctrl)
	committer := progressionService.NewCommitter(mockRepo)

	snapshot := s.char.Clone()
	snapshot.Version = 1

	mockRepo.EXPECT().Get(s.ctx, "char-1").Return(snapshot.Clone(), nil)
	mockRepo.EXPECT().UpdateWithVersion(s.ctx, gomock.Any(), int64(1)).
		Return(apperrors.ConcurrencyConflictf("character 'char-1' was modified concurrently"))
	// The re-fetch shows someone else's change, not this level-up
	conflicting := snapshot.Clone()
	conflicting.Version = 2
	conflicting.LastLevelUp = &character.LevelUpRecord{ClassKey: "rogue", Level: 1}
	mockRepo.EXPECT().Get(s.ctx, "char-1").Return(conflicting, nil)

	_, err := committer.Commit(s.ctx, "char-1", s.fighterLevel4(), 1)

	s.Require().Error(err)
	s.True(apperrors.IsConcurrencyConflict(err))
}

func (s *CommitterTestSuite) TestCommit_CharacterNotFound() {
	_, err := s.committer.Commit(s.ctx, "missing", s.fighterLevel4(), 1)

	s.Require().Error(err)
	s.True(apperrors.IsNotFound(err))
}
