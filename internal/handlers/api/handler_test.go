package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	mockrules "github.com/greyhelm/charkeep/internal/clients/rules/mock"
	mockdice "github.com/greyhelm/charkeep/internal/dice/mock"
	"github.com/greyhelm/charkeep/internal/domain/character"
	"github.com/greyhelm/charkeep/internal/domain/progression"
	"github.com/greyhelm/charkeep/internal/domain/rulebook"
	"github.com/greyhelm/charkeep/internal/domain/shared"
	"github.com/greyhelm/charkeep/internal/handlers/api"
	"github.com/greyhelm/charkeep/internal/repositories/characters"
	progressionService "github.com/greyhelm/charkeep/internal/services/progression"
)

type HandlerTestSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	mockRules *mockrules.MockClient
	repo      *characters.InMemoryRepository
	roller    *mockdice.ManualMockRoller
	router    *gin.Engine
	ctx       context.Context

	fighter *rulebook.Class
}

func (s *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.ctrl = gomock.NewController(s.T())
	s.mockRules = mockrules.NewMockClient(s.ctrl)
	s.repo = characters.NewInMemoryRepository()
	s.roller = mockdice.NewManualMockRoller()
	s.ctx = context.Background()

	service := progressionService.NewService(&progressionService.ServiceConfig{
		RulesClient: s.mockRules,
		Repository:  s.repo,
	})

	handler := api.NewHandler(&api.HandlerConfig{
		Service: service,
		Roller:  s.roller,
	})

	s.router = gin.New()
	handler.Register(s.router)

	s.fighter = &rulebook.Class{
		Key:       "fighter",
		Name:      "Fighter",
		HitDie:    10,
		ASILevels: []int{4, 6, 8, 12, 14, 16, 19},
	}

	char := &character.Character{
		ID:      "char-1",
		OwnerID: "owner-1",
		Name:    "Bruenor",
		Attributes: map[shared.Attribute]*character.AbilityScore{
			shared.AttributeStrength:     {Score: 16},
			shared.AttributeConstitution: {Score: 14},
		},
		Classes: []*character.CharacterClass{
			{ClassKey: "fighter", ClassName: "Fighter", Level: 3, HitDie: 10, SubclassKey: "champion"},
		},
		MaxHitPoints:     28,
		CurrentHitPoints: 28,
	}
	s.Require().NoError(s.repo.Create(s.ctx, char))
}

func (s *HandlerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) expectFighterLevel4() {
	s.mockRules.EXPECT().GetClass(gomock.Any(), "fighter").Return(s.fighter, nil).AnyTimes()
	s.mockRules.EXPECT().ListFeats(gomock.Any()).Return(nil, nil)
	s.mockRules.EXPECT().GetClassLevel(gomock.Any(), "fighter", 4).Return(&rulebook.ClassLevel{
		ClassKey: "fighter",
		Level:    4,
	}, nil)
}

func (s *HandlerTestSuite) TestGetLevelUpSteps() {
	s.expectFighterLevel4()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/characters/char-1/levelup/steps", nil)
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)

	var body struct {
		ClassKey string                 `json:"class_key"`
		NewLevel int                    `json:"new_level"`
		Steps    []progression.StepData `json:"steps"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal("fighter", body.ClassKey)
	s.Equal(4, body.NewLevel)
	s.Require().Len(body.Steps, 2)
	s.Equal(progression.StepTypeHitPoints, body.Steps[0].Type)
	s.Equal(progression.StepTypeFeatOrASI, body.Steps[1].Type)
}

func (s *HandlerTestSuite) TestGetLevelUpSteps_NotFound() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/characters/missing/levelup/steps", nil)
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerTestSuite) TestGetMulticlassOptions() {
	wizard := &rulebook.Class{
		Key:    "wizard",
		Name:   "Wizard",
		HitDie: 6,
		MulticlassRequirements: []rulebook.MulticlassRequirement{
			{Abilities: []shared.Attribute{shared.AttributeIntelligence}, MinimumScore: 13},
		},
	}
	s.mockRules.EXPECT().ListClasses(gomock.Any()).Return([]*rulebook.Class{s.fighter, wizard}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/characters/char-1/levelup/multiclass-options", nil)
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)

	var body progressionService.GetMulticlassOptionsOutput
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal("char-1", body.CharacterID)
	s.Require().Len(body.Options, 2)
	s.True(body.Options[0].Held)
	s.True(body.Options[0].Allowed)
	s.False(body.Options[1].Allowed)
	s.NotEmpty(body.Options[1].Reason)
}

func (s *HandlerTestSuite) confirmBody(choices []progression.Choice) []byte {
	envelope := make([]progression.ChoiceData, 0, len(choices))
	for _, c := range choices {
		data, err := progression.ChoiceToData(c)
		s.Require().NoError(err)
		envelope = append(envelope, data)
	}

	payload, err := json.Marshal(map[string]any{
		"class_key": "fighter",
		"choices":   envelope,
	})
	s.Require().NoError(err)
	return payload
}

func (s *HandlerTestSuite) TestConfirmLevelUp() {
	s.expectFighterLevel4()

	body := s.confirmBody([]progression.Choice{
		&progression.HitPointsChoice{Method: progression.HPMethodFixed, Value: 6},
		&progression.FeatOrASIChoice{
			Kind:          progression.ChoiceKindASI,
			StatIncreases: map[shared.Attribute]int{shared.AttributeStrength: 2},
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/characters/char-1/levelup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)

	var response struct {
		Success   bool                 `json:"success"`
		Character *character.Character `json:"character"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	s.True(response.Success)
	s.Equal(4, response.Character.Class("fighter").Level)
	s.Equal(36, response.Character.MaxHitPoints)
}

func (s *HandlerTestSuite) TestConfirmLevelUp_ValidationFailure() {
	s.expectFighterLevel4()

	body := s.confirmBody([]progression.Choice{
		&progression.HitPointsChoice{Method: progression.HPMethodFixed, Value: 9},
		&progression.FeatOrASIChoice{
			Kind:          progression.ChoiceKindASI,
			StatIncreases: map[shared.Attribute]int{shared.AttributeStrength: 2},
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/characters/char-1/levelup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusUnprocessableEntity, w.Code)

	var response struct {
		Success  bool                  `json:"success"`
		Failures []progression.Failure `json:"failures"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	s.False(response.Success)
	s.Require().Len(response.Failures, 1)
	s.Equal(progression.StepTypeHitPoints, response.Failures[0].StepType)
}

func (s *HandlerTestSuite) TestConfirmLevelUp_MalformedBody() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/characters/char-1/levelup", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestRollHP() {
	s.roller.SetRolls([]int{7})

	payload, err := json.Marshal(map[string]int{"hit_die": 10})
	s.Require().NoError(err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/characters/char-1/levelup/roll-hp", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)

	var response struct {
		HitDie int `json:"hit_die"`
		Value  int `json:"value"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	s.Equal(10, response.HitDie)
	s.Equal(7, response.Value)
}

func (s *HandlerTestSuite) TestRollHP_RejectsBadDie() {
	payload, err := json.Marshal(map[string]int{"hit_die": 3})
	s.Require().NoError(err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/characters/char-1/levelup/roll-hp", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
}
