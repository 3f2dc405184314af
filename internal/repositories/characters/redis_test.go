package characters_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/suite"

	"github.com/greyhelm/charkeep/internal/domain/character"
	apperrors "github.com/greyhelm/charkeep/internal/errors"
	"github.com/greyhelm/charkeep/internal/repositories/characters"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mock redismock.ClientMock
	repo characters.Repository
	ctx  context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	client, mock := redismock.NewClientMock()
	s.mock = mock
	s.repo = characters.NewRedisRepository(&characters.RedisRepoConfig{
		Client: client,
	})
	s.ctx = context.Background()
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func TestRedisRepositorySuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) storedCharacter() *character.Character {
	return &character.Character{
		ID:      "char-1",
		OwnerID: "owner-1",
		Name:    "Bruenor",
		Classes: []*character.CharacterClass{
			{ClassKey: "fighter", ClassName: "Fighter", Level: 3, HitDie: 10},
		},
		Version: 1,
	}
}

func (s *RedisRepositoryTestSuite) storedJSON(char *character.Character) string {
	data, err := json.Marshal(char)
	s.Require().NoError(err)
	return string(data)
}

func (s *RedisRepositoryTestSuite) TestCreate() {
	char := s.storedCharacter()
	char.Version = 0

	s.mock.ExpectExists("character:char-1").SetVal(0)
	s.mock.Regexp().ExpectSet("character:char-1", `.*"id":"char-1".*`, 0).SetVal("OK")
	s.mock.ExpectSAdd("owner:owner-1:characters", "char-1").SetVal(1)

	s.Require().NoError(s.repo.Create(s.ctx, char))
	s.Equal(int64(1), char.Version)
}

func (s *RedisRepositoryTestSuite) TestCreate_AlreadyExists() {
	char := s.storedCharacter()

	s.mock.ExpectExists("character:char-1").SetVal(1)

	err := s.repo.Create(s.ctx, char)

	s.Require().Error(err)
	s.Equal(apperrors.CodeAlreadyExists, apperrors.GetCode(err))
}

func (s *RedisRepositoryTestSuite) TestGet() {
	char := s.storedCharacter()
	s.mock.ExpectGet("character:char-1").SetVal(s.storedJSON(char))

	got, err := s.repo.Get(s.ctx, "char-1")

	s.Require().NoError(err)
	s.Equal("Bruenor", got.Name)
	s.Equal(3, got.Classes[0].Level)
	s.Equal(int64(1), got.Version)
}

func (s *RedisRepositoryTestSuite) TestGet_NotFound() {
	s.mock.ExpectGet("character:missing").RedisNil()

	_, err := s.repo.Get(s.ctx, "missing")

	s.Require().Error(err)
	s.True(apperrors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestUpdateWithVersion() {
	stored := s.storedCharacter()

	updated := stored.Clone()
	updated.Classes[0].Level = 4

	s.mock.ExpectWatch("character:char-1")
	s.mock.ExpectGet("character:char-1").SetVal(s.storedJSON(stored))
	s.mock.ExpectTxPipeline()
	s.mock.Regexp().ExpectSet("character:char-1", `.*"level":4.*`, 0).SetVal("OK")
	s.mock.ExpectTxPipelineExec()

	s.Require().NoError(s.repo.UpdateWithVersion(s.ctx, updated, 1))
	s.Equal(int64(2), updated.Version)
}

func (s *RedisRepositoryTestSuite) TestUpdateWithVersion_StaleVersion() {
	stored := s.storedCharacter()
	stored.Version = 3

	updated := s.storedCharacter()
	updated.Classes[0].Level = 4

	s.mock.ExpectWatch("character:char-1")
	s.mock.ExpectGet("character:char-1").SetVal(s.storedJSON(stored))

	err := s.repo.UpdateWithVersion(s.ctx, updated, 1)

	s.Require().Error(err)
	s.True(apperrors.IsConcurrencyConflict(err))
}

func (s *RedisRepositoryTestSuite) TestUpdateWithVersion_NotFound() {
	s.mock.ExpectWatch("character:char-1")
	s.mock.ExpectGet("character:char-1").RedisNil()

	err := s.repo.UpdateWithVersion(s.ctx, s.storedCharacter(), 1)

	s.Require().Error(err)
	s.True(apperrors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestDelete() {
	char := s.storedCharacter()

	s.mock.ExpectGet("character:char-1").SetVal(s.storedJSON(char))
	s.mock.ExpectDel("character:char-1").SetVal(1)
	s.mock.ExpectSRem("owner:owner-1:characters", "char-1").SetVal(1)

	s.Require().NoError(s.repo.Delete(s.ctx, "char-1"))
}
