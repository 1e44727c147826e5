package learning

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/hybridchat/hchat/db"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type LibSQLRepositoryTestSuite struct {
	suite.Suite
	repo *LibSQLRepository
	ctx  context.Context
}

func TestLibSQLRepositorySuite(t *testing.T) {
	suite.Run(t, new(LibSQLRepositoryTestSuite))
}

func (suite *LibSQLRepositoryTestSuite) SetupTest() {
	suite.ctx = context.Background()

	dsn := "file:" + filepath.Join(suite.T().TempDir(), "chat.db")
	conn, err := db.Connect(suite.ctx, db.Config{DSN: dsn}, zerolog.Nop())
	require.NoError(suite.T(), err)
	suite.T().Cleanup(func() { conn.Close() })

	suite.repo, err = NewLibSQLRepository(conn)
	require.NoError(suite.T(), err)
}

func (suite *LibSQLRepositoryTestSuite) TestListLearnedFiltersAndOrders() {
	at := time.UnixMilli(1_700_000_000_000)
	require.NoError(suite.T(), suite.repo.Record(suite.ctx, Entry{SessionID: "s", UserMessage: "q1", BotResponse: "a1", Timestamp: at, Learned: true}))
	require.NoError(suite.T(), suite.repo.Record(suite.ctx, Entry{SessionID: "s", UserMessage: "q2", BotResponse: "a2", Timestamp: at}))
	require.NoError(suite.T(), suite.repo.Record(suite.ctx, Entry{SessionID: "s", UserMessage: "q3", BotResponse: "a3", Timestamp: at, Learned: true}))

	entries, err := suite.repo.ListLearned(suite.ctx)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), entries, 2)
	assert.Equal(suite.T(), "q1", entries[0].UserMessage)
	assert.Equal(suite.T(), "a3", entries[1].BotResponse)
	assert.True(suite.T(), entries[0].Learned)
	assert.True(suite.T(), entries[0].Timestamp.Equal(at))
}

func (suite *LibSQLRepositoryTestSuite) TestRecordStampsMissingTimestamp() {
	require.NoError(suite.T(), suite.repo.Record(suite.ctx, Entry{UserMessage: "q", BotResponse: "a", Learned: true}))

	entries, err := suite.repo.ListLearned(suite.ctx)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), entries, 1)
	assert.WithinDuration(suite.T(), time.Now(), entries[0].Timestamp, time.Minute)
}

func (suite *LibSQLRepositoryTestSuite) TestMatcherOverLibSQL() {
	require.NoError(suite.T(), suite.repo.Record(suite.ctx, Entry{UserMessage: "What is your name", BotResponse: "I am Bot", Learned: true}))

	resp, ok, err := NewMatcher(suite.repo, zerolog.Nop()).Match(suite.ctx, "what is your name?")
	require.NoError(suite.T(), err)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), "I am Bot", resp)
}

func TestNewLibSQLRepository_RequiresDB(t *testing.T) {
	_, err := NewLibSQLRepository(nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
