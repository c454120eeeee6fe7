package chat

import (
	"context"
	"encoding/json"
	"testing"

	"book-rag-api/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSessionRepo struct {
	sessions map[string]*entity.ChatSession
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: map[string]*entity.ChatSession{}}
}

func (m *memSessionRepo) Create(_ context.Context, s *entity.ChatSession) error {
	s.Active = true
	m.sessions[s.SessionID] = s
	return nil
}

func (m *memSessionRepo) FindByID(_ context.Context, id string) (*entity.ChatSession, error) {
	return m.sessions[id], nil
}

func (m *memSessionRepo) Deactivate(_ context.Context, id string) (bool, error) {
	s, ok := m.sessions[id]
	if !ok {
		return false, nil
	}
	s.Active = false
	return true, nil
}

type memMessageRepo struct {
	messages []entity.ChatMessage
}

func (m *memMessageRepo) Save(_ context.Context, msg *entity.ChatMessage) error {
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *memMessageRepo) ListBySession(_ context.Context, id string) ([]entity.ChatMessage, error) {
	var out []entity.ChatMessage
	for _, msg := range m.messages {
		if msg.SessionID == id {
			out = append(out, msg)
		}
	}
	return out, nil
}

func newTestUsecase(sessions *memSessionRepo, messages *memMessageRepo, index *fakeVectorIndex, svc *fakeChatService) *ChatUsecase {
	embedder := &fakeEmbedder{vector: make([]float32, 4)}
	return NewChatUsecase(
		sessions,
		messages,
		embedder,
		NewRetriever(index, 0, 0),
		NewGenerator(svc),
	)
}

func TestHandleMessage_FullBookTurn(t *testing.T) {
	sessions := newMemSessionRepo()
	messages := &memMessageRepo{}
	index := &fakeVectorIndex{results: []entity.RetrievedChunk{
		{ChunkID: "c0", Content: "Actuators convert energy into motion.", DocumentID: "doc_1", Score: 0.9},
	}}
	svc := &fakeChatService{answer: "They convert energy into motion."}

	uc := newTestUsecase(sessions, messages, index, svc)

	turn, err := uc.HandleMessage(context.Background(), "sess-1", "What do actuators do?", ModeFullBook, "")

	require.NoError(t, err)
	assert.Equal(t, "sess-1", turn.SessionID)
	assert.Equal(t, "They convert energy into motion.", turn.Response)
	require.Len(t, turn.Sources, 1)

	// session created on first use
	session, _ := sessions.FindByID(context.Background(), "sess-1")
	require.NotNil(t, session)
	assert.True(t, session.Active)

	// user and assistant messages persisted in order
	require.Len(t, messages.messages, 2)
	assert.Equal(t, entity.RoleUser, messages.messages[0].Role)
	assert.Equal(t, entity.RoleAssistant, messages.messages[1].Role)

	var sources []entity.RetrievedChunk
	require.NoError(t, json.Unmarshal(messages.messages[1].Sources, &sources))
	require.Len(t, sources, 1)
	assert.Equal(t, "c0", sources[0].ChunkID)
}

func TestHandleMessage_UngroundedQueryRefused(t *testing.T) {
	index := &fakeVectorIndex{results: []entity.RetrievedChunk{
		{ChunkID: "c0", Content: "Chapter about sensors.", Score: 0.4},
	}}
	svc := &fakeChatService{answer: "This information is not available in the book."}

	uc := newTestUsecase(newMemSessionRepo(), &memMessageRepo{}, index, svc)

	turn, err := uc.HandleMessage(context.Background(), "sess-1", "Who won the 1998 world cup?", ModeFullBook, "")

	require.NoError(t, err)
	assert.Equal(t, RefusalAnswer, turn.Response)
}

func TestHandleMessage_InvalidMode(t *testing.T) {
	uc := newTestUsecase(newMemSessionRepo(), &memMessageRepo{}, &fakeVectorIndex{}, &fakeChatService{})

	_, err := uc.HandleMessage(context.Background(), "sess-1", "hello", "both-modes", "")
	require.Error(t, err)

	_, err = uc.HandleMessage(context.Background(), "sess-1", "hello", ModeSelectedText, "")
	require.Error(t, err, "selected-text mode requires a selection")
}

func TestHandleMessage_SelectedTextMode(t *testing.T) {
	index := &fakeVectorIndex{results: []entity.RetrievedChunk{{ChunkID: "c0", Content: "passage"}}}
	svc := &fakeChatService{answer: "grounded answer"}

	uc := newTestUsecase(newMemSessionRepo(), &memMessageRepo{}, index, svc)

	turn, err := uc.HandleMessage(context.Background(), "sess-1", "explain this", ModeSelectedText, "the selected passage")

	require.NoError(t, err)
	assert.Equal(t, "grounded answer", turn.Response)
	assert.Equal(t, DefaultSelectedTextTopK, index.lastLimit)
}

func TestHandleMessage_WithoutPersistence(t *testing.T) {
	index := &fakeVectorIndex{results: []entity.RetrievedChunk{}}
	svc := &fakeChatService{answer: RefusalAnswer}

	embedder := &fakeEmbedder{vector: make([]float32, 4)}
	uc := NewChatUsecase(nil, nil, embedder, NewRetriever(index, 0, 0), NewGenerator(svc))

	turn, err := uc.HandleMessage(context.Background(), "sess-1", "anything", ModeFullBook, "")

	require.NoError(t, err)
	assert.Equal(t, RefusalAnswer, turn.Response)
}

func TestDeleteSession(t *testing.T) {
	sessions := newMemSessionRepo()
	require.NoError(t, sessions.Create(context.Background(), &entity.ChatSession{SessionID: "sess-1"}))

	uc := newTestUsecase(sessions, &memMessageRepo{}, &fakeVectorIndex{}, &fakeChatService{})

	found, err := uc.DeleteSession(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = uc.DeleteSession(context.Background(), "unknown")
	require.NoError(t, err)
	assert.False(t, found)
}
