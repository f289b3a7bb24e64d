package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baikalhq/groupware/internal/domain"
	"github.com/baikalhq/groupware/internal/ports"
	"github.com/baikalhq/groupware/pkg/apperror"
)

// scriptedLLM replays a fixed sequence of completions and records what it was
// asked.
type scriptedLLM struct {
	responses []*ports.ChatCompletion
	requests  [][]ports.ChatMessage
}

func (s *scriptedLLM) Complete(ctx context.Context, messages []ports.ChatMessage, tools []ports.ToolSpec) (*ports.ChatCompletion, error) {
	s.requests = append(s.requests, messages)
	if len(s.responses) == 0 {
		return &ports.ChatCompletion{Content: "ok"}, nil
	}
	next := s.responses[0]
	s.responses = s.responses[1:]
	return next, nil
}

type memoryChatRepo struct {
	messages []*domain.ChatMessage
}

func (r *memoryChatRepo) Create(ctx context.Context, message *domain.ChatMessage) error {
	r.messages = append(r.messages, message)
	return nil
}

func (r *memoryChatRepo) ListRecentByUser(ctx context.Context, userID string, limit int) ([]*domain.ChatMessage, error) {
	var out []*domain.ChatMessage
	for _, m := range r.messages {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type stubRateLimiter struct {
	allowed    bool
	increments int
}

func (s *stubRateLimiter) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return s.allowed, nil
}

func (s *stubRateLimiter) Increment(ctx context.Context, key string, window time.Duration) error {
	s.increments++
	return nil
}

type memoryTaskRepo struct {
	tasks map[string]*domain.Task
}

func newMemoryTaskRepo() *memoryTaskRepo {
	return &memoryTaskRepo{tasks: make(map[string]*domain.Task)}
}

func (r *memoryTaskRepo) Create(ctx context.Context, task *domain.Task) error {
	r.tasks[task.ID] = task
	return nil
}

func (r *memoryTaskRepo) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

func (r *memoryTaskRepo) Update(ctx context.Context, task *domain.Task) error {
	r.tasks[task.ID] = task
	return nil
}

func (r *memoryTaskRepo) List(ctx context.Context, filter ports.TaskFilter) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, task := range r.tasks {
		out = append(out, task)
	}
	return out, nil
}

func (r *memoryTaskRepo) ListForUser(ctx context.Context, userID string) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, task := range r.tasks {
		if task.CreatorID == userID || (task.AssigneeID != nil && *task.AssigneeID == userID) {
			out = append(out, task)
		}
	}
	return out, nil
}

type memoryNoticeRepo struct {
	notices []*domain.Notice
}

func (r *memoryNoticeRepo) Create(ctx context.Context, notice *domain.Notice) error {
	r.notices = append(r.notices, notice)
	return nil
}

func (r *memoryNoticeRepo) FindByID(ctx context.Context, id string) (*domain.Notice, error) {
	for _, notice := range r.notices {
		if notice.ID == id {
			return notice, nil
		}
	}
	return nil, domain.ErrNoticeNotFound
}

func (r *memoryNoticeRepo) List(ctx context.Context, limit int) ([]*domain.Notice, error) {
	if limit > 0 && len(r.notices) > limit {
		return r.notices[:limit], nil
	}
	return r.notices, nil
}

type memoryScheduleRepo struct {
	schedules []*domain.Schedule
}

func (r *memoryScheduleRepo) Create(ctx context.Context, schedule *domain.Schedule) error {
	r.schedules = append(r.schedules, schedule)
	return nil
}

func (r *memoryScheduleRepo) FindByID(ctx context.Context, id string) (*domain.Schedule, error) {
	for _, schedule := range r.schedules {
		if schedule.ID == id {
			return schedule, nil
		}
	}
	return nil, domain.ErrScheduleNotFound
}

func (r *memoryScheduleRepo) List(ctx context.Context, limit int) ([]*domain.Schedule, error) {
	return r.schedules, nil
}

func (r *memoryScheduleRepo) ListByCreator(ctx context.Context, creatorID string) ([]*domain.Schedule, error) {
	var out []*domain.Schedule
	for _, schedule := range r.schedules {
		if schedule.CreatorID == creatorID {
			out = append(out, schedule)
		}
	}
	return out, nil
}

type agentFixture struct {
	agent      *AgentUseCase
	llm        *scriptedLLM
	chatRepo   *memoryChatRepo
	noticeRepo *memoryNoticeRepo
	limiter    *stubRateLimiter
	approvals  *memoryApprovalRepo
}

func newAgentFixture(users ...*domain.User) *agentFixture {
	userRepo := newMemoryUserRepo(users...)
	approvalRepo := newMemoryApprovalRepo()
	noticeRepo := &memoryNoticeRepo{}
	llm := &scriptedLLM{}
	chatRepo := &memoryChatRepo{}
	limiter := &stubRateLimiter{allowed: true}

	agent := NewAgentUseCase(
		NewApprovalUseCase(approvalRepo, userRepo),
		NewTaskUseCase(newMemoryTaskRepo(), userRepo),
		NewScheduleUseCase(&memoryScheduleRepo{}),
		NewNoticeUseCase(noticeRepo),
		NewAuthUseCase(userRepo, nil, nil),
		chatRepo,
		llm,
		limiter,
		AgentChatConfig{},
	)
	return &agentFixture{
		agent:      agent,
		llm:        llm,
		chatRepo:   chatRepo,
		noticeRepo: noticeRepo,
		limiter:    limiter,
		approvals:  approvalRepo,
	}
}

func TestAgentChat_PlainReply(t *testing.T) {
	f := newAgentFixture()
	f.llm.responses = []*ports.ChatCompletion{{Content: "안녕하세요, 무엇을 도와드릴까요?"}}

	result, err := f.agent.Chat(context.Background(), "u-1", "안녕")
	require.NoError(t, err)
	assert.Equal(t, "안녕하세요, 무엇을 도와드릴까요?", result.Reply)
	assert.Empty(t, result.Commands)

	// both sides of the turn are persisted
	require.Len(t, f.chatRepo.messages, 2)
	assert.Equal(t, domain.ChatRoleUser, f.chatRepo.messages[0].Role)
	assert.Equal(t, domain.ChatRoleAssistant, f.chatRepo.messages[1].Role)
	assert.Equal(t, 1, f.limiter.increments)
}

func TestAgentChat_ExecutesToolCall(t *testing.T) {
	f := newAgentFixture()
	f.llm.responses = []*ports.ChatCompletion{
		{ToolCalls: []ports.ToolCall{{
			ID:        "call-1",
			Name:      "create_notice",
			Arguments: json.RawMessage(`{"title": "점검 안내", "content": "금요일 저녁 서버 점검", "is_pinned": true}`),
		}}},
		{Content: "공지를 등록했습니다."},
	}

	result, err := f.agent.Chat(context.Background(), "u-1", "금요일 서버 점검 공지 올려줘")
	require.NoError(t, err)
	assert.Equal(t, "공지를 등록했습니다.", result.Reply)
	require.Len(t, result.Commands, 1)
	assert.Equal(t, CommandCreateNotice, result.Commands[0].Command)
	assert.Empty(t, result.Commands[0].Error)

	require.Len(t, f.noticeRepo.notices, 1)
	assert.Equal(t, "점검 안내", f.noticeRepo.notices[0].Title)
	assert.True(t, f.noticeRepo.notices[0].IsPinned)
	assert.Equal(t, "u-1", f.noticeRepo.notices[0].AuthorID)

	// the second completion saw the tool result
	require.Len(t, f.llm.requests, 2)
	last := f.llm.requests[1][len(f.llm.requests[1])-1]
	assert.Equal(t, "tool", last.Role)
	assert.Equal(t, "call-1", last.ToolCallID)

	// the persisted assistant turn records the executed commands
	assistant := f.chatRepo.messages[1]
	assert.Contains(t, assistant.ToolCalls, string(CommandCreateNotice))
}

func TestAgentChat_CreateApprovalWithSubmit(t *testing.T) {
	f := newAgentFixture(activeUser("u-kim", "김철수"), activeUser("u-lee", "이영희"))
	f.llm.responses = []*ports.ChatCompletion{
		{ToolCalls: []ports.ToolCall{{
			ID:   "call-1",
			Name: "create_approval",
			Arguments: json.RawMessage(`{
				"title": "출장 신청",
				"content": "부산 출장 3일",
				"category": "travel",
				"approver_names": ["김철수", "이영희"],
				"submit": true
			}`),
		}}},
		{Content: "결재를 상신했습니다."},
	}

	result, err := f.agent.Chat(context.Background(), "u-author", "김철수, 이영희 결재로 부산 출장 상신해줘")
	require.NoError(t, err)
	require.Len(t, result.Commands, 1)
	require.Empty(t, result.Commands[0].Error)

	var doc domain.ApprovalDocument
	require.NoError(t, json.Unmarshal(result.Commands[0].Result, &doc))
	assert.Equal(t, domain.DocumentStatusPending, doc.Status)
	require.Len(t, doc.Lines, 2)
	assert.Equal(t, "u-kim", doc.Lines[0].ApproverID)
	assert.Equal(t, "u-lee", doc.Lines[1].ApproverID)
}

func TestAgentChat_UnknownCommandRejected(t *testing.T) {
	f := newAgentFixture()
	f.llm.responses = []*ports.ChatCompletion{
		{ToolCalls: []ports.ToolCall{{
			ID:        "call-1",
			Name:      "drop_database",
			Arguments: json.RawMessage(`{}`),
		}}},
		{Content: "그 작업은 할 수 없습니다."},
	}

	result, err := f.agent.Chat(context.Background(), "u-1", "뭔가 이상한 거 해줘")
	require.NoError(t, err)
	require.Len(t, result.Commands, 1)
	assert.Contains(t, result.Commands[0].Error, "unknown command")
	assert.Nil(t, result.Commands[0].Result)
}

func TestAgentChat_MalformedArguments(t *testing.T) {
	f := newAgentFixture()
	f.llm.responses = []*ports.ChatCompletion{
		{ToolCalls: []ports.ToolCall{{
			ID:        "call-1",
			Name:      "create_notice",
			Arguments: json.RawMessage(`{"title": 42`),
		}}},
		{Content: "요청을 이해하지 못했습니다."},
	}

	result, err := f.agent.Chat(context.Background(), "u-1", "공지 올려줘")
	require.NoError(t, err)
	require.Len(t, result.Commands, 1)
	assert.Equal(t, "malformed tool arguments", result.Commands[0].Error)
	assert.Empty(t, f.noticeRepo.notices)
}

func TestAgentChat_CommandFailureBecomesToolData(t *testing.T) {
	f := newAgentFixture()
	f.llm.responses = []*ports.ChatCompletion{
		{ToolCalls: []ports.ToolCall{{
			ID:        "call-1",
			Name:      "create_notice",
			Arguments: json.RawMessage(`{"title": "", "content": "본문만 있음"}`),
		}}},
		{Content: "제목이 필요합니다."},
	}

	result, err := f.agent.Chat(context.Background(), "u-1", "공지 올려줘")
	require.NoError(t, err)
	require.Len(t, result.Commands, 1)
	assert.NotEmpty(t, result.Commands[0].Error)

	// the failure was fed back to the model as tool output
	require.Len(t, f.llm.requests, 2)
	last := f.llm.requests[1][len(f.llm.requests[1])-1]
	assert.Equal(t, "tool", last.Role)
	assert.Contains(t, last.Content, "error")
}

func TestAgentChat_RateLimited(t *testing.T) {
	f := newAgentFixture()
	f.limiter.allowed = false

	_, err := f.agent.Chat(context.Background(), "u-1", "안녕")
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeRateLimited, appErr.Code)
	assert.Equal(t, 0, f.limiter.increments)
	assert.Empty(t, f.llm.requests)
	assert.Empty(t, f.chatRepo.messages)
}

func TestAgentChat_HistoryIncludedInPrompt(t *testing.T) {
	f := newAgentFixture()
	f.chatRepo.messages = []*domain.ChatMessage{
		domain.NewChatMessage("u-1", domain.ChatRoleUser, "지난 질문", ""),
		domain.NewChatMessage("u-1", domain.ChatRoleAssistant, "지난 답변", ""),
	}
	f.llm.responses = []*ports.ChatCompletion{{Content: "이어서 답합니다."}}

	_, err := f.agent.Chat(context.Background(), "u-1", "계속해줘")
	require.NoError(t, err)

	require.Len(t, f.llm.requests, 1)
	prompt := f.llm.requests[0]
	require.Len(t, prompt, 4)
	assert.Equal(t, "system", prompt[0].Role)
	assert.Equal(t, "지난 질문", prompt[1].Content)
	assert.Equal(t, "지난 답변", prompt[2].Content)
	assert.Equal(t, "계속해줘", prompt[3].Content)
}
