package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/baikalhq/groupware/internal/domain"
	"github.com/baikalhq/groupware/internal/ports"
	"github.com/baikalhq/groupware/pkg/apperror"
)

// CommandTag identifies one operation the agent is allowed to run. Tags form
// a closed set; a model reply naming anything else is rejected before any
// usecase is touched.
type CommandTag string

const (
	CommandCreateApproval       CommandTag = "create_approval"
	CommandCreateTask           CommandTag = "create_task"
	CommandCreateSchedule       CommandTag = "create_schedule"
	CommandCreateNotice         CommandTag = "create_notice"
	CommandSearchUsers          CommandTag = "search_users"
	CommandListMyApprovals      CommandTag = "list_my_approvals"
	CommandListPendingApprovals CommandTag = "list_pending_approvals"
	CommandListMyTasks          CommandTag = "list_my_tasks"
	CommandListMySchedules      CommandTag = "list_my_schedules"
	CommandListNotices          CommandTag = "list_notices"
)

const systemPrompt = `You are the assistant of a company groupware system. You help employees ` +
	`draft and submit approval documents, manage tasks, schedules and notices, and look up ` +
	`coworkers. When the user asks for an action, call the matching tool with arguments taken ` +
	`from the user's words. Approver names are free text; the system resolves them to accounts. ` +
	`Answer in the user's language and keep replies short.`

type createApprovalArgs struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Category      string   `json:"category"`
	ApproverNames []string `json:"approver_names"`
	Submit        bool     `json:"submit"`
}

type createTaskArgs struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Priority     string `json:"priority"`
	DueDate      string `json:"due_date"`
	AssigneeName string `json:"assignee_name"`
}

type createScheduleArgs struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Location    string `json:"location"`
}

type createNoticeArgs struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	IsPinned bool   `json:"is_pinned"`
}

type searchUsersArgs struct {
	Name string `json:"name"`
}

// commandSchemas is the fixed tool surface advertised to the model, one spec
// per CommandTag.
var commandSchemas = []ports.ToolSpec{
	{
		Name:        string(CommandCreateApproval),
		Description: "Create an approval document with an ordered list of approvers. Set submit to true to route it immediately.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"title": {"type": "string", "description": "Document title"},
				"content": {"type": "string", "description": "Document body"},
				"category": {"type": "string", "enum": ["general", "travel", "leave", "purchase"], "description": "Document category"},
				"approver_names": {"type": "array", "items": {"type": "string"}, "description": "Approver names in approval order"},
				"submit": {"type": "boolean", "description": "Submit for approval immediately instead of leaving a draft"}
			},
			"required": ["title", "content", "approver_names"]
		}`),
	},
	{
		Name:        string(CommandCreateTask),
		Description: "Create a task, optionally assigned to a coworker by name.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"title": {"type": "string", "description": "Task title"},
				"description": {"type": "string", "description": "Task details"},
				"priority": {"type": "string", "enum": ["low", "medium", "high", "urgent"], "description": "Task priority"},
				"due_date": {"type": "string", "description": "Due date in RFC 3339 format"},
				"assignee_name": {"type": "string", "description": "Name of the assignee"}
			},
			"required": ["title"]
		}`),
	},
	{
		Name:        string(CommandCreateSchedule),
		Description: "Register a calendar event.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"title": {"type": "string", "description": "Event title"},
				"description": {"type": "string", "description": "Event details"},
				"start_time": {"type": "string", "description": "Start in RFC 3339 format"},
				"end_time": {"type": "string", "description": "End in RFC 3339 format"},
				"location": {"type": "string", "description": "Where the event takes place"}
			},
			"required": ["title", "start_time", "end_time"]
		}`),
	},
	{
		Name:        string(CommandCreateNotice),
		Description: "Publish a company-wide notice.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"title": {"type": "string", "description": "Notice title"},
				"content": {"type": "string", "description": "Notice body"},
				"is_pinned": {"type": "boolean", "description": "Pin the notice to the top"}
			},
			"required": ["title", "content"]
		}`),
	},
	{
		Name:        string(CommandSearchUsers),
		Description: "Look up coworkers by name.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {"type": "string", "description": "Name or part of a name"}
			},
			"required": ["name"]
		}`),
	},
	{
		Name:        string(CommandListMyApprovals),
		Description: "List approval documents the user authored.",
		Parameters:  json.RawMessage(`{"type": "object", "properties": {}}`),
	},
	{
		Name:        string(CommandListPendingApprovals),
		Description: "List approval documents waiting for the user's decision.",
		Parameters:  json.RawMessage(`{"type": "object", "properties": {}}`),
	},
	{
		Name:        string(CommandListMyTasks),
		Description: "List the user's tasks.",
		Parameters:  json.RawMessage(`{"type": "object", "properties": {}}`),
	},
	{
		Name:        string(CommandListMySchedules),
		Description: "List the user's schedules.",
		Parameters:  json.RawMessage(`{"type": "object", "properties": {}}`),
	},
	{
		Name:        string(CommandListNotices),
		Description: "List company notices.",
		Parameters:  json.RawMessage(`{"type": "object", "properties": {}}`),
	},
}

var validCommands = func() map[CommandTag]bool {
	m := make(map[CommandTag]bool, len(commandSchemas))
	for _, s := range commandSchemas {
		m[CommandTag(s.Name)] = true
	}
	return m
}()

// ExecutedCommand reports one tool call carried out during a chat turn
type ExecutedCommand struct {
	Command CommandTag      `json:"command"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ChatResult is the agent's reply to one user message
type ChatResult struct {
	Reply    string            `json:"reply"`
	Commands []ExecutedCommand `json:"commands,omitempty"`
}

// AgentChatConfig bounds a chat turn
type AgentChatConfig struct {
	HistoryLimit    int
	RateLimit       int
	RateLimitWindow time.Duration
}

// AgentUseCase turns natural-language requests into groupware operations. The
// model only proposes commands; every proposal is validated against the fixed
// command set and executed through the same usecases the HTTP API uses, so
// the agent cannot reach state the caller could not reach directly.
type AgentUseCase struct {
	approvalUC *ApprovalUseCase
	taskUC     *TaskUseCase
	scheduleUC *ScheduleUseCase
	noticeUC   *NoticeUseCase
	authUC     *AuthUseCase
	chatRepo   ports.ChatMessageRepository
	llm        ports.ChatCompletionService
	rateLimit  ports.RateLimitService
	cfg        AgentChatConfig
}

// NewAgentUseCase creates a new agent use case
func NewAgentUseCase(
	approvalUC *ApprovalUseCase,
	taskUC *TaskUseCase,
	scheduleUC *ScheduleUseCase,
	noticeUC *NoticeUseCase,
	authUC *AuthUseCase,
	chatRepo ports.ChatMessageRepository,
	llm ports.ChatCompletionService,
	rateLimit ports.RateLimitService,
	cfg AgentChatConfig,
) *AgentUseCase {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 10
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 20
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = time.Minute
	}
	return &AgentUseCase{
		approvalUC: approvalUC,
		taskUC:     taskUC,
		scheduleUC: scheduleUC,
		noticeUC:   noticeUC,
		authUC:     authUC,
		chatRepo:   chatRepo,
		llm:        llm,
		rateLimit:  rateLimit,
		cfg:        cfg,
	}
}

// Chat runs one conversational turn: rate limit, recall recent history, let
// the model reply, execute any proposed commands, then ask the model to
// summarize the results. Both sides of the turn are persisted.
func (uc *AgentUseCase) Chat(ctx context.Context, userID, message string) (*ChatResult, error) {
	key := "chat:" + userID
	allowed, err := uc.rateLimit.CheckLimit(ctx, key, uc.cfg.RateLimit, uc.cfg.RateLimitWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		return nil, apperror.NewRateLimited("too many chat requests, slow down")
	}
	if err := uc.rateLimit.Increment(ctx, key, uc.cfg.RateLimitWindow); err != nil {
		return nil, fmt.Errorf("failed to record rate limit: %w", err)
	}

	history, err := uc.chatRepo.ListRecentByUser(ctx, userID, uc.cfg.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	messages := make([]ports.ChatMessage, 0, len(history)+2)
	messages = append(messages, ports.ChatMessage{Role: "system", Content: systemPrompt})
	for _, m := range history {
		messages = append(messages, ports.ChatMessage{Role: string(m.Role), Content: m.Content})
	}
	messages = append(messages, ports.ChatMessage{Role: "user", Content: message})

	completion, err := uc.llm.Complete(ctx, messages, commandSchemas)
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	result := &ChatResult{Reply: completion.Content}

	if len(completion.ToolCalls) > 0 {
		messages = append(messages, ports.ChatMessage{
			Role:      "assistant",
			Content:   completion.Content,
			ToolCalls: completion.ToolCalls,
		})
		for _, call := range completion.ToolCalls {
			executed := uc.dispatch(ctx, userID, CommandTag(call.Name), call.Arguments)
			result.Commands = append(result.Commands, executed)

			payload := executed.Result
			if executed.Error != "" {
				payload, _ = json.Marshal(map[string]string{"error": executed.Error})
			}
			messages = append(messages, ports.ChatMessage{
				Role:       "tool",
				Content:    string(payload),
				ToolCallID: call.ID,
			})
		}

		final, err := uc.llm.Complete(ctx, messages, commandSchemas)
		if err != nil {
			return nil, fmt.Errorf("completion failed: %w", err)
		}
		result.Reply = final.Content
	}

	uc.persistTurn(ctx, userID, message, result)
	return result, nil
}

// persistTurn best-effort stores both sides of the exchange. History is a
// convenience, not the system of record, so storage errors do not fail the
// turn.
func (uc *AgentUseCase) persistTurn(ctx context.Context, userID, message string, result *ChatResult) {
	_ = uc.chatRepo.Create(ctx, domain.NewChatMessage(userID, domain.ChatRoleUser, message, ""))

	var toolCalls string
	if len(result.Commands) > 0 {
		if encoded, err := json.Marshal(result.Commands); err == nil {
			toolCalls = string(encoded)
		}
	}
	_ = uc.chatRepo.Create(ctx, domain.NewChatMessage(userID, domain.ChatRoleAssistant, result.Reply, toolCalls))
}

// dispatch validates the tag, decodes the arguments into their typed form and
// runs the matching usecase on behalf of the user. Failures come back as data
// for the model to explain, never as a dropped turn.
func (uc *AgentUseCase) dispatch(ctx context.Context, userID string, tag CommandTag, rawArgs json.RawMessage) ExecutedCommand {
	out := ExecutedCommand{Command: tag}
	if !validCommands[tag] {
		out.Error = fmt.Sprintf("unknown command %q", tag)
		return out
	}

	value, err := uc.execute(ctx, userID, tag, rawArgs)
	if err != nil {
		out.Error = err.Error()
		return out
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		out.Error = fmt.Sprintf("failed to encode result: %v", err)
		return out
	}
	out.Result = encoded
	return out
}

func (uc *AgentUseCase) execute(ctx context.Context, userID string, tag CommandTag, rawArgs json.RawMessage) (any, error) {
	switch tag {
	case CommandCreateApproval:
		var args createApprovalArgs
		if err := decodeArgs(rawArgs, &args); err != nil {
			return nil, err
		}
		approverIDs, err := uc.approvalUC.ResolveApprovers(ctx, args.ApproverNames)
		if err != nil {
			return nil, err
		}
		doc, err := uc.approvalUC.CreateApproval(ctx, CreateApprovalRequest{
			AuthorID:    userID,
			Title:       args.Title,
			Content:     args.Content,
			Category:    domain.ApprovalCategory(args.Category),
			ApproverIDs: approverIDs,
		})
		if err != nil {
			return nil, err
		}
		if args.Submit {
			return uc.approvalUC.SubmitApproval(ctx, userID, doc.ID)
		}
		return doc, nil

	case CommandCreateTask:
		var args createTaskArgs
		if err := decodeArgs(rawArgs, &args); err != nil {
			return nil, err
		}
		var dueDate *time.Time
		if args.DueDate != "" {
			parsed, err := time.Parse(time.RFC3339, args.DueDate)
			if err != nil {
				return nil, apperror.NewValidation("due_date must be RFC 3339")
			}
			dueDate = &parsed
		}
		var assigneeID *string
		if args.AssigneeName != "" {
			matches, err := uc.authUC.SearchUsers(ctx, args.AssigneeName)
			if err != nil {
				return nil, err
			}
			if len(matches) > 0 {
				assigneeID = &matches[0].ID
			}
		}
		return uc.taskUC.CreateTask(ctx, CreateTaskRequest{
			CreatorID:   userID,
			Title:       args.Title,
			Description: args.Description,
			Priority:    domain.TaskPriority(args.Priority),
			DueDate:     dueDate,
			AssigneeID:  assigneeID,
		})

	case CommandCreateSchedule:
		var args createScheduleArgs
		if err := decodeArgs(rawArgs, &args); err != nil {
			return nil, err
		}
		start, err := time.Parse(time.RFC3339, args.StartTime)
		if err != nil {
			return nil, apperror.NewValidation("start_time must be RFC 3339")
		}
		end, err := time.Parse(time.RFC3339, args.EndTime)
		if err != nil {
			return nil, apperror.NewValidation("end_time must be RFC 3339")
		}
		return uc.scheduleUC.CreateSchedule(ctx, CreateScheduleRequest{
			CreatorID:   userID,
			Title:       args.Title,
			Description: args.Description,
			StartTime:   start,
			EndTime:     end,
			Location:    args.Location,
		})

	case CommandCreateNotice:
		var args createNoticeArgs
		if err := decodeArgs(rawArgs, &args); err != nil {
			return nil, err
		}
		return uc.noticeUC.CreateNotice(ctx, CreateNoticeRequest{
			AuthorID: userID,
			Title:    args.Title,
			Content:  args.Content,
			IsPinned: args.IsPinned,
		})

	case CommandSearchUsers:
		var args searchUsersArgs
		if err := decodeArgs(rawArgs, &args); err != nil {
			return nil, err
		}
		return uc.authUC.SearchUsers(ctx, args.Name)

	case CommandListMyApprovals:
		return uc.approvalUC.ListMyApprovals(ctx, userID)

	case CommandListPendingApprovals:
		return uc.approvalUC.ListPendingApprovals(ctx, userID)

	case CommandListMyTasks:
		return uc.taskUC.ListMyTasks(ctx, userID)

	case CommandListMySchedules:
		return uc.scheduleUC.ListMySchedules(ctx, userID)

	case CommandListNotices:
		return uc.noticeUC.ListNotices(ctx, 20)

	default:
		return nil, apperror.NewValidation(fmt.Sprintf("unknown command %q", tag))
	}
}

func decodeArgs(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperror.NewValidation("malformed tool arguments")
	}
	return nil
}
