package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/set-night/mindcoach/internal/domain"
)

const behaviorReportPrompt = `Generate a report of the user behavior based on the
chat history. report the user's most common topics and active hours.
response format:
` + "```" + `The user is mostly interested in [topic1], [topic2], [topic3]...
The user is most active at from [hh:mm] to [hh:mm]` + "```" + `

chat history:
`

// ReportService answers read-only questions about a user's history.
type ReportService struct {
	users *UserService
	llm   Completer
}

func NewReportService(users *UserService, llm Completer) *ReportService {
	return &ReportService{users: users, llm: llm}
}

// History returns the last lastN user and ai messages, oldest first.
func (s *ReportService) History(ctx context.Context, userName string, lastN int) ([]domain.ChatMessage, error) {
	if err := ValidateUserName(userName); err != nil {
		return nil, err
	}
	if lastN <= 0 {
		return nil, fmt.Errorf("%w: last_n must be positive", domain.ErrInvalidInput)
	}
	msgs, err := s.users.Get(userName).History.Find(ctx, domain.FindQuery{Limit: lastN})
	if err != nil {
		return nil, fmt.Errorf("find history: %w", err)
	}
	return msgs, nil
}

// TodayStatus counts user and ai messages since local midnight.
func (s *ReportService) TodayStatus(ctx context.Context, userName string) (*domain.ChatStatus, error) {
	if err := ValidateUserName(userName); err != nil {
		return nil, err
	}
	user := s.users.Get(userName)
	since := user.StartOfDay()
	msgs, err := user.History.Find(ctx, domain.FindQuery{
		Roles: []domain.Role{domain.RoleUser, domain.RoleAI},
		Since: &since,
	})
	if err != nil {
		return nil, fmt.Errorf("find today's history: %w", err)
	}
	status := &domain.ChatStatus{UserName: userName, ChatCount: len(msgs)}
	for _, m := range msgs {
		if m.Role == domain.RoleUser {
			status.UserCount++
		}
	}
	return status, nil
}

// BehaviorReport asks the provider to summarize the user's own messages.
func (s *ReportService) BehaviorReport(ctx context.Context, userName string) (*domain.BehaviorReport, error) {
	if err := ValidateUserName(userName); err != nil {
		return nil, err
	}
	msgs, err := s.users.Get(userName).History.Find(ctx, domain.FindQuery{
		Roles: []domain.Role{domain.RoleUser},
	})
	if err != nil {
		return nil, fmt.Errorf("find user messages: %w", err)
	}

	content, err := behaviorReportContent(msgs)
	if err != nil {
		return nil, err
	}

	report, err := complete(ctx, s.llm, []domain.ChatMessage{
		domain.NewSystemMessage(content, time.Now()),
	})
	if err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}
	return &domain.BehaviorReport{UserName: userName, Report: report}, nil
}

func behaviorReportContent(msgs []domain.ChatMessage) (string, error) {
	lines := make([]string, len(msgs))
	for i, m := range msgs {
		b, err := json.Marshal(struct {
			Text string `json:"text"`
			Time string `json:"time"`
		}{m.Text, m.Time.Format(time.RFC3339)})
		if err != nil {
			return "", fmt.Errorf("encode message: %w", err)
		}
		lines[i] = string(b)
	}
	return behaviorReportPrompt + strings.Join(lines, "\n"), nil
}
