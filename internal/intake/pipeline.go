package intake

import (
	"context"
	"fmt"
	"strings"

	"firerisk/internal/llm"
	"firerisk/pkg/types"

	"github.com/sirupsen/logrus"
)

// FallbackReply stands in for the assistant reply when the provider answers
// without usable content.
const FallbackReply = "Unable to generate response"

// BestEffortExtraction names the failure policy applied to findings
// extraction. Errors are logged and never fail the turn.
const BestEffortExtraction = "best_effort_extraction"

type Assessments interface {
	Assessment(ctx context.Context, assessmentID int64) (*types.Assessment, error)
}

type Conversations interface {
	AppendMessage(ctx context.Context, message *types.ConversationMessage) error
	History(ctx context.Context, assessmentID int64) ([]*types.ConversationMessage, error)
}

type Findings interface {
	CreateFinding(ctx context.Context, finding *types.Finding) error
}

type Standards interface {
	AllStandards(ctx context.Context) ([]*types.FireStandard, error)
}

// Pipeline runs one conversation turn end to end. Steps run strictly in
// sequence and nothing is retried.
type Pipeline struct {
	logger        *logrus.Logger
	assessments   Assessments
	conversations Conversations
	findings      Findings
	standards     Standards
	llm           llm.Client
}

func NewPipeline(
	logger *logrus.Logger,
	assessments Assessments,
	conversations Conversations,
	findings Findings,
	standards Standards,
	client llm.Client,
) *Pipeline {
	return &Pipeline{
		logger:        logger,
		assessments:   assessments,
		conversations: conversations,
		findings:      findings,
		standards:     standards,
		llm:           client,
	}
}

// Chat records the user's message, asks the provider for a reply, records the
// reply and then extracts findings from it on a best-effort basis.
//
// A failure before the assistant reply is recorded is returned to the caller
// and leaves the user message in place. Retrying the turn resends it.
func (p *Pipeline) Chat(ctx context.Context, in *types.ChatInput) (*types.ChatResult, error) {
	if in.AssessmentID <= 0 {
		return nil, types.NewValidationError("assessmentId", "assessment id is required")
	}
	if strings.TrimSpace(in.Message) == "" {
		return nil, types.NewValidationError("message", "message is required")
	}

	entry := p.logger.WithField("assessment_id", in.AssessmentID)

	err := p.conversations.AppendMessage(ctx, &types.ConversationMessage{
		AssessmentID:    in.AssessmentID,
		Role:            types.MessageRoleUser,
		Content:         in.Message,
		AudioTranscript: in.AudioTranscript,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record user message: %w", err)
	}

	history, err := p.conversations.History(ctx, in.AssessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}

	assessment, err := p.assessments.Assessment(ctx, in.AssessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assessment: %w", err)
	}

	standards, err := p.standards.AllStandards(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load standards: %w", err)
	}

	resp, err := p.llm.Complete(ctx, llm.Request{
		Messages: transcript(SystemPrompt(assessment, standards), history),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate reply: %w", err)
	}

	reply := resp.Content
	if strings.TrimSpace(reply) == "" {
		entry.Warn("provider returned no usable content, using fallback reply")
		reply = FallbackReply
	}

	err = p.conversations.AppendMessage(ctx, &types.ConversationMessage{
		AssessmentID: in.AssessmentID,
		Role:         types.MessageRoleAssistant,
		Content:      reply,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record assistant reply: %w", err)
	}

	created := p.extractBestEffort(ctx, entry, in.AssessmentID, reply)
	entry.WithFields(logrus.Fields{
		"history_length":   len(history),
		"findings_created": created,
	}).Info("conversation turn complete")

	return &types.ChatResult{
		Message:        reply,
		ConversationID: in.AssessmentID,
	}, nil
}

func (p *Pipeline) extractBestEffort(ctx context.Context, entry *logrus.Entry, assessmentID int64, reply string) int {
	created, err := p.ExtractFindings(ctx, assessmentID, reply)
	if err != nil {
		entry.WithError(err).WithFields(logrus.Fields{
			"policy":           BestEffortExtraction,
			"stage":            extractionStage(err, created),
			"findings_created": created,
		}).Warn("findings extraction failed, turn continues")
	}
	return created
}

func extractionStage(err error, created int) string {
	switch {
	case created > 0:
		return "persist"
	case isMalformed(err):
		return "parse"
	case isExternal(err):
		return "provider"
	default:
		return "persist"
	}
}

// transcript prepends the system prompt to the stored history. System rows in
// the history are passed through as system turns.
func transcript(system string, history []*types.ConversationMessage) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	for _, m := range history {
		role := llm.RoleUser
		switch m.Role {
		case types.MessageRoleAssistant:
			role = llm.RoleAssistant
		case types.MessageRoleSystem:
			role = llm.RoleSystem
		}
		messages = append(messages, llm.Message{Role: role, Content: m.Content})
	}
	return messages
}
