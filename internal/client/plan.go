package client

import (
	"context"
	"errors"
	"net/http"
	"planboard/internal/templates"
	"strings"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// PlanRequest asks the generator for a plan. CurrentPlan and Feedback refine an
// earlier answer.
type PlanRequest struct {
	Goal        string          `json:"goal"`
	Duration    string          `json:"duration,omitempty"`
	ChatHistory []ChatMessage   `json:"chatHistory,omitempty"`
	CurrentPlan *templates.Plan `json:"currentPlan,omitempty"`
	Feedback    string          `json:"feedback,omitempty"`
}

var ErrEmptyGoal = errors.New("goal must not be empty")

func (c *Client) GeneratePlan(ctx context.Context, req PlanRequest) (templates.Plan, error) {
	var plan templates.Plan
	if strings.TrimSpace(req.Goal) == "" {
		return plan, ErrEmptyGoal
	}
	err := c.do(ctx, http.MethodPost, c.planURL+"/generate", req, &plan)
	return plan, err
}

// Consult sends one chat turn and returns the assistant's reply.
func (c *Client) Consult(ctx context.Context, message string, history []ChatMessage) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyGoal
	}
	body := struct {
		Goal        string        `json:"goal"`
		Action      string        `json:"action"`
		ChatHistory []ChatMessage `json:"chatHistory"`
	}{Goal: message, Action: "consult", ChatHistory: history}
	var out struct {
		Response string `json:"response"`
	}
	err := c.do(ctx, http.MethodPost, c.planURL+"/generate", body, &out)
	return out.Response, err
}
