// ABOUTME: Todo pack provides todo, mytodo, and complete tools over the shared task list.
// ABOUTME: Completion matches the first task containing the keyword, ignoring case.

package builtins

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/2389/remind-gateway/internal/auth"
	"github.com/2389/remind-gateway/internal/packs"
	"github.com/2389/remind-gateway/internal/store"
)

// EmptyTodoMessage is returned by mytodo when there are no tasks.
const EmptyTodoMessage = "Your to-do list is empty."

// TodoPack creates the todo pack backed by s.
func TodoPack(s store.TodoStore) *packs.BuiltinPack {
	h := &todoHandlers{store: s}
	return &packs.BuiltinPack{
		ID: "builtin:todo",
		Tools: []*packs.BuiltinTool{
			{
				Definition: &packs.ToolDefinition{
					Name:        "todo",
					Description: "Adds a task to your to-do list.",
					InputSchema: `{"type":"object","properties":{"task":{"type":"string","description":"The task to add to your to-do list."}},"required":["task"]}`,
					Doc: &packs.ToolDoc{
						Description: "Adds a task to your to-do list.",
						UseWhen:     "When the user says 'todo make report' or 'todo clean room'.",
						SideEffects: "Stores the task in a temporary in-memory list.",
					},
				},
				Handler: h.Add,
			},
			{
				Definition: &packs.ToolDefinition{
					Name:        "mytodo",
					Description: "Displays your current to-do list.",
					InputSchema: `{"type":"object","properties":{}}`,
					Doc: &packs.ToolDoc{
						Description: "Displays your current to-do list.",
						UseWhen:     "User wants to check tasks, e.g. 'mytodo'.",
						SideEffects: "None.",
					},
				},
				Handler: h.List,
			},
			{
				Definition: &packs.ToolDefinition{
					Name:        "complete",
					Description: "Marks a to-do task as complete and removes it.",
					InputSchema: `{"type":"object","properties":{"task_keyword":{"type":"string","description":"A keyword from the task to mark as completed."}},"required":["task_keyword"]}`,
					Doc: &packs.ToolDoc{
						Description: "Marks a to-do task as complete and removes it.",
						UseWhen:     "User says 'complete homework' or 'mark shopping done'.",
						SideEffects: "Removes the task.",
					},
				},
				Handler: h.Complete,
			},
		},
	}
}

type todoHandlers struct {
	store store.TodoStore
}

type todoAddInput struct {
	Task string `json:"task"`
}

func (h *todoHandlers) Add(_ context.Context, _ *auth.Grant, input json.RawMessage) (string, error) {
	var in todoAddInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", packs.Fail(packs.KindInvalidInput, "invalid input: "+err.Error(), err)
	}

	h.store.Add(in.Task)
	return fmt.Sprintf("Added to your to-do list: '%s'", in.Task), nil
}

func (h *todoHandlers) List(_ context.Context, _ *auth.Grant, _ json.RawMessage) (string, error) {
	return RenderTodos(h.store.List()), nil
}

type todoCompleteInput struct {
	TaskKeyword string `json:"task_keyword"`
}

func (h *todoHandlers) Complete(_ context.Context, _ *auth.Grant, input json.RawMessage) (string, error) {
	var in todoCompleteInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", packs.Fail(packs.KindInvalidInput, "invalid input: "+err.Error(), err)
	}

	task, err := h.store.Complete(in.TaskKeyword)
	if errors.Is(err, store.ErrNotFound) {
		return "", packs.Fail(packs.KindNotFound, fmt.Sprintf("No matching task found for: '%s'", in.TaskKeyword), err)
	}
	if err != nil {
		return "", fmt.Errorf("complete task: %w", err)
	}
	return fmt.Sprintf("Task '%s' marked as complete and removed.", task), nil
}

// RenderTodos formats tasks as a bulleted list in the given order.
func RenderTodos(tasks []string) string {
	if len(tasks) == 0 {
		return EmptyTodoMessage
	}
	var b strings.Builder
	b.WriteString("Your to-do list:")
	for _, t := range tasks {
		b.WriteString("\n- ")
		b.WriteString(t)
	}
	return b.String()
}
