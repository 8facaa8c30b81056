package agent

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/meetspot-ai/meetspot/internal/telemetry"
	"github.com/meetspot-ai/meetspot/provider"
)

// State is the orchestrator lifecycle state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateFinished State = "finished"
	StateError    State = "error"
)

// Defaults for the run loop.
const (
	DefaultMaxSteps           = 15
	DefaultDuplicateThreshold = 2

	// completionMinRunes is the minimum length of a free-text answer
	// before it can finish a run; completionMarker must also appear.
	completionMinRunes = 100
	completionMarker   = "推荐"
)

const systemPrompt = `你是 MeetSpot 会面地点推荐助手。用户会给出多个参与者的位置和偏好，
你需要借助工具找到对所有人都公平的会面场所：
1. 使用 geocode_locations 解析地点；失败时把工具返回的建议转告用户。
2. 使用 calculate_center 计算兼顾周边密度、交通和公平性的中心点。
3. 使用 search_venues 搜索场所，或直接用 meetspot_recommend 一步完成。
最终给出一段完整的中文推荐说明，列出推荐场所、距离和推荐理由。`

const stuckHint = `观察到重复的回答。请换一种思路：调整工具参数、尝试其他工具，
或者基于已有结果直接给出最终推荐。`

// Outcome summarizes one run.
type Outcome struct {
	RunID  string `json:"run_id"`
	State  State  `json:"state"`
	Output string `json:"output"`
	Steps  int    `json:"steps"`
}

// Orchestrator drives the think/act loop: each step asks the model for
// either tool calls or a final answer, executes the calls, and feeds the
// results back. One run at a time per instance.
type Orchestrator struct {
	provider   provider.Provider
	registry   *Registry
	transcript *Transcript

	maxSteps     int
	dupThreshold int

	metrics *telemetry.Metrics
	logger  *log.Logger

	mu    sync.Mutex
	state State
}

// Options tunes the orchestrator loop.
type Options struct {
	MaxSteps           int
	DuplicateThreshold int
	HistoryWindow      int
	Metrics            *telemetry.Metrics
	Logger             *log.Logger
}

// New builds an orchestrator over a provider and a closed tool registry.
func New(p provider.Provider, registry *Registry, opts Options) *Orchestrator {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	if opts.DuplicateThreshold <= 0 {
		opts.DuplicateThreshold = DefaultDuplicateThreshold
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	return &Orchestrator{
		provider:     p,
		registry:     registry,
		transcript:   NewTranscript(opts.HistoryWindow),
		maxSteps:     opts.MaxSteps,
		dupThreshold: opts.DuplicateThreshold,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
		state:        StateIdle,
	}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Transcript exposes the messages of the most recent run.
func (o *Orchestrator) Transcript() []provider.Message {
	return o.transcript.Messages()
}

// Run executes one task to completion, step exhaustion, or error. A
// second Run while one is in flight is rejected. Step exhaustion is a
// recoverable outcome: the state returns to idle and the outcome says
// so, with no error.
func (o *Orchestrator) Run(ctx context.Context, task string) (Outcome, error) {
	o.mu.Lock()
	if o.state == StateRunning {
		o.mu.Unlock()
		return Outcome{}, fmt.Errorf("a run is already in progress")
	}
	o.state = StateRunning
	o.mu.Unlock()

	outcome := Outcome{RunID: uuid.NewString()}
	o.logger.Printf("run %s: %s", outcome.RunID, task)

	o.transcript.Reset()
	o.transcript.Append(provider.Message{Role: provider.RoleSystem, Content: systemPrompt})
	o.transcript.Append(provider.Message{Role: provider.RoleUser, Content: task})

	final, err := o.loop(ctx, &outcome)

	o.mu.Lock()
	o.state = final
	o.mu.Unlock()
	outcome.State = final

	if o.metrics != nil {
		o.metrics.AgentRuns.WithLabelValues(string(final)).Inc()
		o.metrics.AgentSteps.Observe(float64(outcome.Steps))
	}
	return outcome, err
}

func (o *Orchestrator) loop(ctx context.Context, outcome *Outcome) (State, error) {
	for step := 1; step <= o.maxSteps; step++ {
		outcome.Steps = step

		if o.transcript.Stuck(o.dupThreshold) {
			o.logger.Printf("run %s: stuck at step %d, injecting hint", outcome.RunID, step)
			o.transcript.Append(provider.Message{Role: provider.RoleSystem, Content: stuckHint})
		}

		msg, err := o.provider.Chat(ctx, o.transcript.Messages(), o.registry.Specs())
		if err != nil {
			outcome.Output = fmt.Sprintf("llm error: %v", err)
			return StateError, fmt.Errorf("step %d: %w", step, err)
		}
		o.transcript.Append(msg)

		if len(msg.ToolCalls) > 0 {
			o.executeCalls(ctx, outcome.RunID, msg.ToolCalls)
			continue
		}
		if isFinalAnswer(msg.Content) {
			outcome.Output = msg.Content
			o.logger.Printf("run %s: finished after %d steps", outcome.RunID, step)
			return StateFinished, nil
		}
	}

	outcome.Output = "terminated: max steps reached"
	o.logger.Printf("run %s: step budget exhausted", outcome.RunID)
	return StateIdle, nil
}

// executeCalls runs every tool call of one assistant turn. A failing
// tool becomes an error-text tool message for the model to react to,
// never a run abort.
func (o *Orchestrator) executeCalls(ctx context.Context, runID string, calls []provider.ToolCall) {
	for _, call := range calls {
		result, err := o.executeOne(ctx, call)
		outcome := "ok"
		if err != nil {
			result = fmt.Sprintf("工具执行失败: %v", err)
			outcome = "error"
			o.logger.Printf("run %s: tool %s failed: %v", runID, call.Function.Name, err)
		}
		if o.metrics != nil {
			o.metrics.ToolCalls.WithLabelValues(call.Function.Name, outcome).Inc()
		}
		o.transcript.Append(provider.Message{
			Role:       provider.RoleTool,
			Content:    result,
			ToolCallID: call.ID,
			Name:       call.Function.Name,
		})
	}
}

func (o *Orchestrator) executeOne(ctx context.Context, call provider.ToolCall) (string, error) {
	tool, err := o.registry.Get(call.Function.Name)
	if err != nil {
		return "", err
	}
	return tool.Execute(ctx, call.Function.Arguments)
}

// isFinalAnswer is the completion heuristic: a substantial free-text
// answer that actually contains a recommendation.
func isFinalAnswer(content string) bool {
	return utf8.RuneCountInString(content) >= completionMinRunes &&
		strings.Contains(content, completionMarker)
}
