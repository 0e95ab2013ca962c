package openairesponses

import (
	"encoding/json"
	"strings"

	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/streamcore"
	"github.com/taipm/go-llm-gateway/types"
)

// eventWire is the union of fields used across the Responses SSE event
// types this converter dispatches on; only the fields matching Type are
// populated by the server for any given event.
type eventWire struct {
	Type        string                  `json:"type"`
	OutputIndex *int                    `json:"output_index"`
	ItemID      string                  `json:"item_id"`
	CallID      string                  `json:"call_id"`
	Item        *responseOutputItemWire `json:"item"`
	Delta       string                  `json:"delta"`
	Text        string                  `json:"text"`
	Arguments   string                  `json:"arguments"`
	Response    *responseWire           `json:"response"`
}

type functionCallMeta struct {
	CallID string
	Name   string
}

type functionCallState struct {
	ItemID        string
	OutputIndex   int
	Name          string
	ArgumentsBuf  strings.Builder
	Arguments     string
	ArgumentsDone bool
}

// StreamTransformer is the OpenAI Responses SSE state machine described in
// spec §4.1.1: it interleaves multiple output items (assistant message,
// reasoning block, function-tool calls, hosted-tool calls) and must emit
// every idempotent-once signal exactly once. Grounded in original_source's
// responses_sse/converter/state.rs field set (function_calls_by_call_id,
// provider_tool_output_index_by_tool_call_id, per-item emitted-once ID
// sets, the next_output_index monotonic allocator, and the pending
// end-of-stream event queue).
type StreamTransformer struct {
	responseID string
	model      string
	createdAt  int64

	usedOutputIndices map[int]bool

	emittedOutputItemAdded          map[string]bool
	emittedOutputItemDone           map[string]bool
	emittedReasoningStart           map[string]bool
	emittedReasoningEnd             map[string]bool
	emittedFunctionToolInputStart   map[string]bool
	emittedFunctionToolInputEnd     map[string]bool
	emittedApplyPatchToolInputStart map[string]bool
	emittedApplyPatchToolInputEnd   map[string]bool

	messageText            strings.Builder
	messageOutputIndex     *int
	messageAnnotationIndex int

	reasoningText strings.Builder

	functionCallMetaByItemID map[string]functionCallMeta
	functionCallsByCallID    map[string]*functionCallState
	functionCallOrder        []string

	applyPatchCallIDByItemID          map[string]string
	providerToolOutputIndexByCallID   map[string]int
	reasoningEncryptedContentByItemID map[string]string

	streamStartEmitted     bool
	pendingStreamEndEvents []streamcore.Result
}

func NewStreamTransformer() *StreamTransformer {
	return &StreamTransformer{
		usedOutputIndices:                 map[int]bool{},
		emittedOutputItemAdded:             map[string]bool{},
		emittedOutputItemDone:              map[string]bool{},
		emittedReasoningStart:              map[string]bool{},
		emittedReasoningEnd:                map[string]bool{},
		emittedFunctionToolInputStart:      map[string]bool{},
		emittedFunctionToolInputEnd:        map[string]bool{},
		emittedApplyPatchToolInputStart:    map[string]bool{},
		emittedApplyPatchToolInputEnd:      map[string]bool{},
		functionCallMetaByItemID:           map[string]functionCallMeta{},
		functionCallsByCallID:              map[string]*functionCallState{},
		applyPatchCallIDByItemID:           map[string]string{},
		providerToolOutputIndexByCallID:    map[string]int{},
		reasoningEncryptedContentByItemID:  map[string]string{},
	}
}

func (t *StreamTransformer) ProviderID() string { return "openai" }

func (t *StreamTransformer) ConvertEvent(raw streamcore.RawEvent) []streamcore.Result {
	var ev eventWire
	if err := json.Unmarshal([]byte(raw.Data), &ev); err != nil {
		return []streamcore.Result{streamcore.Err(llmerrors.Wrap(llmerrors.KindParseError, "openai responses: decode stream event", err))}
	}

	switch ev.Type {
	case "response.created", "response.in_progress":
		return t.handleResponseIdentity(ev)
	case "response.output_item.added":
		return t.handleOutputItemAdded(ev)
	case "response.output_item.done":
		return t.handleOutputItemDone(ev)
	case "response.output_text.delta":
		return t.handleTextDelta(ev)
	case "response.output_text.done":
		return nil
	case "response.function_call_arguments.delta":
		return t.handleFunctionArgsDelta(ev)
	case "response.function_call_arguments.done":
		return t.handleFunctionArgsDone(ev)
	case "response.reasoning_summary_text.delta":
		return t.handleReasoningDelta(ev)
	case "response.reasoning_summary_text.done":
		return nil
	case "response.web_search_call.in_progress", "response.web_search_call.searching", "response.web_search_call.completed":
		return t.handleHostedToolEvent(ev, "web_search_call")
	case "response.file_search_call.in_progress", "response.file_search_call.searching", "response.file_search_call.completed":
		return t.handleHostedToolEvent(ev, "file_search_call")
	case "response.completed":
		return t.handleCompleted(ev)
	case "response.failed", "response.incomplete":
		return t.handleTerminalNonCompleted(ev)
	case "error":
		return []streamcore.Result{streamcore.Err(ClassifyError(0, []byte(raw.Data)))}
	default:
		return nil
	}
}

func (t *StreamTransformer) handleResponseIdentity(ev eventWire) []streamcore.Result {
	if ev.Response != nil {
		t.responseID, t.model, t.createdAt = ev.Response.ID, ev.Response.Model, ev.Response.CreatedAt
	}
	if t.streamStartEmitted {
		return nil
	}
	t.streamStartEmitted = true
	return []streamcore.Result{streamcore.Ok(types.NewStreamStart(types.StreamMetadata{
		ID: t.responseID, Model: t.model, Provider: "openai",
	}))}
}

// allocateOutputIndex returns ev's explicit output_index, or — when the
// server omits it — the lowest unused non-negative integer (spec §4.1.1
// tie-break).
func (t *StreamTransformer) allocateOutputIndex(ev eventWire) int {
	if ev.OutputIndex != nil {
		t.usedOutputIndices[*ev.OutputIndex] = true
		return *ev.OutputIndex
	}
	idx := 0
	for t.usedOutputIndices[idx] {
		idx++
	}
	t.usedOutputIndices[idx] = true
	return idx
}

func (t *StreamTransformer) handleOutputItemAdded(ev eventWire) []streamcore.Result {
	if ev.Item == nil {
		return nil
	}
	idx := t.allocateOutputIndex(ev)
	itemID := ev.Item.ID

	// A re-announced item_id is an idempotent duplicate; ignore it (spec
	// §4.1.1 tie-break).
	if itemID != "" {
		if t.emittedOutputItemAdded[itemID] {
			return nil
		}
		t.emittedOutputItemAdded[itemID] = true
	}

	switch ev.Item.Type {
	case "message":
		i := idx
		t.messageOutputIndex = &i
		t.messageAnnotationIndex = 0
		return nil

	case "reasoning":
		if itemID != "" {
			t.emittedReasoningStart[itemID] = true
		}
		return nil

	case "function_call":
		callID := ev.Item.CallID
		if callID == "" {
			return nil
		}
		t.functionCallMetaByItemID[itemID] = functionCallMeta{CallID: callID, Name: ev.Item.Name}
		if _, exists := t.functionCallsByCallID[callID]; !exists {
			t.functionCallsByCallID[callID] = &functionCallState{ItemID: itemID, OutputIndex: idx, Name: ev.Item.Name}
			t.functionCallOrder = append(t.functionCallOrder, callID)
		}
		// Name must be determined once, before any arguments_fragment
		// (spec §3 invariant).
		if ev.Item.Name != "" && itemID != "" && !t.emittedFunctionToolInputStart[itemID] {
			t.emittedFunctionToolInputStart[itemID] = true
			oi := idx
			return []streamcore.Result{streamcore.Ok(types.NewToolCallDelta(callID, ev.Item.Name, "", &oi))}
		}
		return nil

	case "apply_patch_call":
		callID := ev.Item.CallID
		t.applyPatchCallIDByItemID[itemID] = callID
		t.providerToolOutputIndexByCallID[callID] = idx
		if itemID != "" && !t.emittedApplyPatchToolInputStart[itemID] {
			t.emittedApplyPatchToolInputStart[itemID] = true
			oi := idx
			return []streamcore.Result{streamcore.Ok(types.NewToolCallDelta(callID, "apply_patch_call", "", &oi))}
		}
		return nil

	case "web_search_call", "file_search_call", "computer_call":
		callID := ev.Item.CallID
		if callID == "" {
			callID = itemID
		}
		t.providerToolOutputIndexByCallID[callID] = idx
		oi := idx
		return []streamcore.Result{streamcore.Ok(types.NewToolCallDelta(callID, ev.Item.Type, "", &oi))}

	default:
		return nil
	}
}

func (t *StreamTransformer) handleOutputItemDone(ev eventWire) []streamcore.Result {
	if ev.Item == nil {
		return nil
	}
	itemID := ev.Item.ID
	if itemID != "" {
		if t.emittedOutputItemDone[itemID] {
			return nil
		}
		t.emittedOutputItemDone[itemID] = true
	}

	switch ev.Item.Type {
	case "reasoning":
		if itemID != "" {
			t.emittedReasoningEnd[itemID] = true
			if ev.Item.EncryptedContent != "" {
				t.reasoningEncryptedContentByItemID[itemID] = ev.Item.EncryptedContent
			}
		}
		return nil

	case "function_call":
		meta, ok := t.functionCallMetaByItemID[itemID]
		if !ok {
			return nil
		}
		if state := t.functionCallsByCallID[meta.CallID]; state != nil && ev.Item.Arguments != "" {
			state.Arguments = ev.Item.Arguments
			state.ArgumentsDone = true
		}
		t.emittedFunctionToolInputEnd[itemID] = true
		return nil

	default:
		return nil
	}
}

func (t *StreamTransformer) handleTextDelta(ev eventWire) []streamcore.Result {
	t.messageText.WriteString(ev.Delta)
	idx := ev.OutputIndex
	if idx == nil {
		idx = t.messageOutputIndex
	}
	return []streamcore.Result{streamcore.Ok(types.NewContentDelta(ev.Delta, idx))}
}

func (t *StreamTransformer) handleFunctionArgsDelta(ev eventWire) []streamcore.Result {
	meta, ok := t.functionCallMetaByItemID[ev.ItemID]
	if !ok {
		// The server is allowed to stream arguments before announcing the
		// item name on slower connections; track by item_id regardless.
		meta = functionCallMeta{CallID: ev.ItemID}
		t.functionCallMetaByItemID[ev.ItemID] = meta
	}
	state, exists := t.functionCallsByCallID[meta.CallID]
	if !exists {
		state = &functionCallState{ItemID: ev.ItemID, Name: meta.Name}
		t.functionCallsByCallID[meta.CallID] = state
		t.functionCallOrder = append(t.functionCallOrder, meta.CallID)
	}
	state.ArgumentsBuf.WriteString(ev.Delta)

	name := ""
	if ev.ItemID != "" && !t.emittedFunctionToolInputStart[ev.ItemID] {
		t.emittedFunctionToolInputStart[ev.ItemID] = true
		name = meta.Name
	}
	idx := state.OutputIndex
	return []streamcore.Result{streamcore.Ok(types.NewToolCallDelta(meta.CallID, name, ev.Delta, &idx))}
}

func (t *StreamTransformer) handleFunctionArgsDone(ev eventWire) []streamcore.Result {
	meta, ok := t.functionCallMetaByItemID[ev.ItemID]
	if !ok {
		return nil
	}
	if state := t.functionCallsByCallID[meta.CallID]; state != nil {
		if ev.Arguments != "" {
			state.Arguments = ev.Arguments
		} else {
			state.Arguments = state.ArgumentsBuf.String()
		}
		state.ArgumentsDone = true
	}
	if ev.ItemID != "" {
		t.emittedFunctionToolInputEnd[ev.ItemID] = true
	}
	return nil
}

func (t *StreamTransformer) handleReasoningDelta(ev eventWire) []streamcore.Result {
	t.reasoningText.WriteString(ev.Delta)
	return []streamcore.Result{streamcore.Ok(types.NewReasoningDelta(ev.Delta, ev.ItemID))}
}

func (t *StreamTransformer) handleHostedToolEvent(ev eventWire, kind string) []streamcore.Result {
	callID := ev.CallID
	if callID == "" {
		callID = ev.ItemID
	}
	idx, ok := t.providerToolOutputIndexByCallID[callID]
	if !ok {
		idx = t.allocateOutputIndex(ev)
		t.providerToolOutputIndexByCallID[callID] = idx
	}
	i := idx
	return []streamcore.Result{streamcore.Ok(types.NewToolCallDelta(callID, kind, "", &i))}
}

func (t *StreamTransformer) handleCompleted(ev eventWire) []streamcore.Result {
	resp := t.buildResponse()
	if ev.Response != nil {
		resp.Usage = types.Usage{
			PromptTokens:     ev.Response.Usage.InputTokens,
			CompletionTokens: ev.Response.Usage.OutputTokens,
			TotalTokens:      ev.Response.Usage.TotalTokens,
		}
		if v := ev.Response.Usage.OutputTokensDetails.ReasoningTokens; v > 0 {
			resp.Usage.ReasoningTokens = &v
		}
		if v := ev.Response.Usage.InputTokensDetails.CachedTokens; v > 0 {
			resp.Usage.CachedTokens = &v
		}
		resp.FinishReason = mapFinishReason(ev.Response.Status, ev.Response.IncompleteDetails, len(resp.ToolCalls) > 0)
	} else if len(resp.ToolCalls) > 0 {
		resp.FinishReason = types.FinishReason{Tag: types.FinishToolCalls}
	} else {
		resp.FinishReason = types.FinishReason{Tag: types.FinishStop}
	}

	// Queued, not returned directly: the terminal signal may arrive before
	// the transport actually closes, and HandleStreamEndEvents is the one
	// contractual place a StreamEnd is emitted (spec §4.1.1 "pending
	// end-of-stream event queue").
	t.pendingStreamEndEvents = []streamcore.Result{streamcore.Ok(types.NewStreamEnd(resp))}
	return nil
}

func (t *StreamTransformer) handleTerminalNonCompleted(ev eventWire) []streamcore.Result {
	resp := t.buildResponse()
	status := "failed"
	var incomplete *responseIncompleteDetailsWire
	if ev.Response != nil {
		status = ev.Response.Status
		incomplete = ev.Response.IncompleteDetails
	}
	resp.FinishReason = mapFinishReason(status, incomplete, len(resp.ToolCalls) > 0)
	t.pendingStreamEndEvents = []streamcore.Result{streamcore.Ok(types.NewStreamEnd(resp))}
	return nil
}

// buildResponse assembles the unified ChatResponse from every accumulated
// per-item state table. Tool calls are emitted in first-seen order so a
// caller's history stays deterministic across runs against the same fixture.
func (t *StreamTransformer) buildResponse() *types.ChatResponse {
	resp := &types.ChatResponse{
		ID:        t.responseID,
		Model:     t.model,
		Created:   t.createdAt,
		Content:   t.messageText.String(),
		Reasoning: t.reasoningText.String(),
	}
	for _, callID := range t.functionCallOrder {
		state := t.functionCallsByCallID[callID]
		args := state.Arguments
		if args == "" {
			args = state.ArgumentsBuf.String()
		}
		resp.ToolCalls = append(resp.ToolCalls, types.ToolCall{ID: callID, Name: state.Name, Arguments: args})
	}
	if len(t.reasoningEncryptedContentByItemID) > 0 {
		meta := map[string]any{}
		for itemID, enc := range t.reasoningEncryptedContentByItemID {
			meta["reasoning_encrypted_content:"+itemID] = enc
		}
		resp.ProviderMetadata = map[string]map[string]any{"openai": meta}
	}
	return resp
}

// HandleStreamEndEvents drains the pending-completion queue populated by
// response.completed/failed/incomplete. If the transport closed without any
// terminal event, it synthesizes a StreamEnd from whatever state was
// accumulated. Either way it yields at most one StreamEnd: later calls
// return an empty list.
func (t *StreamTransformer) HandleStreamEndEvents() []streamcore.Result {
	if t.pendingStreamEndEvents != nil {
		out := t.pendingStreamEndEvents
		t.pendingStreamEndEvents = []streamcore.Result{}
		return out
	}
	resp := t.buildResponse()
	if len(resp.ToolCalls) > 0 {
		resp.FinishReason = types.FinishReason{Tag: types.FinishToolCalls}
	} else {
		resp.FinishReason = types.OtherFinishReason("disconnected")
	}
	t.pendingStreamEndEvents = []streamcore.Result{}
	return []streamcore.Result{streamcore.Ok(types.NewStreamEnd(resp))}
}

func (t *StreamTransformer) FinalizeOnDisconnect() bool { return true }
