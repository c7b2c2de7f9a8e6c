// Package lumagram implements direct messaging.
//
// This file holds the message controller: the conversation list, the
// open thread, periodic refresh polling, and sending.
package lumagram

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// MessageController manages conversations and the selected thread.
// A single poller goroutine refreshes the open thread at a fixed
// interval while one is selected.
type MessageController struct {
	client       *Client
	guard        *InflightGuard
	log          zerolog.Logger
	pollInterval time.Duration

	mu            sync.Mutex
	conversations []Conversation
	selectedID    int64
	messages      []Message
	listGen       Generation
	threadGen     Generation

	// pollMu serializes poller start/stop so two starts cannot both
	// pass the stop phase and race on pollCancel.
	pollMu     sync.Mutex
	pollCancel context.CancelFunc
	pollDone   chan struct{}
}

// NewMessageController builds a message controller over the given client.
func NewMessageController(client *Client, pollInterval time.Duration, log zerolog.Logger) *MessageController {
	return &MessageController{
		client:       client,
		guard:        NewInflightGuard(),
		pollInterval: pollInterval,
		log:          log.With().Str("component", "messages").Logger(),
	}
}

// LoadConversations fetches the conversation list and re-applies the
// selection rule: keep the requested (current) selection if it still
// exists, otherwise select the first conversation, otherwise clear the
// selection and stop polling.
func (m *MessageController) LoadConversations(ctx context.Context) ([]Conversation, error) {
	m.mu.Lock()
	requested := m.selectedID
	m.mu.Unlock()
	return m.loadConversations(ctx, requested)
}

// Open fetches the conversation list and applies the selection rule to
// the requested id. Deep links can carry ids that have gone stale, so a
// requested conversation missing from the list falls back to the first
// conversation instead of failing.
func (m *MessageController) Open(ctx context.Context, requested int64) ([]Conversation, error) {
	return m.loadConversations(ctx, requested)
}

func (m *MessageController) loadConversations(ctx context.Context, requested int64) ([]Conversation, error) {
	gen := m.listGen.Bump()
	convos, err := m.client.Conversations(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if !m.listGen.IsCurrent(gen) {
		out := m.cloneConversations()
		m.mu.Unlock()
		return out, nil
	}
	m.conversations = convos

	target := int64(0)
	for _, c := range convos {
		if c.ID == requested {
			target = requested
			break
		}
	}
	if target == 0 && len(convos) > 0 {
		target = convos[0].ID
	}
	changed := target != m.selectedID
	m.selectedID = target
	out := m.cloneConversations()
	m.mu.Unlock()

	if target == 0 {
		m.clearThread()
		m.stopPolling()
		return out, nil
	}
	if changed || !m.polling() {
		if _, err := m.openThread(ctx, target); err != nil {
			m.log.Warn().Int64("conversation_id", target).Err(err).Msg("opening thread failed")
		}
	}
	return out, nil
}

// Conversations returns a copy of the cached conversation list.
func (m *MessageController) Conversations() []Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cloneConversations()
}

func (m *MessageController) cloneConversations() []Conversation {
	out := make([]Conversation, len(m.conversations))
	copy(out, m.conversations)
	return out
}

// SelectedID returns the id of the open conversation, or zero.
func (m *MessageController) SelectedID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selectedID
}

// Messages returns a copy of the open thread.
func (m *MessageController) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Select opens the given conversation and starts polling it. Selecting a
// conversation not in the cached list falls back to the selection rule on
// the next refresh.
func (m *MessageController) Select(ctx context.Context, conversationID int64) ([]Message, error) {
	m.mu.Lock()
	m.selectedID = conversationID
	m.mu.Unlock()
	return m.openThread(ctx, conversationID)
}

// openThread fetches the thread and (re)starts the poller for it.
func (m *MessageController) openThread(ctx context.Context, conversationID int64) ([]Message, error) {
	msgs, err := m.refreshThread(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	m.startPolling(conversationID)
	return msgs, nil
}

// refreshThread fetches the thread without touching the poller. A stale
// response, or one for a conversation that is no longer selected, is
// discarded.
func (m *MessageController) refreshThread(ctx context.Context, conversationID int64) ([]Message, error) {
	gen := m.threadGen.Bump()
	msgs, _, err := m.client.ConversationMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.threadGen.IsCurrent(gen) || m.selectedID != conversationID {
		out := make([]Message, len(m.messages))
		copy(out, m.messages)
		return out, nil
	}
	m.messages = msgs
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (m *MessageController) clearThread() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selectedID = 0
	m.messages = nil
}

// startPolling launches the poller goroutine for the conversation. If a
// poller is already running it is replaced.
func (m *MessageController) startPolling(conversationID int64) {
	if m.pollInterval <= 0 {
		return
	}
	m.pollMu.Lock()
	defer m.pollMu.Unlock()
	m.stopPollingLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	m.mu.Lock()
	m.pollCancel = cancel
	m.pollDone = done
	m.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(m.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.mu.Lock()
				current := m.selectedID
				m.mu.Unlock()
				if current != conversationID {
					return
				}
				if _, err := m.refreshThread(ctx, conversationID); err != nil {
					m.log.Debug().Int64("conversation_id", conversationID).Err(err).Msg("poll refresh failed")
				}
			}
		}
	}()
}

func (m *MessageController) polling() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pollCancel != nil
}

// stopPolling cancels the poller and waits for it to exit.
func (m *MessageController) stopPolling() {
	m.pollMu.Lock()
	defer m.pollMu.Unlock()
	m.stopPollingLocked()
}

func (m *MessageController) stopPollingLocked() {
	m.mu.Lock()
	cancel := m.pollCancel
	done := m.pollDone
	m.pollCancel = nil
	m.pollDone = nil
	m.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}

// Close stops the poller. The controller can be reused after Close.
func (m *MessageController) Close() {
	m.stopPolling()
}

// Send posts a message to the open conversation, appends it to the
// thread, and refreshes the conversation list so the preview updates,
// keeping the current selection. Empty text is rejected locally, and a
// second send while one is in flight is ignored.
func (m *MessageController) Send(ctx context.Context, text string) (*Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &APIError{StatusCode: 400, Message: "Message text required"}
	}

	m.mu.Lock()
	conversationID := m.selectedID
	m.mu.Unlock()
	if conversationID == 0 {
		return nil, &APIError{StatusCode: 400, Message: "No conversation selected"}
	}

	if !m.guard.Begin(GuardSend, conversationID) {
		return nil, nil
	}
	defer m.guard.End(GuardSend, conversationID)

	msg, err := m.client.SendMessage(ctx, conversationID, text)
	if err != nil {
		m.log.Warn().Int64("conversation_id", conversationID).Err(err).Msg("send failed")
		return nil, err
	}

	m.mu.Lock()
	if m.selectedID == conversationID && msg != nil {
		m.messages = append(m.messages, *msg)
	}
	m.mu.Unlock()

	if _, err := m.loadConversations(ctx, conversationID); err != nil {
		m.log.Debug().Err(err).Msg("list refresh after send failed")
	}
	return msg, nil
}

// StartWith opens a conversation with the target user. When the cached
// followings already record a conversation id for that user, the
// existing thread is opened directly instead of hitting the start
// endpoint again.
func (m *MessageController) StartWith(ctx context.Context, target User) (*Conversation, error) {
	if target.ConversationID != 0 {
		if _, err := m.Select(ctx, target.ConversationID); err != nil {
			return nil, err
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		for _, c := range m.conversations {
			if c.ID == target.ConversationID {
				cc := c
				return &cc, nil
			}
		}
		return &Conversation{ID: target.ConversationID}, nil
	}

	convo, err := m.client.StartConversation(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	if _, err := m.loadConversations(ctx, convo.ID); err != nil {
		m.log.Debug().Err(err).Msg("list refresh after start failed")
	}
	return convo, nil
}

// Followings lists mutual followings available to message.
func (m *MessageController) Followings(ctx context.Context) ([]User, error) {
	return m.client.MessagingFollowings(ctx)
}
