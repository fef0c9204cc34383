package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"codraft/contract"
	"codraft/domain"
	"codraft/domain/event"
	"codraft/domain/policy"
	"codraft/errors"
	"codraft/moderation"
	"codraft/observability"
	"codraft/repositories"
	"codraft/runtime/workers"
)

// Options tunes the orchestrator's channels and policies.
type Options struct {
	BufferSize      int
	MaxCapacity     int
	MentionDebounce time.Duration
	AgentTimeout    time.Duration
}

// Orchestrator owns one command queue and worker per live session, plus
// the shared pipeline workers (moderation, mention detection, agent,
// fanout). Commands for the same session id are applied by a single
// worker, which is the serialization contract the immutable aggregates
// rely on; sessions never need cross-session ordering.
type Orchestrator struct {
	mu                 sync.RWMutex
	log                *slog.Logger
	supervisor         contract.ISupervisor
	registry           contract.IRegistry
	documentRepository repositories.IDocumentRepository
	sessionRepository  repositories.ISessionRepository
	moderator          moderation.Moderator
	pattern            policy.MentionPattern
	invoker            contract.Invoker
	agentID            domain.UserID
	opts               Options

	sessions       map[string]*sessionEntry
	permanentSinks []contract.EventSink
	monitor        *observability.MonitoringManager

	rawEvents    chan event.DomainEvent
	domainEvents chan event.DomainEvent
	activity     chan domain.CursorActivityCommand
	asks         chan domain.AskAgentCommand

	runCtx context.Context
}

type sessionEntry struct {
	worker   *workers.SessionWorker
	commands chan workers.Envelope
	cancel   context.CancelFunc
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	registry contract.IRegistry,
	documentRepository repositories.IDocumentRepository,
	sessionRepository repositories.ISessionRepository,
	moderator moderation.Moderator, pattern policy.MentionPattern,
	invoker contract.Invoker, agentID domain.UserID, opts Options) *Orchestrator {
	return &Orchestrator{
		log:                log,
		supervisor:         supervisor,
		registry:           registry,
		documentRepository: documentRepository,
		sessionRepository:  sessionRepository,
		moderator:          moderator,
		pattern:            pattern,
		invoker:            invoker,
		agentID:            agentID,
		opts:               opts,
		sessions:           make(map[string]*sessionEntry),
		rawEvents:          make(chan event.DomainEvent, opts.BufferSize),
		domainEvents:       make(chan event.DomainEvent, opts.BufferSize),
		activity:           make(chan domain.CursorActivityCommand, opts.BufferSize),
		asks:               make(chan domain.AskAgentCommand, opts.BufferSize),
	}
}

// Add registers permanent sinks (persistence, search index, audit
// timeline). Must be called before Start.
func (o *Orchestrator) Add(sinks ...contract.EventSink) {
	o.permanentSinks = append(o.permanentSinks, sinks...)
}

// SetMonitor attaches session lifecycle counters. Optional.
func (o *Orchestrator) SetMonitor(monitor *observability.MonitoringManager) {
	o.monitor = monitor
}

// Start wires the pipeline workers under the supervisor, rehydrates the
// sessions persisted by a previous run, and launches everything.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.runCtx = ctx

	fanout := workers.NewEventFanout(o.log, o.domainEvents, o.registry).Add(o.permanentSinks...)
	agentWorker := workers.NewAgentWorker(o.invoker, o, o.asks, o.rawEvents, o.agentID, o.opts.AgentTimeout, o.log)
	agentWorker.SetMonitor(o.monitor)
	o.supervisor.Add(
		workers.NewModerationWorker(o.moderator, o.rawEvents, o.domainEvents, o.log),
		workers.NewMentionWorker(o.pattern, o.activity, o.rawEvents, o.opts.MentionDebounce, o.log),
		agentWorker,
		fanout,
	)

	if err := o.rehydrate(); err != nil {
		return fmt.Errorf("session rehydration failed: %w", err)
	}

	go o.supervisor.Run(ctx)
	return nil
}

func (o *Orchestrator) Stop() {
	o.supervisor.Stop()
}

// rehydrate restores the live worker set from persisted session
// snapshots. A snapshot that no longer maps to a valid aggregate is
// skipped, not fatal: one corrupt entry must not block the server.
func (o *Orchestrator) rehydrate() error {
	persisted, err := o.sessionRepository.List()
	if err != nil {
		return err
	}

	for _, disk := range persisted {
		session, err := fromDiskSession(disk)
		if err != nil {
			o.log.Warn("Skipping unreadable session snapshot",
				"session_id", disk.SessionID, "error", err)
			continue
		}
		document, err := o.loadDocument(session.DocumentID())
		if err != nil {
			o.log.Warn("Skipping session without document",
				"session_id", disk.SessionID, "error", err)
			continue
		}
		o.mu.Lock()
		o.startWorker(session, document)
		o.mu.Unlock()
		o.log.Info("Rehydrated session",
			"session_id", session.SessionID(),
			"participants", session.ParticipantCount())
	}
	return nil
}

// CreateSession validates ids through the domain constructors, loads or
// creates the backing document, and spins up the session's worker.
func (o *Orchestrator) CreateSession(sessionID, documentID, initialContent string, actorID domain.UserID) (domain.CollaborationSession, error) {
	docID, err := domain.NewDocumentID(documentID)
	if err != nil {
		return domain.CollaborationSession{}, err
	}
	session, err := domain.NewCollaborationSession(sessionID, docID)
	if err != nil {
		return domain.CollaborationSession{}, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.sessions[sessionID]; ok {
		return domain.CollaborationSession{}, fmt.Errorf("%w: %s", errors.ErrSessionExists, sessionID)
	}

	document, err := o.loadOrCreateDocument(docID, initialContent, actorID)
	if err != nil {
		return domain.CollaborationSession{}, err
	}

	o.startWorker(session, document)

	if err := o.sessionRepository.Store(toDiskSession(session)); err != nil {
		o.log.Error("Failed to persist session snapshot", "session_id", sessionID, "error", err)
	}
	if o.monitor != nil {
		o.monitor.IncrSessionsCreated()
	}
	return session, nil
}

// startWorker must run under o.mu.
func (o *Orchestrator) startWorker(session domain.CollaborationSession, document domain.Document) {
	workerCtx, cancel := context.WithCancel(o.runCtx)
	entry := &sessionEntry{
		commands: make(chan workers.Envelope, o.opts.BufferSize),
		cancel:   cancel,
	}
	entry.worker = workers.NewSessionWorker(session, document,
		entry.commands, o.rawEvents, o.opts.MaxCapacity, o.log)
	o.sessions[session.SessionID()] = entry
	o.supervisor.Start(workerCtx, entry.worker)
}

func (o *Orchestrator) loadDocument(docID domain.DocumentID) (domain.Document, error) {
	snapshot, err := o.documentRepository.GetSnapshot(docID.String())
	if err != nil {
		return domain.Document{}, err
	}
	changes, err := o.documentRepository.GetChanges(docID.String())
	if err != nil {
		return domain.Document{}, err
	}
	return fromDiskDocument(snapshot, changes)
}

func (o *Orchestrator) loadOrCreateDocument(docID domain.DocumentID, initialContent string, actorID domain.UserID) (domain.Document, error) {
	document, err := o.loadDocument(docID)
	if err == nil {
		return document, nil
	}

	document = domain.NewDocument(docID, domain.NewDocumentContent(initialContent), actorID)
	if err := o.documentRepository.StoreSnapshot(toDiskDocument(document)); err != nil {
		return domain.Document{}, err
	}
	create := document.ChangeHistory()[0]
	err = o.documentRepository.AppendChange(repositories.DiskChange{
		ID:         newChangeID(),
		DocumentID: docID.String(),
		Kind:       string(create.Kind),
		Actor:      create.ActorID.String(),
		At:         create.At,
	})
	return document, err
}

// DispatchSync routes a command into the owning session's queue and waits
// for the worker's verdict. The caller observes capacity and permission
// rejections synchronously even though the command was applied in the
// session's total order.
func (o *Orchestrator) DispatchSync(ctx context.Context, cmd domain.Command) error {
	o.mu.RLock()
	entry, ok := o.sessions[cmd.SessionID()]
	o.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrUnknownSession, cmd.SessionID())
	}

	env := workers.Envelope{Cmd: cmd, Reply: make(chan error, 1)}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case entry.commands <- env:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-env.Reply:
		if err != nil && o.monitor != nil {
			o.monitor.IncrEditsRejected()
		}
		return err
	}
}

// Dispatch routes fire-and-forget traffic. Cursor activity and agent asks
// go to their dedicated workers; anything else joins the session queue.
// Full channels drop the command: keystroke batches are superseded by the
// next one anyway.
func (o *Orchestrator) Dispatch(cmd domain.Command) {
	switch c := cmd.(type) {
	case domain.CursorActivityCommand:
		select {
		case o.activity <- c:
		default:
			o.log.Warn(fmt.Sprintf("Cursor activity channel full for session %s, dropping", c.Session))
		}
	case domain.AskAgentCommand:
		select {
		case o.asks <- c:
		default:
			o.log.Warn(fmt.Sprintf("Agent ask channel full for session %s, dropping", c.Session))
		}
	default:
		o.mu.RLock()
		entry, ok := o.sessions[cmd.SessionID()]
		o.mu.RUnlock()
		if !ok {
			o.log.Warn(fmt.Sprintf("Unknown session %s, dropping command", cmd.SessionID()))
			return
		}
		select {
		case entry.commands <- workers.Envelope{Cmd: cmd}:
		default:
			o.log.Warn(fmt.Sprintf("Command channel full for session %s, dropping", cmd.SessionID()))
		}
	}
}

// JoinSession admits a participant, persisting the refreshed membership
// snapshot on success.
func (o *Orchestrator) JoinSession(ctx context.Context, sessionID string, participant domain.Participant) error {
	err := o.DispatchSync(ctx, domain.JoinSessionCommand{Session: sessionID, Participant: participant})
	if err != nil {
		return err
	}
	o.persistSessionSnapshot(sessionID)
	return nil
}

// LeaveSession removes a participant. When the last member leaves, the
// session worker is torn down and its snapshot deleted: document history
// survives, membership does not.
func (o *Orchestrator) LeaveSession(ctx context.Context, sessionID string, userID domain.UserID) error {
	err := o.DispatchSync(ctx, domain.LeaveSessionCommand{Session: sessionID, UserID: userID})
	if err != nil {
		return err
	}

	o.mu.Lock()
	entry, ok := o.sessions[sessionID]
	if ok {
		session, _ := entry.worker.Snapshot()
		if session.ParticipantCount() == 0 {
			delete(o.sessions, sessionID)
			entry.cancel()
			o.mu.Unlock()
			if err := o.sessionRepository.Delete(sessionID); err != nil {
				o.log.Error("Failed to delete session snapshot", "session_id", sessionID, "error", err)
			}
			if o.monitor != nil {
				o.monitor.IncrSessionsClosed()
			}
			o.log.Info("Session closed, last participant left", "session_id", sessionID)
			return nil
		}
	}
	o.mu.Unlock()
	o.persistSessionSnapshot(sessionID)
	return nil
}

func (o *Orchestrator) DeactivateParticipant(ctx context.Context, sessionID string, userID domain.UserID) error {
	err := o.DispatchSync(ctx, domain.DeactivateParticipantCommand{Session: sessionID, UserID: userID})
	if err != nil {
		return err
	}
	o.persistSessionSnapshot(sessionID)
	return nil
}

// Snapshot returns the live aggregates of a session.
func (o *Orchestrator) Snapshot(sessionID string) (domain.CollaborationSession, domain.Document, error) {
	o.mu.RLock()
	entry, ok := o.sessions[sessionID]
	o.mu.RUnlock()
	if !ok {
		return domain.CollaborationSession{}, domain.Document{}, fmt.Errorf("%w: %s", errors.ErrUnknownSession, sessionID)
	}
	session, document := entry.worker.Snapshot()
	return session, document, nil
}

func (o *Orchestrator) RegisterConnection(connectionID, sessionID string, sink contract.EventSink) {
	o.registry.Subscribe(connectionID, sessionID, sink)
}

func (o *Orchestrator) UnregisterConnection(connectionID, sessionID string) {
	o.registry.Unsubscribe(connectionID, sessionID)
}

func (o *Orchestrator) persistSessionSnapshot(sessionID string) {
	o.mu.RLock()
	entry, ok := o.sessions[sessionID]
	o.mu.RUnlock()
	if !ok {
		return
	}
	session, _ := entry.worker.Snapshot()
	if err := o.sessionRepository.Store(toDiskSession(session)); err != nil {
		o.log.Error("Failed to persist session snapshot", "session_id", sessionID, "error", err)
	}
}
