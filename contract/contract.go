package contract

import (
	"context"
	"reflect"

	"codraft/domain"
	"codraft/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

type IRegistry interface {
	GetSinksForSession(sessionID string) []EventSink
	Subscribe(connectionID, sessionID string, sink EventSink)
	Unsubscribe(connectionID, sessionID string)
}

// IDispatcher routes a command into the owning session's worker queue and
// waits for the rejection verdict. Used by workers that feed commands back
// into the pipeline (the agent landing its answer).
type IDispatcher interface {
	DispatchSync(ctx context.Context, cmd domain.Command) error
}

// Invoker is the agent-invocation collaborator: it receives a trimmed
// question and produces the agent's answer. Retry and timeout policy live
// behind this interface, never in the domain.
type Invoker interface {
	Invoke(ctx context.Context, question string) (string, error)
}
