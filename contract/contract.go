//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"cam-guard/domain"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

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

// Platform is the capability surface of the chat platform the guard relies on.
// Every call is a network round trip and may fail independently of the others.
type Platform interface {
	// ChannelName resolves the human-readable name of a channel.
	ChannelName(ctx context.Context, channelID domain.ChannelID) (string, error)
	// Member loads the guild-level permissions and role names of a guild member.
	Member(ctx context.Context, guildID domain.GuildID, userID domain.UserID) (domain.Member, error)
	// DisconnectVoice removes the member from whatever voice channel they are in.
	DisconnectVoice(ctx context.Context, guildID domain.GuildID, userID domain.UserID, reason string) error
	// SendDirectMessage delivers a private message to the user.
	SendDirectMessage(ctx context.Context, userID domain.UserID, content string) error
}
