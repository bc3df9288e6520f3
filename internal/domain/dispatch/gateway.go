package dispatch

import "context"

// Gateway delivers messages to a recipient identity on the external channel.
// This keeps the engine independent of the transport library.
type Gateway interface {
	SendText(ctx context.Context, recipient string, text string) error
	SendAudio(ctx context.Context, recipient string, audio []byte) error
}

// Speaker turns an English reply into localized speech audio.
type Speaker interface {
	Speak(ctx context.Context, text string) ([]byte, error)
}
