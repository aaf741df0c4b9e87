package dispatch

import "context"

// ChannelSender is the abstract capability that places a rendered message
// with a third-party provider. The engine depends only on this contract;
// the actual transport lives outside the core.
//
// Send returns the provider's reference for the accepted message, or an
// error whose message is the failure reason. Implementations must honor
// ctx cancellation; the engine applies a per-send timeout through it.
type ChannelSender interface {
	Send(ctx context.Context, destination, message string) (providerRef string, err error)
}

// SenderFunc adapts a function to the ChannelSender interface.
type SenderFunc func(ctx context.Context, destination, message string) (string, error)

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, destination, message string) (string, error) {
	return f(ctx, destination, message)
}
