package collection

import "context"

// Adapter is the persistence boundary supplied per entity type. All four
// operations return a discriminated Result; adapters never signal failure by
// panicking. The engine issues calls sequentially and performs no retries;
// those are caller concerns layered on top.
//
// Adapters exchange Payload wire records; the configured Transforms project
// between payloads and the host's item type.
type Adapter interface {
	// Fetch lists every record scoped to the owning context.
	Fetch(ctx context.Context, contextID string) Result[[]Payload]
	// Create persists a new record and returns it with its server-assigned
	// identity.
	Create(ctx context.Context, contextID string, payload Payload) Result[Payload]
	// Update applies a partial payload to the record with the given id. An
	// undefined payload in the result means the server returned no body and
	// the client value stands.
	Update(ctx context.Context, id string, payload Payload) Result[Payload]
	// Delete removes the record with the given id.
	Delete(ctx context.Context, id string) Result[Unit]
}
