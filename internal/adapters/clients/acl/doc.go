// Package acl is the Anti-Corruption Layer between the recommender and the
// alquran.cloud verse API.
//
// External DTOs stay unexported in this package. Adapters return
// [domain.VerseDisplay] values and domain errors only, so a change in the
// upstream payload never reaches the application layer.
//
// # Package Components
//
//   - [QuranClient]: implements ports.VerseLookup and ports.HealthChecker
//   - [BaseAdapter]: GET plus error mapping, embeddable by future adapters
//   - [Envelope]: the {code, status, data} wrapper alquran.cloud puts on every payload
//   - [MapHTTPError]: HTTP status and client errors to domain errors
//   - [DecodeResponse]: generic JSON body decoder
//
// # Error Handling Strategy
//
//   - 404, or an envelope code of 404 → [domain.ErrNotFound]
//   - 400/422 → [domain.ErrNotFound] as well, since the verse reference is the only input
//   - other 4xx, 5xx, envelope codes other than 200 → [domain.ErrUnavailable]
//   - [clients.ErrCircuitOpen], [clients.ErrMaxRetriesExceeded], [clients.ErrRateLimited]
//     and transport failures → [domain.ErrUnavailable]
//
// Context cancellation and deadline errors stay in the chain, so callers can
// still match them with errors.Is.
package acl
