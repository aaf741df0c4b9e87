// Package dispatch implements the notification dispatch engine: it turns an
// inbound lead event into rendered messages, attempts delivery to every
// active recipient through the channel sender, and records one delivery
// record per attempt in the delivery log.
//
// The engine holds no persistent state of its own beyond in-flight requests.
// It never retries: calling Dispatch again with the same lead event produces
// new delivery records, so every attempt stays independently auditable.
package dispatch
