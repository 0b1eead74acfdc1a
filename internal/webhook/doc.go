// Package webhook delivers chat turns to the configured assistant
// endpoint and extracts the reply. Plain turns go out as JSON, turns
// with attachments as multipart. Transient failures retry with
// exponential backoff.
package webhook
