// Package web serves the JSON API: chat CRUD and message exchange, artifact
// lookup and actions, the panel state machine, the playground, one-shot
// preview documents, and runtime settings.
//
// All state lives in injected collaborators (chat.Store, Session,
// preview.DocumentStore); the package holds no globals. Health probes are
// registered outside the middleware stack so probes are never rate limited.
package web
