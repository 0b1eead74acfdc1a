// Package chat owns conversations and their message history.
//
// A Chat exclusively owns its Message sequence; messages are immutable
// once appended. Two Store implementations exist: MemoryStore, which keeps
// everything in memory and snapshots the chat list through the storage
// collaborator after every mutation, and PostgresStore, which persists
// chats and messages in PostgreSQL the same way the upstream session store
// does. Both enforce the last-chat rule: the final remaining chat can be
// cleared but never deleted.
package chat
