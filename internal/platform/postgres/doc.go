// Package postgres provides PostgreSQL-backed implementations of the store
// interfaces: the pgvector-indexed corpus store and the session store
// holding sessions, module progress, submissions, and conversation history.
package postgres
