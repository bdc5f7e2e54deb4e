// Package session keeps server-side browser sessions for avian.
//
// A session is identified by an unguessable ID carried in a signed cookie
// ("sesh" by default). Its payload (the serialized identity reference, the
// flash queues and the return-to path) lives in a Store, encrypted with a
// key derived from the store secret, so a backend never sees plaintext.
//
// Sessions have an absolute lifetime fixed when they are created. Activity
// only refreshes the last-touch timestamp, and at most once per TouchAfter.
// Every backend failure surfaces as a *StoreError; callers must treat it as
// fatal for the request rather than continue without a session.
package session
