// Package web runs avian's request pipeline.
//
// Every page request passes through a fixed, ordered list of stages (session,
// auth, enrichment) before reaching the router. Handlers return errors
// instead of writing error responses; the Interceptor turns any error or
// panic into a flash message and a redirect home. Responses are buffered
// until the pipeline finishes so the session can be committed before a
// single byte reaches the client.
package web
