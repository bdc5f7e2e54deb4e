// Package authn attaches an authentication state to each request.
//
// A request is Anonymous or Authenticated. The Stage resolves the identity
// reference stored in the session through a Serializer; Login and Logout
// move the request between the two states and rotate the session ID when
// the identity changes.
package authn
