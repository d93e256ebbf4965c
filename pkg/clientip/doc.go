// Package clientip extracts the originating client IP address from HTTP
// requests, looking through common proxy headers before falling back to the
// connection's remote address.
//
// The extracted address feeds rate-limit identifiers and the database
// session store's audit columns. It is deliberately not part of the session
// fingerprint: mobile and proxied clients change addresses mid-session far
// too often for the IP to be a hijack signal on its own.
package clientip
