// Package fingerprint derives a stable client fingerprint from HTTP request
// attributes, used to detect session reuse from a different client context
// (cookie theft, session hijacking).
//
// The fingerprint hashes User-Agent, Accept-Language and Accept-Encoding.
// Generate and Compute hash the same attribute set, so a fingerprint
// stored from either entry point validates against the other. The client
// IP is intentionally excluded: it changes too often for mobile and
// proxied users to serve as a hijack signal on its own.
//
//	fp := fingerprint.Generate(r)
//	if !fingerprint.Validate(r, storedFP) {
//	    // treat the session as hijacked
//	}
//
// A fingerprint is a heuristic, not proof: matching fingerprints do not
// authenticate a client, and a mismatch should degrade the session to
// anonymous rather than block the request outright.
package fingerprint
