// Package session tracks the client's two principal slots: the institution
// actor and the user actor. The slots are fully independent; each has its own
// identity data, credential, and verification state, and each credential is
// persisted under its own keyring entry.
//
// At process start the Gateway loads any persisted credentials and verifies
// both slots concurrently against the API's who-am-I operations. A slot ends
// bootstrap with Checked=true exactly once whatever the outcome: authenticated
// on success, unauthenticated on any failure, and unauthenticated-without-
// verification when no credential was persisted. Bootstrap never runs twice;
// explicit login and logout mutate the store directly.
package session
