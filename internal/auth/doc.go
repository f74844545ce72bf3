// Package auth provides JWT credential handling and HTTP authentication
// middleware for the registrar API.
//
// Credentials are HS256 JWTs carrying a "sub" claim (the subject ID) and a
// "kind" claim binding the token to one actor kind. Institution credentials
// travel as Authorization bearer headers; user credentials travel in the
// registrar_user_token cookie. A token of one kind is rejected by the other
// kind's middleware.
//
// Handlers retrieve the authenticated identity via FromContext/MustFromContext.
package auth
