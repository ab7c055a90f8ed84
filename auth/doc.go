// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth handles passwords, the jury access check and session tokens.

# Jury Access

	ok := auth.CheckJuryAccess(jury.Name, input, cfg.MasterKey)

Both sides are trimmed and upper-cased. The input unlocks a jury when it
matches the jury's name or the master key. This is a convenience gate, not a
security boundary; a successful check is followed by a signed session.

# Sessions

Sessions are HS256 JWTs carrying a scope (admin or jury), a subject and a
random ID used for revocation:

	token, sess, err := auth.IssueSession(secret, models.ScopeJury, jury.ID, ttl)
	sess, err := auth.ParseSession(secret, token)

Verifier adds the scope check and consults the revocation list:

	v := auth.Verifier{Secret: secret, Revoked: store}
	sess, err := v.Verify(ctx, token, models.ScopeAdmin)

# Admin Password

The admin password is stored as a bcrypt hash:

	hash, err := auth.HashPassword(password)
	err := auth.CheckPassword(hash, input)

# IP Hashing

Failed logins are logged with a salted hash of the client IP:

	hash := auth.HashIP(ipAddress, salt)
*/
package auth
