package ports

// CredentialVault hashes passwords and refresh secrets
type CredentialVault interface {
	// Hash produces a salted slow hash of the password.
	Hash(password string) (string, error)
	// Verify reports whether password matches hash.
	Verify(password, hash string) bool
	// Digest is a fast keyed one-way digest for indexing opaque secrets.
	Digest(input string) string
	// RandomToken returns a URL-safe random string of n bytes of entropy.
	RandomToken(n int) (string, error)
}
