package accounts

// TokenKind selects which session-slot field a token lookup matches.
type TokenKind int

const (
	AccessToken TokenKind = iota
	RefreshToken
)

// Store is the persistence boundary for accounts and their embedded
// session state. Implementations must guarantee email and external-ID
// uniqueness on Insert, and read-then-write safety on Save: a Save
// carrying a stale Session.Version must fail rather than overwrite a
// newer token pair.
//
// Lookups return errors.ErrNotFound (from internal/errors) when no
// account matches; anything else is a store fault the caller treats
// as transient.
type Store interface {
	FindByEmail(email string) (*Account, error)
	FindByExternalID(externalID string) (*Account, error)
	FindByToken(token string, kind TokenKind) (*Account, error)
	Insert(account *Account) (*Account, error)
	Save(account *Account) error
}
