// Файл: internal/dto/claims_dto.go
package dto

// UserClaims - the actor resolved by the auth middleware and stored in the
// request context.
type UserClaims struct {
	UserID string
	Role   string
}
